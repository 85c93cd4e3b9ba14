package mailer

import (
	"bytes"
	"html/template"
)

var paymentConfirmedTpl = template.Must(template.New("payment_confirmed").Parse(`<!DOCTYPE html>
<html lang="ko">
<body style="font-family: sans-serif;">
	<h2>입금이 확인되었습니다</h2>
	<p>{{.CustomerName}}님, 주문번호 <strong>{{.OrderNumber}}</strong>의 입금이 확인되었습니다.</p>
	<p>분석이 완료되면 다시 안내드리겠습니다.</p>
</body>
</html>`))

var resultReadyTpl = template.Must(template.New("result_ready").Parse(`<!DOCTYPE html>
<html lang="ko">
<body style="font-family: sans-serif;">
	<h2>분석 결과가 준비되었습니다</h2>
	<p>{{.CustomerName}}님, 주문번호 <strong>{{.OrderNumber}}</strong>의 분석 결과가 등록되었습니다.</p>
	{{if .HasFile}}<p>결과 파일은 업로드일로부터 {{.RetentionDays}}일 동안 마이페이지에서 내려받을 수 있습니다.</p>{{end}}
</body>
</html>`))

// OrderMailData 订单通知模板数据
type OrderMailData struct {
	CustomerName  string
	OrderNumber   string
	HasFile       bool
	RetentionDays int
}

// PaymentConfirmed 入金确认通知
func PaymentConfirmed(to string, data OrderMailData) (Message, error) {
	return render(to, "[포춘리포트] 입금 확인 안내", paymentConfirmedTpl, data)
}

// ResultReady 结果上传通知
func ResultReady(to string, data OrderMailData) (Message, error) {
	return render(to, "[포춘리포트] 분석 결과 안내", resultReadyTpl, data)
}

func render(to, subject string, tpl *template.Template, data OrderMailData) (Message, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
