package mailer

import (
	"context"
	"fmt"
	"fortune_shop/internal/pkg/config"
	"fortune_shop/pkg/logger"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message 邮件内容
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer 基于 go-mail 的 SMTP 实现
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewMailer 未配置 SMTP 时返回只记日志的实现
func NewMailer(cfg config.MailConfig) (Mailer, error) {
	if cfg.Host == "" {
		logger.Log.Warn("mail host not configured, notifications will only be logged")
		return LogMailer{}, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return err
	}
	if err := mm.To(msg.To); err != nil {
		return err
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)

	return m.client.DialAndSendWithContext(ctx, mm)
}

// LogMailer 开发环境使用
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Log.Info("mail (not sent)", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
