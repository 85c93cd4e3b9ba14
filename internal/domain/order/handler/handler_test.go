package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"fortune_shop/internal/domain/order/model"
	"fortune_shop/internal/domain/order/service"
	"fortune_shop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCleaner struct {
	calls int
}

func (s *stubCleaner) CleanupExpired(ctx context.Context) (*service.CleanupResult, error) {
	s.calls++
	return &service.CleanupResult{DeletedCount: 1, DeletedFiles: []string{"results/a.pdf"}, Errors: []string{}}, nil
}

func TestCleanupRequiresSecret(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		header string
		code   int
		calls  int
	}{
		{"valid", "s3cret", "s3cret", http.StatusOK, 1},
		{"wrong", "s3cret", "nope", http.StatusUnauthorized, 0},
		{"missing", "s3cret", "", http.StatusUnauthorized, 0},
		{"not configured", "", "", http.StatusUnauthorized, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cleaner := &stubCleaner{}
			r := gin.New()
			r.POST("/jobs/cleanup-expired-files", NewJobHandler(cleaner, tc.secret).CleanupExpiredFiles)

			req := httptest.NewRequest(http.MethodPost, "/jobs/cleanup-expired-files", nil)
			if tc.header != "" {
				req.Header.Set(HeaderCronSecret, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.calls, cleaner.calls)
		})
	}
}

func TestCleanupResponseShape(t *testing.T) {
	r := gin.New()
	r.POST("/jobs/cleanup-expired-files", NewJobHandler(&stubCleaner{}, "s3cret").CleanupExpiredFiles)

	req := httptest.NewRequest(http.MethodPost, "/jobs/cleanup-expired-files", nil)
	req.Header.Set(HeaderCronSecret, "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body.Data["deletedCount"])
	assert.Contains(t, body.Data, "deletedFiles")
	assert.Contains(t, body.Data, "errors")
}

// uploadOnlyService 只实现上传，其余方法调用会 panic
type uploadOnlyService struct {
	service.OrderService
	uploads int
}

func (s *uploadOnlyService) UploadResult(ctx context.Context, id string, file service.ResultFile) (*model.Order, error) {
	s.uploads++
	o := &model.Order{}
	o.ID = id
	o.SetStatus(model.StatusCompleted)
	return o, nil
}

func multipartFile(t *testing.T, contentType, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadResultValidatesBeforeService(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

	cases := []struct {
		name        string
		contentType string
		filename    string
		content     []byte
		code        int
		uploads     int
	}{
		{"pdf", "application/pdf", "result.pdf", pdf, http.StatusOK, 1},
		{"declared text", "text/plain", "result.txt", []byte("hello"), http.StatusBadRequest, 0},
		{"pdf header lies", "application/pdf", "result.pdf", []byte("just some text"), http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &uploadOnlyService{}
			r := gin.New()
			r.POST("/admin/orders/:id/result", NewOrderHandler(svc).UploadResult)

			body, ct := multipartFile(t, tc.contentType, tc.filename, tc.content)
			req := httptest.NewRequest(http.MethodPost, "/admin/orders/o-1/result", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.uploads, svc.uploads)
			if tc.code == http.StatusBadRequest {
				var resp response.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, response.ErrInvalidResultFile, resp.Code)
			}
		})
	}
}
