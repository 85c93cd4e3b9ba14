package uploader

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfHead = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("report.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("fortune report"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestResultFileRule(t *testing.T) {
	t.Run("PDF accepted", func(t *testing.T) {
		ct, err := ResultFileRule.Validate(2*MB, "application/pdf", pdfHead)
		assert.NoError(t, err)
		assert.Equal(t, "application/pdf", ct)
	})

	t.Run("ZIP accepted with windows content type", func(t *testing.T) {
		ct, err := ResultFileRule.Validate(10*MB, "application/x-zip-compressed", zipBytes(t))
		assert.NoError(t, err)
		assert.Equal(t, "application/zip", ct)
	})

	t.Run("Exactly 30MB accepted", func(t *testing.T) {
		_, err := ResultFileRule.Validate(30*MB, "application/pdf", pdfHead)
		assert.NoError(t, err)
	})

	t.Run("Over 30MB rejected", func(t *testing.T) {
		_, err := ResultFileRule.Validate(30*MB+1, "application/pdf", pdfHead)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("Declared type not allowed", func(t *testing.T) {
		_, err := ResultFileRule.Validate(MB, "image/png", pdfHead)
		assert.ErrorIs(t, err, ErrFileTypeNotAllowed)
	})

	t.Run("Content does not match", func(t *testing.T) {
		_, err := ResultFileRule.Validate(MB, "application/pdf", []byte("just some text, not a pdf"))
		assert.ErrorIs(t, err, ErrFileTypeNotAllowed)
	})

	t.Run("Empty file", func(t *testing.T) {
		_, err := ResultFileRule.Validate(0, "application/pdf", nil)
		assert.ErrorIs(t, err, ErrFileEmpty)
	})
}

func TestGenerateKey(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	key := GenerateKey("orders/abc", "Result.PDF", now)

	assert.True(t, strings.HasPrefix(key, "orders/abc/20261019/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}
