package uploader

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MB = 1 << 20

	// sniffLen 内容嗅探读取的字节数
	sniffLen = 3072
)

var (
	ErrFileEmpty          = errors.New("file is empty")
	ErrFileTooLarge       = errors.New("file is too large")
	ErrFileTypeNotAllowed = errors.New("file type is not allowed")
)

// FileRule 上传文件校验规则
// Declared 为客户端声明的 Content-Type 白名单，Sniffed 为按内容识别的类型白名单
type FileRule struct {
	MaxSize  int64
	Declared []string
	Sniffed  []string
}

// ResultFileRule 分析结果文件：PDF/ZIP，最大 30MB
var ResultFileRule = FileRule{
	MaxSize:  30 * MB,
	Declared: []string{"application/pdf", "application/zip", "application/x-zip-compressed"},
	Sniffed:  []string{"application/pdf", "application/zip"},
}

// ReviewImageRule 评价图片，最大 5MB
var ReviewImageRule = FileRule{
	MaxSize:  5 * MB,
	Declared: []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
	Sniffed:  []string{"image/jpeg", "image/png", "image/webp", "image/gif"},
}

// Validate 校验大小、声明类型和嵌入内容，返回规范化的 Content-Type
// 全部在本地完成，不发起任何网络请求
func (r FileRule) Validate(size int64, declared string, head []byte) (string, error) {
	if size <= 0 {
		return "", ErrFileEmpty
	}
	if size > r.MaxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, r.MaxSize)
	}

	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !contains(r.Declared, mediaType) {
		return "", fmt.Errorf("%w: declared %q", ErrFileTypeNotAllowed, declared)
	}

	detected := mimetype.Detect(head)
	for _, allowed := range r.Sniffed {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", fmt.Errorf("%w: content is %s", ErrFileTypeNotAllowed, detected.String())
}

// OpenValidated 打开 multipart 文件并校验，返回已回到文件开头的 reader
func OpenValidated(fh *multipart.FileHeader, rule FileRule) (multipart.File, string, error) {
	// 先按声明的大小拦截，避免读取超大文件
	if fh.Size > rule.MaxSize {
		return nil, "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, fh.Size, rule.MaxSize)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, "", err
	}

	contentType, err := rule.Validate(fh.Size, fh.Header.Get("Content-Type"), head[:n])
	if err != nil {
		f.Close()
		return nil, "", err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, contentType, nil
}

func contains(list []string, v string) bool {
	v = strings.ToLower(v)
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
