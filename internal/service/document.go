package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stemsi/qbank-backend/internal/config"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sentinel errors for document uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUnsupportedCharset  = errors.New("unsupported charset")
	ErrUndecodableDocument = errors.New("document is not valid text in the declared charset")
)

// Accepted document extensions.
var allowedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// DecodeDocument converts raw document bytes to UTF-8 text. A UTF-8 byte
// order mark is removed. charset is "utf-8" (default) or "gb18030"; GBK and
// GB2312 are accepted as aliases of GB18030.
func DecodeDocument(data []byte, charset string) (string, error) {
	enc, legacy, err := charsetEncoding(charset)
	if err != nil {
		return "", err
	}
	if !legacy && !utf8.Valid(data) {
		return "", ErrUndecodableDocument
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodableDocument, err)
	}
	// Legacy decoders substitute U+FFFD for byte sequences they cannot map.
	if legacy && bytes.ContainsRune(out, utf8.RuneError) {
		return "", ErrUndecodableDocument
	}
	return string(out), nil
}

// CheckCharset returns ErrUnsupportedCharset for charsets DecodeDocument
// cannot handle.
func CheckCharset(charset string) error {
	_, _, err := charsetEncoding(charset)
	return err
}

func charsetEncoding(charset string) (encoding.Encoding, bool, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, false, nil
	case "gb18030", "gbk", "gb2312":
		return simplifiedchinese.GB18030, true, nil
	default:
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedCharset, charset)
	}
}

// DocumentService validates and reads uploaded question documents.
type DocumentService struct {
	cfg *config.Config
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(cfg *config.Config) *DocumentService {
	return &DocumentService{cfg: cfg}
}

// ReadUpload checks the file extension and size and returns the file content.
func (s *DocumentService) ReadUpload(header *multipart.FileHeader) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q (allowed: .txt, .md)", ErrUnsupportedFileType, ext)
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes)
	}
	return data, nil
}

// Archive keeps a copy of an imported document under UPLOAD_DIR/imports.
// It is a no-op when no upload directory is configured.
func (s *DocumentService) Archive(id uuid.UUID, filename string, data []byte) (string, error) {
	if s.cfg.UploadDir == "" {
		return "", nil
	}

	dir := filepath.Join(s.cfg.UploadDir, "imports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dest := filepath.Join(dir, id.String()+strings.ToLower(filepath.Ext(filename)))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return dest, nil
}

// UploadTemplate is the sample document served to users who want to prepare
// an import file.
const UploadTemplate = `# 题库导入模板

支持 .txt 与 .md 文件。每道题以编号开始，答案以"答案："开头。

一、选择题

1. 以下哪个是 Go 的关键字？
A. func
B. function
答案：A

二、简答题

2. 简述 goroutine 与线程的区别。
**答案：**
- goroutine 由运行时调度
- 初始栈更小

#### 论述题：谈谈你对并发与并行的理解
**答案：** 并发关注结构，并行关注执行。
`
