package service

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/stemsi/qbank-backend/internal/config"
)

func TestDecodeDocument(t *testing.T) {
	gb, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte("简答题"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		charset string
		want    string
		wantErr error
	}{
		{name: "plain utf-8", data: []byte("题目"), want: "题目"},
		{name: "utf-8 bom stripped", data: append([]byte{0xEF, 0xBB, 0xBF}, "题目"...), charset: "UTF-8", want: "题目"},
		{name: "gb18030", data: gb, charset: "gb18030", want: "简答题"},
		{name: "gbk alias", data: gb, charset: "GBK", want: "简答题"},
		{name: "gb bytes declared utf-8", data: gb, charset: "utf-8", wantErr: ErrUndecodableDocument},
		{name: "unknown charset", data: []byte("x"), charset: "latin9", wantErr: ErrUnsupportedCharset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDocument(tt.data, tt.charset)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestReadUpload(t *testing.T) {
	svc := NewDocumentService(&config.Config{MaxUploadBytes: 16})

	data, err := svc.ReadUpload(uploadHeader(t, "bank.MD", []byte("1. 题目")))
	require.NoError(t, err)
	assert.Equal(t, "1. 题目", string(data))

	_, err = svc.ReadUpload(uploadHeader(t, "bank.docx", []byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = svc.ReadUpload(uploadHeader(t, "bank.txt", bytes.Repeat([]byte("a"), 17)))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	svc := NewDocumentService(&config.Config{UploadDir: dir})
	id := uuid.New()

	path, err := svc.Archive(id, "Bank.TXT", []byte("内容"))
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "内容", string(got))
	assert.Contains(t, path, id.String()+".txt")

	path, err = NewDocumentService(&config.Config{}).Archive(id, "a.txt", nil)
	require.NoError(t, err)
	assert.Empty(t, path)
}
