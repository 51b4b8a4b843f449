package services

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createMockFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	assert.NoError(t, err)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(32 * 1024 * 1024)
	assert.NoError(t, err)
	return form.File["file"][0]
}

func TestValidatePDFUpload(t *testing.T) {
	t.Run("Valid PDF", func(t *testing.T) {
		content := append([]byte("%PDF-1.4\n"), make([]byte, 100)...)
		file := createMockFileHeader(t, "statement.pdf", content)
		assert.NoError(t, ValidatePDFUpload(file))
	})

	t.Run("File too large", func(t *testing.T) {
		content := make([]byte, 26*1024*1024)
		copy(content, "%PDF-1.4\n")
		file := createMockFileHeader(t, "large.pdf", content)
		err := ValidatePDFUpload(file)
		assert.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "25MB")
	})

	t.Run("Invalid extension", func(t *testing.T) {
		file := createMockFileHeader(t, "deed.docx", []byte("%PDF-1.4"))
		err := ValidatePDFUpload(file)
		assert.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "PDF")
	})

	t.Run("PDF extension but not a PDF", func(t *testing.T) {
		file := createMockFileHeader(t, "fake.pdf", []byte("this is just text"))
		err := ValidatePDFUpload(file)
		assert.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "not a valid PDF")
	})
}
