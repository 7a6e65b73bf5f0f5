package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/ledongthuc/pdf"
)

// CountPDFPages đọc số trang của file PDF upload - dùng làm thời lượng danh
// nghĩa cho nội dung dạng tài liệu.
func CountPDFPages(fileHeader *multipart.FileHeader) (int, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return 0, fmt.Errorf("lỗi đọc file PDF: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return 0, fmt.Errorf("không thể tạo reader PDF: %w", err)
	}

	return reader.NumPage(), nil
}
