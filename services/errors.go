package services

import (
	"errors"
	"fmt"
)

// 4 loại lỗi của engine tracking, controller map sang HTTP status.
// Không bao giờ trả lỗi storage thô ra ngoài.
var (
	// Người dùng không có ghi danh active với khóa học của nội dung
	ErrAccessDenied = errors.New("không có quyền truy cập nội dung này")
	// Mutation trên phiên đã kết thúc, hoặc update vi phạm guard hoàn thành
	ErrInvalidState = errors.New("trạng thái không cho phép thao tác này")
	// Không tìm thấy phiên/tiến độ theo định danh
	ErrNotFound = errors.New("không tìm thấy bản ghi")
)

// ValidationError: input sai (vị trí âm, percentage ngoài [0,100], loại nội dung lạ...)
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dữ liệu không hợp lệ: %s - %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError hỗ trợ controller phân loại lỗi
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
