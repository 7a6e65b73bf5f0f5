package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Loại khóa học - validate ngay khi tạo, không dùng 2 cột FK nullable
type CourseKind string

const (
	CourseRegular CourseKind = "regular" // Khóa học thường (có lớp)
	CourseOnline  CourseKind = "online"  // Khóa học online hoàn toàn
)

func (k CourseKind) Valid() bool {
	return k == CourseRegular || k == CourseOnline
}

// Loại nội dung học
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentPDF   ContentType = "pdf"
	ContentOther ContentType = "other"
)

func (t ContentType) Valid() bool {
	return t == ContentVideo || t == ContentPDF || t == ContentOther
}

type Course struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex" json:"slug"` // slug cho URL thân thiện
	Description string     `gorm:"type:text" json:"description"`
	Kind        CourseKind `gorm:"type:varchar(20);not null;default:'regular'" json:"kind"`
	// Trạng thái (true: active, false: inactive). Không đặt default trong tag:
	// gorm bỏ qua field zero-value có default khi insert, false sẽ không lưu được
	Status bool `gorm:"not null" json:"status"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	Creator     User       `gorm:"foreignKey:CreatedBy;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Modules []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

// Chương/module trong khóa học, mở khóa tuần tự theo sort_order
type CourseModule struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   Course    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	// Thứ tự module trong khóa (bắt đầu từ 1)
	SortOrder int `gorm:"column:sort_order;default:1" json:"sort_order"`
	// Module có quiz bắt buộc phải pass trước khi mở module sau
	HasRequiredQuiz bool      `gorm:"default:false" json:"has_required_quiz"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Contents []ContentItem `gorm:"foreignKey:ModuleID" json:"contents,omitempty"`
}

// Một mục nội dung học (video bài giảng, tài liệu PDF...)
type ContentItem struct {
	ID       uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID    `gorm:"type:uuid;not null;index" json:"module_id"`
	Module   CourseModule `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	// Denormalize course_id để query nhanh, không phải join qua module
	CourseID uuid.UUID   `gorm:"type:uuid;not null;index" json:"course_id"`
	Title    string      `gorm:"size:255;not null" json:"title"`
	Type     ContentType `gorm:"type:varchar(20);not null" json:"type"`
	// Thời lượng danh nghĩa: giây với video, số trang với pdf
	DurationSec int `json:"duration_sec"`
	SortOrder   int `gorm:"column:sort_order;default:1" json:"sort_order"`
	// Không đặt default:true trong tag, false phải lưu được (xem Course.Status)
	IsRequired bool `json:"is_required"`
	// Path trong storage bucket, resolver sẽ ký URL khi client cần stream
	ObjectPath string    `gorm:"type:text" json:"object_path,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewCourse validate kind ngay khi khởi tạo
func NewCourse(title, slug, description string, kind CourseKind, createdBy uuid.UUID) (*Course, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("loại khóa học không hợp lệ: %q", kind)
	}
	return &Course{
		ID:          uuid.New(),
		Title:       title,
		Slug:        slug,
		Description: description,
		Kind:        kind,
		Status:      true,
		CreatedBy:   createdBy,
	}, nil
}
