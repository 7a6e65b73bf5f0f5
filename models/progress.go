package models

import (
	"time"

	"github.com/google/uuid"
)

// Tiến độ học của sinh viên trên một nội dung.
// Bất biến: khi is_completed = true thì completion_percentage ghim ở 100,
// không update nào được hạ percentage/position hay gỡ cờ hoàn thành.
type ContentProgress struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_content_progress" json:"user_id"`
	ContentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_content_progress" json:"content_id"`

	// Denormalize để query rollup không phải join
	ModuleID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"module_id"`
	CourseID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"course_id"`
	ContentType ContentType `gorm:"type:varchar(20);not null" json:"content_type"`

	// Vị trí playback: giây với video, chỉ số trang với pdf
	PlaybackPosition     int        `gorm:"default:0" json:"playback_position"`
	CompletionPercentage float64    `gorm:"type:numeric(5,2);default:0" json:"completion_percentage"`
	WatchTimeSec         int        `gorm:"default:0" json:"watch_time_sec"` // tổng credit xem thực
	IsCompleted          bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"` // set một lần duy nhất
	LastAccessedAt       time.Time  `gorm:"autoUpdateTime" json:"last_accessed_at"`
	FirstAccessedAt      time.Time  `gorm:"autoCreateTime" json:"first_accessed_at"`

	// Khóa ngoại
	User    User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content ContentItem `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"-"`
}
