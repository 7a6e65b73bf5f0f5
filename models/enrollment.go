package models

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentRevoked   EnrollmentStatus = "revoked"
)

// Ghi danh của sinh viên vào khóa học
type Enrollment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_course_enrollment" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_course_enrollment" json:"course_id"`

	Status     EnrollmentStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	EnrolledAt time.Time        `gorm:"autoCreateTime" json:"enrolled_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	// Khóa ngoại
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
