package models

import (
	"time"

	"github.com/google/uuid"
)

// Quiz của module - chỉ phục vụ gate pass/fail, không quản lý câu hỏi ở đây
type ModuleQuiz struct {
	ID       uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"module_id"`
	Module   CourseModule `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Title     string    `gorm:"size:255;not null" json:"title"`
	PassScore float64   `gorm:"type:numeric(5,2);default:5.0" json:"pass_score"` // Điểm đạt
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Lượt làm quiz của sinh viên
type QuizAttempt struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID  `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   ModuleQuiz `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User       `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Score    float64   `gorm:"type:numeric(5,2)" json:"score"`
	IsPassed bool      `gorm:"default:false" json:"is_passed"`
	TakenAt  time.Time `gorm:"autoCreateTime" json:"taken_at"`
}
