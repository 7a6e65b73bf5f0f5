package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/models"
)

// Các collaborator ngoài engine tracking. Engine chỉ đọc qua interface,
// không quan tâm catalog/ghi danh/quiz được quản lý ở đâu.

// ContentCatalog đọc cấu trúc khóa học (read-only với engine)
type ContentCatalog interface {
	GetContent(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error)
	// ListModules trả về module của khóa theo sort_order tăng dần
	ListModules(ctx context.Context, courseID uuid.UUID) ([]models.CourseModule, error)
	// ListContents trả về nội dung của module theo sort_order tăng dần
	ListContents(ctx context.Context, moduleID uuid.UUID) ([]models.ContentItem, error)
	// ListRequiredContents trả về toàn bộ nội dung bắt buộc của khóa
	ListRequiredContents(ctx context.Context, courseID uuid.UUID) ([]models.ContentItem, error)
}

// EnrollmentStore kiểm tra ghi danh active của user với khóa học
type EnrollmentStore interface {
	HasActiveEnrollment(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

// QuizStatusProvider cho biết user đã pass quiz bắt buộc của module chưa
type QuizStatusProvider interface {
	HasPassedQuiz(ctx context.Context, userID, moduleID uuid.UUID) (bool, error)
}

// ---- Hiện thực mặc định trên gorm ----

type gormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) ContentCatalog {
	return &gormCatalog{db: db}
}

func (c *gormCatalog) GetContent(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error) {
	var content models.ContentItem
	if err := c.db.WithContext(ctx).First(&content, "id = ?", contentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &content, nil
}

func (c *gormCatalog) ListModules(ctx context.Context, courseID uuid.UUID) ([]models.CourseModule, error) {
	var modules []models.CourseModule
	if err := c.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sort_order ASC").
		Find(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (c *gormCatalog) ListContents(ctx context.Context, moduleID uuid.UUID) ([]models.ContentItem, error) {
	var contents []models.ContentItem
	if err := c.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("sort_order ASC").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

func (c *gormCatalog) ListRequiredContents(ctx context.Context, courseID uuid.UUID) ([]models.ContentItem, error) {
	var contents []models.ContentItem
	if err := c.db.WithContext(ctx).
		Where("course_id = ? AND is_required = ?", courseID, true).
		Order("sort_order ASC").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

type gormEnrollments struct {
	db *gorm.DB
}

func NewGormEnrollments(db *gorm.DB) EnrollmentStore {
	return &gormEnrollments{db: db}
}

func (e *gormEnrollments) HasActiveEnrollment(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.EnrollmentActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type gormQuizStatus struct {
	db *gorm.DB
}

func NewGormQuizStatus(db *gorm.DB) QuizStatusProvider {
	return &gormQuizStatus{db: db}
}

// Pass quiz = có ít nhất một lượt làm đạt của quiz thuộc module
func (q *gormQuizStatus) HasPassedQuiz(ctx context.Context, userID, moduleID uuid.UUID) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Joins("JOIN module_quizzes ON module_quizzes.id = quiz_attempts.quiz_id").
		Where("quiz_attempts.user_id = ? AND module_quizzes.module_id = ? AND quiz_attempts.is_passed = ?",
			userID, moduleID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
