package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/models"
)

// AggregateService rollup tiến độ từng nội dung lên mức module/khóa học.
// Chỉ đọc ledger.
type AggregateService struct {
	db      *gorm.DB
	catalog ContentCatalog
}

func NewAggregateService(db *gorm.DB) *AggregateService {
	return &AggregateService{db: db, catalog: NewGormCatalog(db)}
}

// CourseProgress = trung bình completion_percentage trên toàn bộ nội dung
// BẮT BUỘC của khóa; nội dung chưa có dòng tiến độ tính 0. Trả 0 khi khóa
// không có nội dung bắt buộc nào. Làm tròn 2 chữ số thập phân.
func (a *AggregateService) CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (float64, error) {
	required, err := a.catalog.ListRequiredContents(ctx, courseID)
	if err != nil {
		return 0, err
	}
	if len(required) == 0 {
		return 0, nil
	}

	pctByContent, err := a.percentages(ctx, userID, "course_id = ?", courseID)
	if err != nil {
		return 0, err
	}

	return averageOver(required, pctByContent), nil
}

// ModuleProgress: cùng quy tắc, scope theo module
func (a *AggregateService) ModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (float64, error) {
	contents, err := a.catalog.ListContents(ctx, moduleID)
	if err != nil {
		return 0, err
	}
	var required []models.ContentItem
	for _, c := range contents {
		if c.IsRequired {
			required = append(required, c)
		}
	}
	if len(required) == 0 {
		return 0, nil
	}

	pctByContent, err := a.percentages(ctx, userID, "module_id = ?", moduleID)
	if err != nil {
		return 0, err
	}

	return averageOver(required, pctByContent), nil
}

func (a *AggregateService) percentages(ctx context.Context, userID uuid.UUID, scopeQuery string, scopeID uuid.UUID) (map[uuid.UUID]float64, error) {
	var rows []models.ContentProgress
	if err := a.db.WithContext(ctx).
		Select("content_id", "completion_percentage").
		Where("user_id = ?", userID).
		Where(scopeQuery, scopeID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		out[row.ContentID] = row.CompletionPercentage
	}
	return out, nil
}

func averageOver(required []models.ContentItem, pctByContent map[uuid.UUID]float64) float64 {
	total := 0.0
	for _, c := range required {
		total += pctByContent[c.ID] // thiếu dòng tiến độ -> 0
	}
	return round2(total / float64(len(required)))
}
