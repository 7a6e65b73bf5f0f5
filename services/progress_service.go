package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/config"
	"github.com/khanhvo/lms-tracking-backend/logger"
	"github.com/khanhvo/lms-tracking-backend/models"
)

// ProgressService là ledger tiến độ: bản ghi bền vững theo (user, content),
// nguồn sự thật cho unlock và rollup.
type ProgressService struct {
	db          *gorm.DB
	cfg         config.TrackingConfig
	log         *logger.Logger
	catalog     ContentCatalog
	enrollments EnrollmentStore
}

func NewProgressService(db *gorm.DB, cfg config.TrackingConfig, log *logger.Logger) *ProgressService {
	return &ProgressService{
		db:          db,
		cfg:         cfg,
		log:         log.With("service", "progress"),
		catalog:     NewGormCatalog(db),
		enrollments: NewGormEnrollments(db),
	}
}

// ensureEnrolled: mọi mutation lên ledger đều đòi ghi danh active với khóa
// học của nội dung, cùng gate với SessionService.Start
func (p *ProgressService) ensureEnrolled(ctx context.Context, userID, contentID uuid.UUID) error {
	content, err := p.catalog.GetContent(ctx, contentID)
	if err != nil {
		return err
	}
	enrolled, err := p.enrollments.HasActiveEnrollment(ctx, userID, content.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrAccessDenied
	}
	return nil
}

// GetOrCreate fetch-or-create idempotent: mỗi (user, content) đúng một dòng.
// Dòng mới bắt đầu ở vị trí 0, 0%, chưa hoàn thành.
func (p *ProgressService) GetOrCreate(ctx context.Context, userID, contentID uuid.UUID) (*models.ContentProgress, error) {
	var progress models.ContentProgress
	err := p.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	content, err := p.catalog.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !content.Type.Valid() {
		return nil, newValidationError("content_type", "loại nội dung không xác định")
	}

	progress = models.ContentProgress{
		ID:          uuid.New(),
		UserID:      userID,
		ContentID:   contentID,
		ModuleID:    content.ModuleID,
		CourseID:    content.CourseID,
		ContentType: content.Type,
	}
	if err := p.db.WithContext(ctx).Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// Update áp một lần tracking lên ledger.
//
//   - Skip detection (video): nhảy vị trí vượt quá buffer thì phần vượt coi là
//     skip, trừ khỏi watch-time credit: credit = delta - max(0, jump - buffer),
//     sàn 0.
//   - Guard hoàn thành: bản ghi đã is_completed là trạng thái chung cuộc -
//     update định hạ percentage xuống dưới 100 trả ErrInvalidState, bản ghi
//     giữ nguyên; các tracking call khác trên bản ghi đã hoàn thành chỉ chạm
//     last_accessed_at.
//   - Auto-complete: percentage đạt ngưỡng (mặc định 95%) thì chuyển
//     is_completed = true, percentage ghim 100, đóng dấu completed_at.
func (p *ProgressService) Update(ctx context.Context, userID, contentID uuid.UUID, newPosition int, newPct float64, watchTimeDelta int) (*models.ContentProgress, error) {
	if newPosition < 0 {
		return nil, newValidationError("position", "không được âm")
	}
	if newPct < 0 || newPct > 100 {
		return nil, newValidationError("completion_percentage", "phải nằm trong [0,100]")
	}
	if watchTimeDelta < 0 {
		return nil, newValidationError("watch_time_delta", "không được âm")
	}

	if err := p.ensureEnrolled(ctx, userID, contentID); err != nil {
		return nil, err
	}

	progress, err := p.GetOrCreate(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}

	if progress.IsCompleted {
		if newPct < 100 {
			return nil, ErrInvalidState
		}
		// Nội dung đã hoàn thành: position/percentage/cờ đóng băng
		progress.LastAccessedAt = time.Now()
		if err := p.db.WithContext(ctx).Save(progress).Error; err != nil {
			return nil, err
		}
		return progress, nil
	}

	credited := watchTimeDelta
	if progress.ContentType == models.ContentVideo {
		jump := newPosition - progress.PlaybackPosition
		if jump > p.cfg.SkipBufferSec {
			credited -= jump - p.cfg.SkipBufferSec
			if credited < 0 {
				credited = 0
			}
		}
	}

	progress.WatchTimeSec += credited
	progress.PlaybackPosition = newPosition
	progress.CompletionPercentage = round2(newPct)
	progress.LastAccessedAt = time.Now()

	if progress.CompletionPercentage >= p.cfg.CompletionThreshold {
		p.complete(progress)
	}

	if err := p.db.WithContext(ctx).Save(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// MarkCompleted: hoàn thành tường minh ("đánh dấu đã học xong"), idempotent,
// bỏ qua vị trí hiện tại.
func (p *ProgressService) MarkCompleted(ctx context.Context, userID, contentID uuid.UUID) (*models.ContentProgress, error) {
	if err := p.ensureEnrolled(ctx, userID, contentID); err != nil {
		return nil, err
	}

	progress, err := p.GetOrCreate(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	if progress.IsCompleted {
		return progress, nil
	}

	p.complete(progress)
	progress.LastAccessedAt = time.Now()
	if err := p.db.WithContext(ctx).Save(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

func (p *ProgressService) complete(progress *models.ContentProgress) {
	now := time.Now()
	progress.IsCompleted = true
	progress.CompletionPercentage = 100
	if progress.CompletedAt == nil {
		progress.CompletedAt = &now
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
