package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/config"
	"github.com/khanhvo/lms-tracking-backend/logger"
	"github.com/khanhvo/lms-tracking-backend/models"
)

// SessionService quản lý vòng đời phiên học: start -> heartbeat -> end.
// Mọi validate -> mutate -> persist nằm trong một bước tường minh,
// không có side effect ẩn qua hook của model.
type SessionService struct {
	db          *gorm.DB
	cfg         config.TrackingConfig
	log         *logger.Logger
	catalog     ContentCatalog
	enrollments EnrollmentStore
}

func NewSessionService(db *gorm.DB, cfg config.TrackingConfig, log *logger.Logger) *SessionService {
	return &SessionService{
		db:          db,
		cfg:         cfg,
		log:         log.With("service", "session"),
		catalog:     NewGormCatalog(db),
		enrollments: NewGormEnrollments(db),
	}
}

// Telemetry delta client gửi kèm mỗi heartbeat. Các delta cộng dồn lên counter
// của phiên, không bao giờ ghi đè.
type HeartbeatInput struct {
	ReportedPosition  int
	ActivePlaybackSec int // giá trị tuyệt đối client báo, đi qua watermark
	SkipDelta         int
	SeekDelta         int
	PauseDelta        int
	ReplayDelta       int
	FullscreenDelta   int
	SpeedChangeDelta  int
	Events            []models.PlaybackEvent
}

func (in *HeartbeatInput) validate() error {
	if in.ReportedPosition < 0 {
		return newValidationError("reported_position", "không được âm")
	}
	if in.SkipDelta < 0 || in.SeekDelta < 0 || in.PauseDelta < 0 ||
		in.ReplayDelta < 0 || in.FullscreenDelta < 0 || in.SpeedChangeDelta < 0 {
		return newValidationError("deltas", "delta không được âm")
	}
	return nil
}

// Input chốt phiên: delta cuối + trạng thái cuối client báo
type EndInput struct {
	HeartbeatInput
	FinalCompletionPct float64
}

// Start tạo phiên mới cho (user, content). Nếu đang có phiên active cho cặp
// này thì force-end phiên cũ (không chấm điểm) trước khi tạo. Bất biến
// "tối đa một phiên active" do partial unique index uniq_active_session giữ;
// hai Start song song thì bên thua bị từ chối insert và chạy lại transaction,
// lần hai sẽ thấy (và force-end) phiên vừa thắng.
func (s *SessionService) Start(ctx context.Context, userID, contentID uuid.UUID, initialPosition int) (*models.LearningSession, error) {
	if initialPosition < 0 {
		return nil, newValidationError("initial_position", "không được âm")
	}

	content, err := s.catalog.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.HasActiveEnrollment(ctx, userID, content.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrAccessDenied
	}

	now := time.Now()
	session := &models.LearningSession{
		ID:              uuid.New(),
		UserID:          userID,
		ContentID:       contentID,
		CourseID:        content.CourseID,
		StartedAt:       now,
		LastHeartbeatAt: now,
		CurrentPosition: initialPosition,
	}

	var txErr error
	for attempt := 0; attempt < 2; attempt++ {
		txErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var stale models.LearningSession
			result := tx.Where("user_id = ? AND content_id = ? AND ended_at IS NULL", userID, contentID).
				First(&stale)
			if result.Error == nil {
				// Force-end phiên cũ, không chấm điểm
				stale.EndedAt = &now
				stale.DurationMinutes = int(now.Sub(stale.StartedAt).Minutes())
				if err := tx.Save(&stale).Error; err != nil {
					return err
				}
				s.log.Info("force-end phiên cũ trước khi start phiên mới",
					"session_id", stale.ID, "user_id", userID, "content_id", contentID)
			} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}

			return tx.Create(session).Error
		})
		if txErr == nil {
			return session, nil
		}
		if !errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, txErr
		}
		// Thua race với một Start song song, chạy lại để force-end phiên
		// vừa thắng
		s.log.Info("start trùng phiên active, thử lại",
			"user_id", userID, "content_id", contentID)
	}
	return nil, txErr
}

// Heartbeat cộng dồn telemetry lên phiên đang active. Phiên đã end trả
// ErrInvalidState để client cũ không hồi sinh được phiên đã đóng.
// Heartbeat không đụng vào ContentProgress - caller update ledger riêng.
// Phiên chỉ user sở hữu mới được mutate; phiên của user khác coi như không
// tồn tại để không dò được session id.
func (s *SessionService) Heartbeat(ctx context.Context, userID, sessionID uuid.UUID, in HeartbeatInput) (*models.LearningSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var session models.LearningSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotFound
	}
	if session.IsEnded() {
		return nil, ErrInvalidState
	}

	content, err := s.catalog.GetContent(ctx, session.ContentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.applyTelemetry(&session, content, in, now)

	if err := s.db.WithContext(ctx).Save(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// End chốt phiên: áp delta cuối, set ended_at, chấm attention/cheating score
// và cờ đáng ngờ. Gọi End lần hai trả ErrInvalidState, tuyệt đối không chấm
// điểm lại. Ownership check như Heartbeat.
func (s *SessionService) End(ctx context.Context, userID, sessionID uuid.UUID, in EndInput) (*models.LearningSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.FinalCompletionPct < 0 || in.FinalCompletionPct > 100 {
		return nil, newValidationError("final_completion_percentage", "phải nằm trong [0,100]")
	}

	var session models.LearningSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrNotFound
	}
	if session.IsEnded() {
		return nil, ErrInvalidState
	}

	content, err := s.catalog.GetContent(ctx, session.ContentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.applyTelemetry(&session, content, in.HeartbeatInput, now)
	session.EndedAt = &now

	result := scoreSession(&session, in.FinalCompletionPct, content.DurationSec, s.cfg)
	session.AttentionScore = result.AttentionScore
	session.CheatingScore = result.CheatingScore
	session.IsSuspicious = result.IsSuspicious

	if err := s.db.WithContext(ctx).Save(&session).Error; err != nil {
		return nil, err
	}

	if session.IsSuspicious {
		s.log.Warn("phiên học bị đánh dấu đáng ngờ",
			"session_id", session.ID, "user_id", session.UserID,
			"cheating_score", session.CheatingScore)
	}
	return &session, nil
}

func (s *SessionService) applyTelemetry(session *models.LearningSession, content *models.ContentItem, in HeartbeatInput, now time.Time) {
	session.SkipCount += in.SkipDelta
	session.SeekCount += in.SeekDelta
	session.PauseCount += in.PauseDelta
	session.ReplayCount += in.ReplayDelta
	session.FullscreenCount += in.FullscreenDelta
	session.SpeedChangeCount += in.SpeedChangeDelta
	session.CurrentPosition = in.ReportedPosition
	session.LastHeartbeatAt = now
	session.DurationMinutes = int(now.Sub(session.StartedAt).Minutes())

	applyActivePlaybackTime(session, in.ActivePlaybackSec, content, s.cfg)
	appendEventLog(session, in.Events)
}

// SweepAbandoned force-end các phiên bỏ rơi (heartbeat cuối quá timeout).
// Không chấm điểm. Lỗi từng dòng chỉ log rồi đi tiếp, không hủy cả batch.
func (s *SessionService) SweepAbandoned(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cfg.SessionTimeout)

	var stale []models.LearningSession
	if err := s.db.WithContext(ctx).
		Where("ended_at IS NULL AND last_heartbeat_at < ?", cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		sess := &stale[i]
		now := time.Now()
		sess.EndedAt = &now
		sess.DurationMinutes = int(sess.LastHeartbeatAt.Sub(sess.StartedAt).Minutes())
		if err := s.db.WithContext(ctx).Save(sess).Error; err != nil {
			s.log.Error("sweep không end được phiên", "session_id", sess.ID, "error", err)
			continue
		}
		swept++
	}

	if swept > 0 {
		s.log.Info("đã dọn phiên bỏ rơi", "count", swept)
	}
	return swept, nil
}
