package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/models"
)

func newSessionService(t *testing.T) (*SessionService, *fixture) {
	t.Helper()
	db := openTestDB(t)
	f := seedFixture(t, db)
	return NewSessionService(db, testConfig(), nopLogger()), f
}

func TestStartSession_RequiresEnrollment(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	svc := NewSessionService(db, testConfig(), nopLogger())
	ctx := context.Background()

	// User khác chưa ghi danh
	outsider := models.User{ID: uuid.New(), FullName: "Người lạ", Email: "outsider@example.com"}
	require.NoError(t, db.Create(&outsider).Error)

	_, err := svc.Start(ctx, outsider.ID, f.video.ID, 0)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Có ghi danh thì start được
	_, err = svc.Start(ctx, f.user.ID, f.video.ID, 0)
	assert.NoError(t, err)
}

func TestStartSession_SingleActivePerUserContent(t *testing.T) {
	svc, f := newSessionService(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, f.user.ID, f.video.ID, 0)
	require.NoError(t, err)

	second, err := svc.Start(ctx, f.user.ID, f.video.ID, 30)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// Phiên đầu bị force-end, chỉ còn đúng một phiên active
	var reloaded models.LearningSession
	require.NoError(t, f.db.First(&reloaded, "id = ?", first.ID).Error)
	assert.NotNil(t, reloaded.EndedAt)
	assert.Equal(t, 0, reloaded.AttentionScore, "force-end không chấm điểm")

	var active int64
	require.NoError(t, f.db.Model(&models.LearningSession{}).
		Where("user_id = ? AND content_id = ? AND ended_at IS NULL", f.user.ID, f.video.ID).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)
}

func TestActiveSessionUniqueAtStore(t *testing.T) {
	db := openTestDB(t)
	f := seedFixture(t, db)
	now := time.Now()

	first := models.LearningSession{
		ID: uuid.New(), UserID: f.user.ID, ContentID: f.video.ID, CourseID: f.course.ID,
		StartedAt: now, LastHeartbeatAt: now,
	}
	require.NoError(t, db.Create(&first).Error)

	// Insert phiên active thứ hai cho cùng (user, content): index chặn.
	// Đây là chốt chặn cuối khi hai Start song song cùng qua được bước First.
	duplicate := models.LearningSession{
		ID: uuid.New(), UserID: f.user.ID, ContentID: f.video.ID, CourseID: f.course.ID,
		StartedAt: now, LastHeartbeatAt: now,
	}
	err := db.Create(&duplicate).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Phiên đã end không còn tính vào index, phiên active mới tạo được
	first.EndedAt = &now
	require.NoError(t, db.Save(&first).Error)

	next := models.LearningSession{
		ID: uuid.New(), UserID: f.user.ID, ContentID: f.video.ID, CourseID: f.course.ID,
		StartedAt: now, LastHeartbeatAt: now,
	}
	assert.NoError(t, db.Create(&next).Error)
}

func TestHeartbeat_AccumulatesDeltas(t *testing.T) {
	svc, f := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, f.user.ID, f.video.ID, 0)
	require.NoError(t, err)

	_, err = svc.Heartbeat(ctx, f.user.ID, session.ID, HeartbeatInput{
		ReportedPosition: 30, ActivePlaybackSec: 30,
		SkipDelta: 1, SeekDelta: 2, PauseDelta: 1,
	})
	require.NoError(t, err)

	updated, err := svc.Heartbeat(ctx, f.user.ID, session.ID, HeartbeatInput{
		ReportedPosition: 60, ActivePlaybackSec: 60,
		SkipDelta: 1, SeekDelta: 1, ReplayDelta: 1,
	})
	require.NoError(t, err)

	// Delta cộng dồn, không ghi đè
	assert.Equal(t, 2, updated.SkipCount)
	assert.Equal(t, 3, updated.SeekCount)
	assert.Equal(t, 1, updated.PauseCount)
	assert.Equal(t, 1, updated.ReplayCount)
	assert.Equal(t, 60, updated.CurrentPosition)
	assert.Equal(t, 60, updated.ActivePlaybackSec)
}

func TestHeartbeat_EndedSessionIsInvalid(t *testing.T) {
	svc, f := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, f.user.ID, f.video.ID, 0)
	require.NoError(t, err)

	_, err = svc.End(ctx, f.user.ID, session.ID, EndInput{
		HeartbeatInput:     HeartbeatInput{ReportedPosition: 600, ActivePlaybackSec: 600},
		FinalCompletionPct: 100,
	})
	require.NoError(t, err)

	// Client cũ không hồi sinh được phiên đã đóng
	_, err = svc.Heartbeat(ctx, f.user.ID, session.ID, HeartbeatInput{ReportedPosition: 10})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestHeartbeat_UnknownSessionNotFound(t *testing.T) {
	svc, f := newSessionService(t)
	_, err := svc.Heartbeat(context.Background(), f.user.ID, uuid.New(), HeartbeatInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionMutationRequiresOwner(t *testing.T) {
	svc, f := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, f.user.ID, f.video.ID, 0)
	require.NoError(t, err)

	intruder := models.User{ID: uuid.New(), FullName: "Người lạ", Email: "intruder@example.com"}
	require.NoError(t, f.db.Create(&intruder).Error)
	seedEnrollment(t, f.db, intruder.ID, f.course.ID)

	// User khác không heartbeat/end được phiên không thuộc về mình,
	// kể cả khi có ghi danh; trả NotFound để không dò được session id
	_, err = svc.Heartbeat(ctx, intruder.ID, session.ID, HeartbeatInput{ReportedPosition: 10, SkipDelta: 99})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.End(ctx, intruder.ID, session.ID, EndInput{
		HeartbeatInput:     HeartbeatInput{SkipDelta: 99, SeekDelta: 99},
		FinalCompletionPct: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	// Phiên của nạn nhân không suy suyển
	var reloaded models.LearningSession
	require.NoError(t, f.db.First(&reloaded, "id = ?", session.ID).Error)
	assert.Nil(t, reloaded.EndedAt)
	assert.Equal(t, 0, reloaded.SkipCount)
	assert.False(t, reloaded.IsSuspicious)
}

func TestEndSession_ScoresOnceOnly(t *testing.T) {
	svc, f := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, f.user.ID, f.video.ID, 0)
	require.NoError(t, err)

	ended, err := svc.End(ctx, f.user.ID, session.ID, EndInput{
		HeartbeatInput:     HeartbeatInput{ReportedPosition: 600, ActivePlaybackSec: 600, PauseDelta: 1, ReplayDelta: 1},
		FinalCompletionPct: 100,
	})
	require.NoError(t, err)
	require.NotNil(t, ended.EndedAt)
	// Phiên kết thúc ngay lập tức: pace quá nhanh -> 50 + 10 + 10 + 10 = 80
	assert.Equal(t, 80, ended.AttentionScore)
	// Nhanh hơn nửa thời lượng kỳ vọng -> +40, chưa vượt ngưỡng đáng ngờ
	assert.Equal(t, 40, ended.CheatingScore)
	assert.False(t, ended.IsSuspicious)

	// End lần hai: InvalidState, không chấm điểm lại
	_, err = svc.End(ctx, f.user.ID, session.ID, EndInput{FinalCompletionPct: 10})
	assert.ErrorIs(t, err, ErrInvalidState)

	var reloaded models.LearningSession
	require.NoError(t, f.db.First(&reloaded, "id = ?", session.ID).Error)
	assert.Equal(t, 80, reloaded.AttentionScore)
}

func TestEndSession_ValidatesCompletionPct(t *testing.T) {
	svc, f := newSessionService(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, f.user.ID, f.video.ID, 0)
	require.NoError(t, err)

	_, err = svc.End(ctx, f.user.ID, session.ID, EndInput{FinalCompletionPct: 101})
	assert.True(t, IsValidationError(err))
}

func TestSweepAbandoned(t *testing.T) {
	svc, f := newSessionService(t)
	ctx := context.Background()

	// Phiên bỏ rơi trên một nội dung khác, để Start bên dưới không force-end nó
	other := seedContent(t, f.db, f.module, 2, models.ContentVideo, 300, true)
	stale := models.LearningSession{
		ID: uuid.New(), UserID: f.user.ID, ContentID: other.ID, CourseID: f.course.ID,
		StartedAt:       time.Now().Add(-6 * time.Hour),
		LastHeartbeatAt: time.Now().Add(-5 * time.Hour),
	}
	require.NoError(t, f.db.Create(&stale).Error)

	// Phiên còn sống
	fresh, err := svc.Start(ctx, f.user.ID, f.video.ID, 0)
	require.NoError(t, err)

	swept, err := svc.SweepAbandoned(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	var sweptRow models.LearningSession
	require.NoError(t, f.db.First(&sweptRow, "id = ?", stale.ID).Error)
	assert.NotNil(t, sweptRow.EndedAt)
	assert.Equal(t, 0, sweptRow.AttentionScore, "sweep không chấm điểm")

	var freshRow models.LearningSession
	require.NoError(t, f.db.First(&freshRow, "id = ?", fresh.ID).Error)
	assert.Nil(t, freshRow.EndedAt)
}
