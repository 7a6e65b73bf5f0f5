package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhvo/lms-tracking-backend/models"
)

func videoContent(durationSec int) *models.ContentItem {
	return &models.ContentItem{Type: models.ContentVideo, DurationSec: durationSec}
}

func TestApplyActivePlaybackTime_Monotonic(t *testing.T) {
	cfg := testConfig()
	content := videoContent(600)
	sess := &models.LearningSession{}

	// Xem 0 -> 60
	applyActivePlaybackTime(sess, 60, content, cfg)
	assert.Equal(t, 60, sess.ActivePlaybackSec)

	// Tua lại 30 rồi xem tiếp tới 60: client báo 30 và 60, watermark đứng yên
	applyActivePlaybackTime(sess, 30, content, cfg)
	assert.Equal(t, 60, sess.ActivePlaybackSec, "replay đoạn đã xem không được cộng credit")
	applyActivePlaybackTime(sess, 60, content, cfg)
	assert.Equal(t, 60, sess.ActivePlaybackSec)

	// Xem tiếp qua mốc cũ
	applyActivePlaybackTime(sess, 90, content, cfg)
	assert.Equal(t, 90, sess.ActivePlaybackSec)
}

func TestApplyActivePlaybackTime_Ceiling(t *testing.T) {
	cfg := testConfig()
	content := videoContent(600)
	sess := &models.LearningSession{}

	// Trần 2x thời lượng: 600s video -> tối đa 1200
	applyActivePlaybackTime(sess, 5000, content, cfg)
	assert.Equal(t, 1200, sess.ActivePlaybackSec)

	// Giá trị âm bị bỏ qua
	applyActivePlaybackTime(sess, -10, content, cfg)
	assert.Equal(t, 1200, sess.ActivePlaybackSec)
}

func TestApplyActivePlaybackTime_NonVideoNoCeiling(t *testing.T) {
	cfg := testConfig()
	content := &models.ContentItem{Type: models.ContentPDF, DurationSec: 20}
	sess := &models.LearningSession{}

	// PDF không áp trần theo thời lượng (duration là số trang)
	applyActivePlaybackTime(sess, 3600, content, cfg)
	assert.Equal(t, 3600, sess.ActivePlaybackSec)
}

func TestAppendEventLog(t *testing.T) {
	sess := &models.LearningSession{}
	now := time.Now()

	appendEventLog(sess, []models.PlaybackEvent{
		{Type: "play", Position: 0, At: now},
		{Type: "pause", Position: 30, At: now},
	})
	appendEventLog(sess, []models.PlaybackEvent{
		{Type: "rewind", Position: 10, At: now},
	})

	var events []models.PlaybackEvent
	require.NoError(t, json.Unmarshal(sess.EventLog, &events))
	require.Len(t, events, 3)
	assert.Equal(t, "play", events[0].Type)
	assert.Equal(t, "rewind", events[2].Type)

	// Log rác không chặn heartbeat, chỉ bị thay mới
	sess.EventLog = []byte("{not-json")
	appendEventLog(sess, []models.PlaybackEvent{{Type: "play", At: now}})
	require.NoError(t, json.Unmarshal(sess.EventLog, &events))
	assert.Len(t, events, 1)
}
