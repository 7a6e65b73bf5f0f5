package services

import (
	"encoding/json"

	"github.com/khanhvo/lms-tracking-backend/config"
	"github.com/khanhvo/lms-tracking-backend/models"
)

// applyActivePlaybackTime cập nhật watermark active playback của phiên.
//
// Quy tắc: active playback time = mốc xa nhất từng đạt tới, không phải tổng
// các khoảng đã phát. Giá trị client báo chỉ được nhận khi >= watermark hiện
// tại; báo thấp hơn (tua lại rồi phát lại đoạn đã xem) bị clamp về watermark,
// tức là không cộng thêm credit nào.
//
// Trần: với video không bao giờ vượt quá MaxPlaybackFactor × thời lượng.
// Đây là validate input, không phải tính toán từ event log.
func applyActivePlaybackTime(sess *models.LearningSession, reported int, content *models.ContentItem, cfg config.TrackingConfig) {
	if reported < 0 {
		return
	}
	if reported > sess.ActivePlaybackSec {
		sess.ActivePlaybackSec = reported
	}
	if content.Type == models.ContentVideo && content.DurationSec > 0 {
		ceiling := int(cfg.MaxPlaybackFactor * float64(content.DurationSec))
		if sess.ActivePlaybackSec > ceiling {
			sess.ActivePlaybackSec = ceiling
		}
	}
}

// appendEventLog nối các sự kiện playback mới vào log audit của phiên.
// Log chỉ để debug/audit, không tham gia tính watermark; lỗi decode log cũ
// thì bỏ log cũ chứ không chặn heartbeat.
func appendEventLog(sess *models.LearningSession, events []models.PlaybackEvent) {
	if len(events) == 0 {
		return
	}
	var existing []models.PlaybackEvent
	if len(sess.EventLog) > 0 {
		if err := json.Unmarshal(sess.EventLog, &existing); err != nil {
			existing = nil
		}
	}
	existing = append(existing, events...)
	if raw, err := json.Marshal(existing); err == nil {
		sess.EventLog = raw
	}
}
