package config

import (
	"os"
	"strconv"
	"time"
)

// TrackingConfig gom các ngưỡng của engine tracking. Giá trị mặc định giữ nguyên
// hành vi của hệ thống cũ, có thể override qua biến môi trường.
type TrackingConfig struct {
	// Đạt ngưỡng này (%) thì tự động đánh dấu hoàn thành, percentage ghim 100
	CompletionThreshold float64
	// Nhảy vị trí quá buffer này (giây) thì phần vượt coi là skip, không tính credit
	SkipBufferSec int
	// Trần active playback time = hệ số này × thời lượng video
	MaxPlaybackFactor float64
	// Phiên không heartbeat quá khoảng này sẽ bị sweep force-end
	SessionTimeout time.Duration
	// cheating_score vượt ngưỡng này thì đánh dấu phiên đáng ngờ
	SuspiciousThreshold int
}

func DefaultTrackingConfig() TrackingConfig {
	return TrackingConfig{
		CompletionThreshold: 95.0,
		SkipBufferSec:       5,
		MaxPlaybackFactor:   2.0,
		SessionTimeout:      4 * time.Hour,
		SuspiciousThreshold: 70,
	}
}

var Tracking = DefaultTrackingConfig()

// InitTracking đọc override từ env (nếu có), gọi sau godotenv.Load()
func InitTracking() {
	if v := os.Getenv("TRACKING_COMPLETION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 100 {
			Tracking.CompletionThreshold = f
		}
	}
	if v := os.Getenv("TRACKING_SKIP_BUFFER_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			Tracking.SkipBufferSec = n
		}
	}
	if v := os.Getenv("TRACKING_SESSION_TIMEOUT_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			Tracking.SessionTimeout = time.Duration(n) * time.Hour
		}
	}
	if v := os.Getenv("TRACKING_SUSPICIOUS_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			Tracking.SuspiciousThreshold = n
		}
	}
}
