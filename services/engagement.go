package services

import (
	"github.com/khanhvo/lms-tracking-backend/config"
	"github.com/khanhvo/lms-tracking-backend/models"
)

// Kết quả chấm điểm engagement của một phiên đã kết thúc
type ScoreResult struct {
	AttentionScore int
	CheatingScore  int
	IsSuspicious   bool
}

// scoreSession chấm attention score và cheating-risk score cho phiên vừa kết
// thúc. Chạy đúng một lần lúc end session, trên telemetry đã chốt + thời lượng
// danh nghĩa của nội dung. Các breakpoint giữ nguyên theo hệ thống cũ để tương
// thích hành vi; đây là heuristic chứ không phải classifier chính xác.
func scoreSession(sess *models.LearningSession, completionPct float64, durationSec int, cfg config.TrackingConfig) ScoreResult {
	expectedMin := float64(durationSec) / 60.0
	elapsedMin := float64(sess.DurationMinutes)

	attention := attentionScore(sess, completionPct, elapsedMin, expectedMin)
	cheating := cheatingScore(sess, completionPct, elapsedMin, expectedMin)

	return ScoreResult{
		AttentionScore: attention,
		CheatingScore:  cheating,
		IsSuspicious:   cheating > cfg.SuspiciousThreshold,
	}
}

func attentionScore(sess *models.LearningSession, completionPct, elapsedMin, expectedMin float64) int {
	score := 0.0

	// Tối đa 50 điểm theo completion percentage (cap 100%)
	pct := completionPct
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	score += pct * 0.5

	// Tối đa 30 điểm theo pace: tỉ lệ phút thực tế / phút kỳ vọng
	if expectedMin > 0 {
		ratio := elapsedMin / expectedMin
		switch {
		case ratio >= 1.0 && ratio <= 1.5:
			score += 30
		case ratio >= 0.8 && ratio <= 2.0:
			score += 20
		default:
			score += 10
		}
	} else {
		score += 10
	}

	// Có pause ít nhất một lần: dấu hiệu xem chăm chú
	if sess.PauseCount > 0 {
		score += 10
	}
	// Có replay ít nhất một lần
	if sess.ReplayCount > 0 {
		score += 10
	}

	return clampScore(int(score))
}

func cheatingScore(sess *models.LearningSession, completionPct, elapsedMin, expectedMin float64) int {
	score := 0

	// Skip nhiều bất thường
	if sess.SkipCount > 5 {
		penalty := sess.SkipCount * 10
		if penalty > 40 {
			penalty = 40
		}
		score += penalty
	}

	// Seek liên tục
	if sess.SeekCount > 20 {
		score += 30
	}

	// Thời gian phiên chưa tới một nửa kỳ vọng
	if expectedMin > 0 && elapsedMin < 0.5*expectedMin {
		score += 40
	}

	// Completion thấp bất thường so với tiến độ khai báo
	if completionPct > 0 && completionPct < 20 {
		score += 30
	}

	return clampScore(score)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
