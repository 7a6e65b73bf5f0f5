package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khanhvo/lms-tracking-backend/models"
)

func TestScoreSession_Attention(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		name          string
		session       models.LearningSession
		completionPct float64
		durationSec   int
		want          int
	}{
		{
			// video 600s xem trong 720s (pace 1.2x), 100%, có pause + replay
			name:          "hoan_hao",
			session:       models.LearningSession{DurationMinutes: 12, PauseCount: 1, ReplayCount: 1},
			completionPct: 100,
			durationSec:   600,
			want:          100,
		},
		{
			// pace 1.2x nhưng không pause/replay
			name:          "khong_pause_khong_replay",
			session:       models.LearningSession{DurationMinutes: 12},
			completionPct: 100,
			durationSec:   600,
			want:          80,
		},
		{
			// pace 0.9x -> 20 điểm pace
			name:          "pace_hoi_nhanh",
			session:       models.LearningSession{DurationMinutes: 9},
			completionPct: 100,
			durationSec:   600,
			want:          70,
		},
		{
			// pace 3x -> 10 điểm pace
			name:          "pace_qua_cham",
			session:       models.LearningSession{DurationMinutes: 30},
			completionPct: 50,
			durationSec:   600,
			want:          35,
		},
		{
			// completion vượt 100 bị cap
			name:          "completion_cap_100",
			session:       models.LearningSession{DurationMinutes: 12},
			completionPct: 150,
			durationSec:   600,
			want:          80,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scoreSession(&tc.session, tc.completionPct, tc.durationSec, cfg)
			assert.Equal(t, tc.want, got.AttentionScore)
		})
	}
}

func TestScoreSession_Cheating(t *testing.T) {
	cfg := testConfig()

	cases := []struct {
		name           string
		session        models.LearningSession
		completionPct  float64
		durationSec    int
		wantScore      int
		wantSuspicious bool
	}{
		{
			name:           "sach_se",
			session:        models.LearningSession{DurationMinutes: 12, PauseCount: 1},
			completionPct:  100,
			durationSec:    600,
			wantScore:      0,
			wantSuspicious: false,
		},
		{
			// skip 6 lần -> min(60, 40) = 40
			name:           "skip_nhieu",
			session:        models.LearningSession{DurationMinutes: 12, SkipCount: 6},
			completionPct:  100,
			durationSec:    600,
			wantScore:      40,
			wantSuspicious: false,
		},
		{
			// seek 21 lần (+30) + phiên 3 phút cho video 10 phút (+40) -> 70, chưa vượt ngưỡng
			name:           "seek_va_qua_nhanh",
			session:        models.LearningSession{DurationMinutes: 3, SeekCount: 21},
			completionPct:  100,
			durationSec:    600,
			wantScore:      70,
			wantSuspicious: false,
		},
		{
			// đủ cả: skip (+40), seek (+30), nhanh (+40), completion 10% (+30) -> clamp 100
			name:           "gian_lan_ro_rang",
			session:        models.LearningSession{DurationMinutes: 2, SkipCount: 10, SeekCount: 25},
			completionPct:  10,
			durationSec:    600,
			wantScore:      100,
			wantSuspicious: true,
		},
		{
			// skip đúng 5 chưa bị phạt
			name:           "skip_dung_nguong",
			session:        models.LearningSession{DurationMinutes: 12, SkipCount: 5},
			completionPct:  100,
			durationSec:    600,
			wantScore:      0,
			wantSuspicious: false,
		},
		{
			// completion 0% không tính là "thấp bất thường"
			name:           "chua_xem_gi",
			session:        models.LearningSession{DurationMinutes: 12},
			completionPct:  0,
			durationSec:    600,
			wantScore:      0,
			wantSuspicious: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scoreSession(&tc.session, tc.completionPct, tc.durationSec, cfg)
			assert.Equal(t, tc.wantScore, got.CheatingScore)
			assert.Equal(t, tc.wantSuspicious, got.IsSuspicious)
		})
	}
}
