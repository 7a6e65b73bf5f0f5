package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Một mốc sự kiện playback client gửi kèm heartbeat. Chỉ lưu để audit/debug,
// không dùng để tính lại active playback time.
type PlaybackEvent struct {
	Type     string    `json:"type"` // play | pause | seek | rewind
	Position int       `json:"position"`
	At       time.Time `json:"at"`
}

// Phiên học của sinh viên trên một nội dung.
// Bất biến: mỗi (user, content) chỉ có tối đa 1 phiên với ended_at = NULL.
// Phiên đã kết thúc là bất biến, mọi heartbeat sau đó bị từ chối.
type LearningSession struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Partial unique index giữ bất biến "tối đa một phiên active" ở tầng
	// storage, kể cả khi hai Start chạy song song trên hai connection
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_session_user_content;uniqueIndex:uniq_active_session,where:ended_at IS NULL" json:"user_id"`
	ContentID uuid.UUID `gorm:"type:uuid;not null;index:idx_session_user_content;uniqueIndex:uniq_active_session" json:"content_id"`
	// Denormalize course_id để query thống kê theo khóa
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`

	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time `gorm:"index" json:"ended_at,omitempty"`
	LastHeartbeatAt time.Time  `json:"last_heartbeat_at"`

	// Telemetry tích lũy qua heartbeat
	ActivePlaybackSec int `gorm:"default:0" json:"active_playback_sec"` // watermark, không bao giờ giảm
	SkipCount         int `gorm:"default:0" json:"skip_count"`
	SeekCount         int `gorm:"default:0" json:"seek_count"`
	PauseCount        int `gorm:"default:0" json:"pause_count"`
	ReplayCount       int `gorm:"default:0" json:"replay_count"`
	FullscreenCount   int `gorm:"default:0" json:"fullscreen_count"`    // video-only
	SpeedChangeCount  int `gorm:"default:0" json:"speed_change_count"`  // video-only
	CurrentPosition   int `gorm:"default:0" json:"current_position"`    // vị trí client báo lần cuối
	DurationMinutes   int `gorm:"default:0" json:"duration_minutes"`    // tổng phút của phiên

	// Chỉ set khi kết thúc phiên
	AttentionScore int  `gorm:"default:0" json:"attention_score"` // 0-100
	CheatingScore  int  `gorm:"default:0" json:"cheating_score"`  // 0-100
	IsSuspicious   bool `gorm:"default:false" json:"is_suspicious"`

	// Log sự kiện playback, chỉ để audit
	EventLog datatypes.JSON `gorm:"type:jsonb" json:"event_log,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Khóa ngoại
	User    User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Content ContentItem `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsEnded: phiên đã đóng, mọi mutation tiếp theo là InvalidState
func (s *LearningSession) IsEnded() bool {
	return s.EndedAt != nil
}
