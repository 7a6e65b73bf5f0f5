package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/khanhvo/lms-tracking-backend/models"
	"github.com/khanhvo/lms-tracking-backend/services"
)

type StartSessionRequest struct {
	ContentID       string `json:"content_id" binding:"required,uuid"`
	InitialPosition int    `json:"initial_position"`
}

type playbackEventPayload struct {
	Type     string    `json:"type" binding:"required,oneof=play pause seek rewind"`
	Position int       `json:"position"`
	At       time.Time `json:"at"`
}

type HeartbeatRequest struct {
	Position             int                    `json:"position"`
	ActivePlaybackSec    int                    `json:"active_playback_sec"`
	WatchTimeDelta       int                    `json:"watch_time_delta"`
	CompletionPercentage float64                `json:"completion_percentage"`
	SkipDelta            int                    `json:"skip_delta"`
	SeekDelta            int                    `json:"seek_delta"`
	PauseDelta           int                    `json:"pause_delta"`
	ReplayDelta          int                    `json:"replay_delta"`
	FullscreenDelta      int                    `json:"fullscreen_delta"`
	SpeedChangeDelta     int                    `json:"speed_change_delta"`
	Events               []playbackEventPayload `json:"events,omitempty"`
}

func (r *HeartbeatRequest) toInput() services.HeartbeatInput {
	events := make([]models.PlaybackEvent, 0, len(r.Events))
	for _, e := range r.Events {
		at := e.At
		if at.IsZero() {
			at = time.Now()
		}
		events = append(events, models.PlaybackEvent{Type: e.Type, Position: e.Position, At: at})
	}
	return services.HeartbeatInput{
		ReportedPosition:  r.Position,
		ActivePlaybackSec: r.ActivePlaybackSec,
		SkipDelta:         r.SkipDelta,
		SeekDelta:         r.SeekDelta,
		PauseDelta:        r.PauseDelta,
		ReplayDelta:       r.ReplayDelta,
		FullscreenDelta:   r.FullscreenDelta,
		SpeedChangeDelta:  r.SpeedChangeDelta,
		Events:            events,
	}
}

// StartSession mở phiên học mới cho nội dung
// POST /api/learning/sessions/start
func StartSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contentID, err := parseUUIDField(c, "content_id", req.ContentID)
	if err != nil {
		return
	}

	session, err := Sessions.Start(c.Request.Context(), userID, contentID, req.InitialPosition)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Đã bắt đầu phiên học",
		"session_id": session.ID,
	})
}

// SessionHeartbeat nhận telemetry định kỳ, đồng thời cập nhật ledger tiến độ
// trong cùng request để tiến độ không phụ thuộc vào phiên
// POST /api/learning/sessions/:session_id/heartbeat
func SessionHeartbeat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := Sessions.Heartbeat(c.Request.Context(), userID, sessionID, req.toInput())
	if err != nil {
		// Client cũ heartbeat sau khi phiên bị sweep: không có gì để cập nhật,
		// không phải lỗi cứng
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "Không còn phiên để cập nhật"})
			return
		}
		handleServiceError(c, err)
		return
	}

	progress := applyCompanionProgress(c, userID, session, req.Position, req.CompletionPercentage, req.WatchTimeDelta)
	if progress == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"duration_minutes": session.DurationMinutes,
		"total_watch_time": progress.WatchTimeSec,
	})
}

type EndSessionRequest struct {
	HeartbeatRequest
	FinalPosition *int `json:"final_position,omitempty"`
}

// EndSession chốt phiên và trả điểm engagement
// POST /api/learning/sessions/:session_id/end
func EndSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	var req EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.FinalPosition != nil {
		req.Position = *req.FinalPosition
	}

	session, err := Sessions.End(c.Request.Context(), userID, sessionID, services.EndInput{
		HeartbeatInput:     req.toInput(),
		FinalCompletionPct: req.CompletionPercentage,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"message": "Không còn phiên để kết thúc"})
			return
		}
		handleServiceError(c, err)
		return
	}

	if progress := applyCompanionProgress(c, userID, session, req.Position, req.CompletionPercentage, req.WatchTimeDelta); progress == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attention_score": session.AttentionScore,
		"cheating_score":  session.CheatingScore,
		"is_suspicious":   session.IsSuspicious,
	})
}

// applyCompanionProgress cập nhật ledger kèm theo heartbeat/end. Nội dung đã
// hoàn thành bị đóng băng: update bị guard chặn thì giữ nguyên bản ghi chứ
// không fail cả request tracking.
func applyCompanionProgress(c *gin.Context, userID uuid.UUID, session *models.LearningSession, position int, pct float64, watchDelta int) *models.ContentProgress {
	progress, err := Progress.Update(c.Request.Context(), userID, session.ContentID, position, pct, watchDelta)
	if err == nil {
		return progress
	}
	if errors.Is(err, services.ErrInvalidState) {
		frozen, ferr := Progress.GetOrCreate(c.Request.Context(), userID, session.ContentID)
		if ferr != nil {
			handleServiceError(c, ferr)
			return nil
		}
		return frozen
	}
	handleServiceError(c, err)
	return nil
}
