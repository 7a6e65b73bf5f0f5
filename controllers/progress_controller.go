package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type UpdateProgressRequest struct {
	Position             int     `json:"position" binding:"min=0"`
	CompletionPercentage float64 `json:"completion_percentage" binding:"min=0,max=100"`
	WatchTimeDelta       int     `json:"watch_time_delta" binding:"min=0"`
}

// UpdateProgress cập nhật ledger tiến độ cho một nội dung ("mark complete"
// ngầm khi đạt ngưỡng tự hoàn thành)
// POST /api/learning/progress/:content_id
func UpdateProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contentID, ok := parseIDParam(c, "content_id")
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := Progress.Update(c.Request.Context(), userID, contentID,
		req.Position, req.CompletionPercentage, req.WatchTimeDelta)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_completed":          progress.IsCompleted,
		"completion_percentage": progress.CompletionPercentage,
	})
}

// MarkContentCompleted đánh dấu hoàn thành tường minh, idempotent
// POST /api/learning/progress/:content_id/complete
func MarkContentCompleted(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contentID, ok := parseIDParam(c, "content_id")
	if !ok {
		return
	}

	progress, err := Progress.MarkCompleted(c.Request.Context(), userID, contentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	coursePct, err := Aggregates.CourseProgress(c.Request.Context(), userID, progress.CourseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_completed":          progress.IsCompleted,
		"completion_percentage": progress.CompletionPercentage,
		"course_progress":       coursePct,
	})
}
