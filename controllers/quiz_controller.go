package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/models"
)

type SubmitQuizAttemptRequest struct {
	Score float64 `json:"score" binding:"min=0,max=10"`
}

// SubmitQuizAttempt ghi nhận một lượt làm quiz của module. Hệ chấm điểm quiz
// nằm ngoài - ở đây chỉ lưu score và cờ pass/fail làm gate mở module sau.
// POST /api/learning/modules/:module_id/quiz-attempts
func SubmitQuizAttempt(c *gin.Context) {
	db := mustDB(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "module_id")
	if !ok {
		return
	}

	var req SubmitQuizAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var quiz models.ModuleQuiz
	if err := db.First(&quiz, "module_id = ?", moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Module không có quiz"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query quiz"})
		return
	}

	attempt := models.QuizAttempt{
		ID:       uuid.New(),
		QuizID:   quiz.ID,
		UserID:   userID,
		Score:    req.Score,
		IsPassed: req.Score >= quiz.PassScore,
	}
	if err := db.Create(&attempt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create attempt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã ghi nhận lượt làm quiz",
		"data":    attempt,
	})
}
