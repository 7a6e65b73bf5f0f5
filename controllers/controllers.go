package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/config"
	"github.com/khanhvo/lms-tracking-backend/logger"
	"github.com/khanhvo/lms-tracking-backend/services"
)

// Service instances dùng chung cho các controller, khởi tạo một lần trong main
var (
	Sessions   *services.SessionService
	Progress   *services.ProgressService
	Unlocks    *services.UnlockService
	Aggregates *services.AggregateService
)

func Init(db *gorm.DB, cfg config.TrackingConfig, log *logger.Logger) {
	Sessions = services.NewSessionService(db, cfg, log)
	Progress = services.NewProgressService(db, cfg, log)
	Unlocks = services.NewUnlockService(db)
	Aggregates = services.NewAggregateService(db)
}

// currentUserID lấy user_id đã được AuthMiddleware gắn vào context
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return uuid.Nil, false
	}
	return userID, true
}

// mustDB lấy DB instance do DBMiddleware gắn vào context
func mustDB(c *gin.Context) *gorm.DB {
	return c.MustGet("db").(*gorm.DB)
}

// parseUUIDField parse một field uuid trong body, lỗi thì trả 400 luôn
func parseUUIDField(c *gin.Context, name, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, err
	}
	return id, nil
}

// parseIDParam parse một path param dạng uuid
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError map lỗi của engine sang HTTP status, không trả lỗi
// storage thô ra ngoài
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn chưa ghi danh khóa học này"})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "Thao tác không hợp lệ với trạng thái hiện tại"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy bản ghi"})
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Đã có lỗi xảy ra"})
	}
}
