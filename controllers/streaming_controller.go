package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khanhvo/lms-tracking-backend/services"
	"github.com/khanhvo/lms-tracking-backend/utils"
)

// URL ký có hạn 1 giờ, client phải xin lại khi hết hạn
const streamURLTTLSec = 3600

// GetStreamURL phát URL stream có thời hạn cho nội dung đã mở khóa.
// Gate truy cập đi qua Unlock Resolver - nội dung chưa mở thì không có URL.
// GET /api/learning/contents/:content_id/stream
func GetStreamURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contentID, ok := parseIDParam(c, "content_id")
	if !ok {
		return
	}

	unlocked, err := Unlocks.IsContentUnlocked(c.Request.Context(), userID, contentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !unlocked {
		handleServiceError(c, services.ErrAccessDenied)
		return
	}

	content, err := services.NewGormCatalog(mustDB(c)).GetContent(c.Request.Context(), contentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if content.ObjectPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Nội dung chưa có file"})
		return
	}

	url, err := utils.SignedContentURL(content.ObjectPath, streamURLTTLSec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không tạo được URL stream"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
