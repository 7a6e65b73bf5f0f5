package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUnlockStatus trả trạng thái mở khóa/hoàn thành của từng nội dung trong khóa
// GET /api/learning/courses/:course_id/unlock-status
func GetUnlockStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "course_id")
	if !ok {
		return
	}

	statuses, err := Unlocks.ResolveCourse(c.Request.Context(), userID, courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": statuses})
}

// GetCourseProgress trả phần trăm hoàn thành của khóa (rollup từ ledger)
// GET /api/learning/courses/:course_id/progress
func GetCourseProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "course_id")
	if !ok {
		return
	}

	pct, err := Aggregates.CourseProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"percentage": pct})
}

// GetModuleProgress: rollup cùng quy tắc nhưng scope theo module
// GET /api/learning/modules/:module_id/progress
func GetModuleProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "module_id")
	if !ok {
		return
	}

	pct, err := Aggregates.ModuleProgress(c.Request.Context(), userID, moduleID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"percentage": pct})
}
