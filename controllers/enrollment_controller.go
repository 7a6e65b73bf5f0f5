package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/models"
)

// EnrollCourse ghi danh sinh viên vào khóa học (idempotent theo (user, course))
// POST /api/courses/:course_id/enroll
func EnrollCourse(c *gin.Context) {
	db := mustDB(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "course_id")
	if !ok {
		return
	}

	// Kiểm tra khóa học tồn tại và đang active
	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query course"})
		return
	}
	if !course.Status {
		c.JSON(http.StatusForbidden, gin.H{"error": "Khóa học đang đóng"})
		return
	}

	var enrollment models.Enrollment
	result := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		enrollment = models.Enrollment{
			ID:       uuid.New(),
			UserID:   userID,
			CourseID: courseID,
			Status:   models.EnrollmentActive,
		}
		if err := db.Create(&enrollment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create enrollment"})
			return
		}
	} else if result.Error == nil {
		// Ghi danh lại sau khi bị revoke -> kích hoạt lại
		if enrollment.Status == models.EnrollmentRevoked {
			enrollment.Status = models.EnrollmentActive
			if err := db.Save(&enrollment).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update enrollment"})
				return
			}
		}
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã ghi danh khóa học",
		"data":    enrollment,
	})
}
