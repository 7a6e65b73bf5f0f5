package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/models"
	"github.com/khanhvo/lms-tracking-backend/utils"
)

// ==================== GIẢNG VIÊN QUẢN LÝ CATALOG ====================

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Kind        string `json:"kind" binding:"omitempty,oneof=regular online"`
}

// CreateCourse tạo khóa học mới
// POST /api/admin/courses
func CreateCourse(c *gin.Context) {
	db := mustDB(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := models.CourseKind(req.Kind)
	if req.Kind == "" {
		kind = models.CourseRegular
	}

	course, err := models.NewCourse(req.Title, slug.Make(req.Title), req.Description, kind, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := db.Create(course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã tạo khóa học", "data": course})
}

type CreateModuleRequest struct {
	Title           string `json:"title" binding:"required"`
	SortOrder       int    `json:"sort_order" binding:"required,min=1"`
	HasRequiredQuiz bool   `json:"has_required_quiz"`
	// Điểm đạt của quiz gate, chỉ dùng khi has_required_quiz = true
	QuizPassScore float64 `json:"quiz_pass_score"`
}

// CreateModule thêm module vào khóa học, kèm quiz gate nếu cần
// POST /api/admin/courses/:course_id/modules
func CreateModule(c *gin.Context) {
	db := mustDB(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "course_id")
	if !ok {
		return
	}

	var req CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query course"})
		return
	}

	module := models.CourseModule{
		ID:              uuid.New(),
		CourseID:        courseID,
		Title:           req.Title,
		SortOrder:       req.SortOrder,
		HasRequiredQuiz: req.HasRequiredQuiz,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&module).Error; err != nil {
			return err
		}
		if req.HasRequiredQuiz {
			passScore := req.QuizPassScore
			if passScore <= 0 {
				passScore = 5.0
			}
			quiz := models.ModuleQuiz{
				ID:        uuid.New(),
				ModuleID:  module.ID,
				Title:     req.Title + " - quiz",
				PassScore: passScore,
				CreatedBy: userID,
			}
			return tx.Create(&quiz).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create module"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã tạo module", "data": module})
}

// CreateContent đăng ký nội dung học, upload file kèm theo (multipart).
// Video phải khai duration_sec; PDF tự đếm số trang làm thời lượng danh nghĩa.
// POST /api/admin/modules/:module_id/contents
func CreateContent(c *gin.Context) {
	db := mustDB(c)

	moduleID, ok := parseIDParam(c, "module_id")
	if !ok {
		return
	}

	var module models.CourseModule
	if err := db.First(&module, "id = ?", moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy module"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query module"})
		return
	}

	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu title"})
		return
	}

	contentType := models.ContentType(c.PostForm("type"))
	if !contentType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Loại nội dung không hợp lệ (video | pdf | other)"})
		return
	}

	sortOrder, _ := strconv.Atoi(c.DefaultPostForm("sort_order", "1"))
	isRequired := c.DefaultPostForm("is_required", "true") != "false"
	durationSec, _ := strconv.Atoi(c.PostForm("duration_sec"))

	content := models.ContentItem{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		CourseID:    module.CourseID,
		Title:       title,
		Type:        contentType,
		SortOrder:   sortOrder,
		IsRequired:  isRequired,
		DurationSec: durationSec,
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		// PDF: số trang là thời lượng danh nghĩa
		if contentType == models.ContentPDF {
			pages, err := utils.CountPDFPages(fileHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "File PDF không đọc được"})
				return
			}
			content.DurationSec = pages
		}

		objectPath, err := utils.UploadContentFile(fileHeader, content.ID.String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload file thất bại"})
			return
		}
		content.ObjectPath = objectPath
	}

	if content.Type == models.ContentVideo && content.DurationSec <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Video phải có duration_sec"})
		return
	}

	if err := db.Create(&content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đã tạo nội dung", "data": content})
}

// GetCourseStructure trả cấu trúc khóa học đầy đủ (module + nội dung)
// GET /api/admin/courses/:course_id
func GetCourseStructure(c *gin.Context) {
	db := mustDB(c)

	courseID, ok := parseIDParam(c, "course_id")
	if !ok {
		return
	}

	var course models.Course
	if err := db.Preload("Modules", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order ASC")
	}).Preload("Modules.Contents", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sort_order ASC")
	}).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query course"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": course})
}

// GetCourses danh sách khóa học (có phân trang đơn giản)
// GET /api/admin/courses
func GetCourses(c *gin.Context) {
	db := mustDB(c)

	limit := 20
	if l := c.Query("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	var total int64
	db.Model(&models.Course{}).Count(&total)

	var courses []models.Course
	if err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   courses,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
