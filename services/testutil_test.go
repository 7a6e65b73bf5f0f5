package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/khanhvo/lms-tracking-backend/config"
	"github.com/khanhvo/lms-tracking-backend/logger"
	"github.com/khanhvo/lms-tracking-backend/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Mỗi test một DB in-memory riêng; cache=shared để các connection trong
	// pool nhìn thấy cùng một DB
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseModule{},
		&models.ContentItem{},
		&models.Enrollment{},
		&models.ModuleQuiz{},
		&models.QuizAttempt{},
		&models.LearningSession{},
		&models.ContentProgress{},
	))
	return db
}

func testConfig() config.TrackingConfig {
	return config.DefaultTrackingConfig()
}

type fixture struct {
	db     *gorm.DB
	user   models.User
	course models.Course
	module models.CourseModule
	video  models.ContentItem
}

func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{db: db}

	f.user = models.User{ID: uuid.New(), FullName: "Sinh viên A", Email: "sv.a@example.com", Role: models.RoleUser}
	require.NoError(t, db.Create(&f.user).Error)

	f.course = models.Course{
		ID: uuid.New(), Title: "Nhập môn lập trình", Slug: "nhap-mon-lap-trinh",
		Kind: models.CourseRegular, Status: true, CreatedBy: f.user.ID,
	}
	require.NoError(t, db.Create(&f.course).Error)

	f.module = seedModule(t, db, f.course.ID, 1, false)
	f.video = seedContent(t, db, f.module, 1, models.ContentVideo, 600, true)

	seedEnrollment(t, db, f.user.ID, f.course.ID)
	return f
}

func seedModule(t *testing.T, db *gorm.DB, courseID uuid.UUID, sortOrder int, hasQuiz bool) models.CourseModule {
	t.Helper()
	m := models.CourseModule{
		ID: uuid.New(), CourseID: courseID,
		Title: fmt.Sprintf("Module %d", sortOrder), SortOrder: sortOrder,
		HasRequiredQuiz: hasQuiz,
	}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func seedContent(t *testing.T, db *gorm.DB, module models.CourseModule, sortOrder int, ctype models.ContentType, duration int, required bool) models.ContentItem {
	t.Helper()
	c := models.ContentItem{
		ID: uuid.New(), ModuleID: module.ID, CourseID: module.CourseID,
		Title: fmt.Sprintf("Bài %d", sortOrder), Type: ctype,
		DurationSec: duration, SortOrder: sortOrder, IsRequired: required,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedEnrollment(t *testing.T, db *gorm.DB, userID, courseID uuid.UUID) {
	t.Helper()
	e := models.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID, Status: models.EnrollmentActive}
	require.NoError(t, db.Create(&e).Error)
}

func nopLogger() *logger.Logger {
	return logger.Nop()
}
