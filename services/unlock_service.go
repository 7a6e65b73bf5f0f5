package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/khanhvo/lms-tracking-backend/models"
)

// Trạng thái truy cập của một mục nội dung đối với user
type UnlockStatus struct {
	ContentID  uuid.UUID `json:"content_id"`
	ModuleID   uuid.UUID `json:"module_id"`
	Title      string    `json:"title"`
	SortOrder  int       `json:"sort_order"`
	IsRequired bool      `json:"is_required"`
	IsUnlocked bool      `json:"is_unlocked"`
	IsCompleted bool     `json:"is_completed"`
}

// UnlockService quyết định nội dung/module nào user được truy cập.
// Chỉ đọc ledger, không bao giờ ghi. Duyệt tuần tự theo sort_order -
// domain không có đồ thị tiên quyết phi tuyến.
type UnlockService struct {
	db         *gorm.DB
	catalog    ContentCatalog
	enrollments EnrollmentStore
	quizStatus QuizStatusProvider
}

func NewUnlockService(db *gorm.DB) *UnlockService {
	return &UnlockService{
		db:          db,
		catalog:     NewGormCatalog(db),
		enrollments: NewGormEnrollments(db),
		quizStatus:  NewGormQuizStatus(db),
	}
}

// NewUnlockServiceWith cho phép thay collaborator (quiz-status từ hệ ngoài...)
func NewUnlockServiceWith(db *gorm.DB, catalog ContentCatalog, enrollments EnrollmentStore, quizStatus QuizStatusProvider) *UnlockService {
	return &UnlockService{db: db, catalog: catalog, enrollments: enrollments, quizStatus: quizStatus}
}

// ResolveCourse trả về trạng thái unlock/complete của toàn bộ nội dung trong
// khóa, theo thứ tự module rồi nội dung.
//
// Quy tắc (đánh giá từ trên xuống):
//  1. Nội dung đầu tiên của module, và module đầu tiên của khóa, luôn mở.
//  2. Nội dung sau mở khi module của nó mở VÀ mọi nội dung bắt buộc đứng trước
//     trong cùng module đã hoàn thành.
//  3. Module sau mở khi user có ghi danh active VÀ mọi module bắt buộc đứng
//     trước đã hoàn thành hết nội dung bắt buộc VÀ quiz gate (nếu có) đã pass.
func (u *UnlockService) ResolveCourse(ctx context.Context, userID, courseID uuid.UUID) ([]UnlockStatus, error) {
	modules, err := u.catalog.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := u.enrollments.HasActiveEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	completed, err := u.completedContentIDs(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	var statuses []UnlockStatus
	// Module trước đó (tính cả gate) đều đã thông
	predecessorsClear := true

	for i, module := range modules {
		moduleUnlocked := false
		if i == 0 {
			moduleUnlocked = true
		} else {
			moduleUnlocked = enrolled && predecessorsClear
		}

		contents, err := u.catalog.ListContents(ctx, module.ID)
		if err != nil {
			return nil, err
		}

		moduleComplete := true
		// Nội dung bắt buộc đứng trước trong module đều đã hoàn thành
		priorRequiredDone := true

		for j, content := range contents {
			done := completed[content.ID]

			itemUnlocked := false
			if moduleUnlocked {
				if j == 0 {
					itemUnlocked = true
				} else {
					itemUnlocked = priorRequiredDone
				}
			}

			statuses = append(statuses, UnlockStatus{
				ContentID:   content.ID,
				ModuleID:    module.ID,
				Title:       content.Title,
				SortOrder:   content.SortOrder,
				IsRequired:  content.IsRequired,
				IsUnlocked:  itemUnlocked,
				IsCompleted: done,
			})

			if content.IsRequired && !done {
				priorRequiredDone = false
				moduleComplete = false
			}
		}

		if !moduleUnlocked || !moduleComplete {
			predecessorsClear = false
			continue
		}

		// Quiz gate của module: phải pass trước khi module sau mở
		if module.HasRequiredQuiz {
			passed, err := u.quizStatus.HasPassedQuiz(ctx, userID, module.ID)
			if err != nil {
				return nil, err
			}
			if !passed {
				predecessorsClear = false
			}
		}
	}

	return statuses, nil
}

// IsContentUnlocked kiểm tra một nội dung cụ thể (gate cho streaming resolver)
func (u *UnlockService) IsContentUnlocked(ctx context.Context, userID, contentID uuid.UUID) (bool, error) {
	content, err := u.catalog.GetContent(ctx, contentID)
	if err != nil {
		return false, err
	}
	statuses, err := u.ResolveCourse(ctx, userID, content.CourseID)
	if err != nil {
		return false, err
	}
	for _, st := range statuses {
		if st.ContentID == contentID {
			return st.IsUnlocked, nil
		}
	}
	return false, nil
}

func (u *UnlockService) completedContentIDs(ctx context.Context, userID, courseID uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []models.ContentProgress
	if err := u.db.WithContext(ctx).
		Select("content_id", "is_completed").
		Where("user_id = ? AND course_id = ? AND is_completed = ?", userID, courseID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	completed := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		completed[row.ContentID] = true
	}
	return completed, nil
}
