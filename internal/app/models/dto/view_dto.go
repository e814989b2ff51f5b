package dto

import "github.com/oneday/onedayclass/internal/app/models"

// Workspace tabs
const (
	TabCreate    = "create"
	TabCompleted = "completed"
)

// NormalizeTab maps anything but "completed" to the default tab.
func NormalizeTab(tab string) string {
	if tab == TabCompleted {
		return TabCompleted
	}
	return TabCreate
}

// QuestionPage is one page of the question list.
type QuestionPage struct {
	Questions  []*models.Question
	Pagination PaginationInfo
}

// Workspace is the tabbed course list.
type Workspace struct {
	Tab     string
	Courses []*models.Course
}

// MyPage summarizes the signed-in user's activity.
type MyPage struct {
	User          *models.User
	QuestionCount int64
	Reservations  []*models.Reservation
}
