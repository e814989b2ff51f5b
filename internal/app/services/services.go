package services

import (
	"github.com/oneday/onedayclass/internal/app/auth"
	"github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/filestorage"
)

// Services holds every feature service the controllers depend on
type Services struct {
	Auth        *AuthService
	Question    *QuestionService
	Answer      *AnswerService
	Reservation *ReservationService
	Course      *CourseService
}

// Repos groups the repository interfaces the services need
type Repos struct {
	Users        repositories.IUserRepository
	Questions    repositories.IQuestionRepository
	Answers      repositories.IAnswerRepository
	Reservations repositories.IReservationRepository
	Courses      repositories.ICourseRepository
}

// NewServices wires the services over the given repositories and upload storage.
// allowedExtensions restricts uploaded image types.
func NewServices(repos Repos, storage filestorage.FileStorage, allowedExtensions []string) *Services {
	authz := auth.NewAuthorizationService(repos.Questions, repos.Answers, repos.Reservations, repos.Courses)
	return &Services{
		Auth:        NewAuthService(repos.Users, repos.Questions, repos.Reservations),
		Question:    NewQuestionService(repos.Questions, repos.Answers, authz, storage, allowedExtensions),
		Answer:      NewAnswerService(repos.Answers, repos.Questions, authz),
		Reservation: NewReservationService(repos.Reservations, authz),
		Course:      NewCourseService(repos.Courses, authz, storage, allowedExtensions),
	}
}
