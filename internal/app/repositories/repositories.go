package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx so the same statements run in or out of a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	QuestionRepository    *QuestionRepository
	AnswerRepository      *AnswerRepository
	ReservationRepository *ReservationRepository
	CourseRepository      *CourseRepository
	CourseImageRepository *CourseImageRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	images := NewCourseImageRepository(db)
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		QuestionRepository:    NewQuestionRepository(db),
		AnswerRepository:      NewAnswerRepository(db),
		ReservationRepository: NewReservationRepository(db),
		CourseRepository:      NewCourseRepository(db, images),
		CourseImageRepository: images,
	}
}
