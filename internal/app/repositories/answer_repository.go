package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// IAnswerRepository defines the answer data access operations
type IAnswerRepository interface {
	ListByQuestion(ctx context.Context, questionID int64) ([]*models.Answer, error)
	GetByID(ctx context.Context, id int64) (*models.Answer, error)
	Create(ctx context.Context, answer *models.Answer) (int64, error)
	Update(ctx context.Context, answer *models.Answer) error
	Delete(ctx context.Context, id int64) error
}

// AnswerRepository handles answer database operations
type AnswerRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAnswerRepository creates a new AnswerRepository
func NewAnswerRepository(db *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{db: db, sb: statementBuilder()}
}

func (r *AnswerRepository) selectAnswers() squirrel.SelectBuilder {
	return r.sb.Select("a.id", "a.content", "a.create_date", "a.modify_date", "a.question_id", "a.user_id", "u.username").
		From("answers a").
		Join("users u ON u.id = a.user_id")
}

func scanAnswer(row pgx.Row) (*models.Answer, error) {
	a := &models.Answer{}
	if err := row.Scan(&a.ID, &a.Content, &a.CreateDate, &a.ModifyDate, &a.QuestionID, &a.UserID, &a.Author); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByQuestion returns the answers of a question in the order they were written
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID int64) ([]*models.Answer, error) {
	sql, args, err := r.selectAnswers().
		Where(squirrel.Eq{"a.question_id": questionID}).
		OrderBy("a.create_date ASC", "a.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list answers query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("questionID", questionID).Msg("Error querying answers")
		return nil, fmt.Errorf("error querying answers: %w", err)
	}
	defer rows.Close()

	answers := []*models.Answer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning answer row: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answer rows: %w", err)
	}
	return answers, nil
}

// GetByID retrieves an answer by ID
func (r *AnswerRepository) GetByID(ctx context.Context, id int64) (*models.Answer, error) {
	sql, args, err := r.selectAnswers().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get answer query: %w", err)
	}

	a, err := scanAnswer(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnswerNotFound
		}
		logger.Error().Err(err).Int64("answerID", id).Msg("Error scanning answer row")
		return nil, fmt.Errorf("error getting answer by ID: %w", err)
	}
	return a, nil
}

// Create inserts an answer; CreateDate defaults to now when unset
func (r *AnswerRepository) Create(ctx context.Context, answer *models.Answer) (int64, error) {
	if answer.CreateDate.IsZero() {
		answer.CreateDate = time.Now()
	}

	sql, args, err := r.sb.Insert("answers").
		Columns("content", "create_date", "question_id", "user_id").
		Values(answer.Content, answer.CreateDate, answer.QuestionID, answer.UserID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create answer query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&answer.ID); err != nil {
		logger.Error().Err(err).Int64("questionID", answer.QuestionID).Msg("Error executing create answer query")
		return 0, fmt.Errorf("error creating answer: %w", err)
	}
	return answer.ID, nil
}

// Update writes the answer content and modify date
func (r *AnswerRepository) Update(ctx context.Context, answer *models.Answer) error {
	sql, args, err := r.sb.Update("answers").
		Set("content", answer.Content).
		Set("modify_date", answer.ModifyDate).
		Where(squirrel.Eq{"id": answer.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update answer query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("answerID", answer.ID).Msg("Error executing update answer query")
		return fmt.Errorf("error updating answer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAnswerNotFound
	}
	return nil
}

// Delete removes an answer
func (r *AnswerRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("answers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete answer query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("answerID", id).Msg("Error executing delete answer query")
		return fmt.Errorf("error deleting answer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAnswerNotFound
	}
	return nil
}
