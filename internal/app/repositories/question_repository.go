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
	"github.com/oneday/onedayclass/internal/db"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/helpers"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// IQuestionRepository defines the question data access operations
type IQuestionRepository interface {
	List(ctx context.Context, page, pageSize int) ([]*models.Question, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Question, error)
	Create(ctx context.Context, question *models.Question) (int64, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id int64) error
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

// QuestionRepository handles question database operations
type QuestionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewQuestionRepository creates a new QuestionRepository
func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db, sb: statementBuilder()}
}

func (r *QuestionRepository) selectQuestions() squirrel.SelectBuilder {
	return r.sb.Select(
		"q.id", "q.subject", "q.content", "q.create_date", "q.modify_date", "q.image_path", "q.user_id",
		"u.username",
		"(SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count",
	).
		From("questions q").
		Join("users u ON u.id = q.user_id")
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	q := &models.Question{}
	err := row.Scan(&q.ID, &q.Subject, &q.Content, &q.CreateDate, &q.ModifyDate, &q.ImagePath, &q.UserID,
		&q.Author, &q.AnswerCount)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// List returns one page of questions, newest first, and the total count
func (r *QuestionRepository) List(ctx context.Context, page, pageSize int) ([]*models.Question, int64, error) {
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("questions").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count questions query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting questions")
		return nil, 0, fmt.Errorf("error counting questions: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	sql, args, err := r.selectQuestions().
		OrderBy("q.create_date DESC", "q.id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list questions SQL")
		return nil, 0, fmt.Errorf("failed to build list questions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list questions query")
		return nil, 0, fmt.Errorf("error querying questions: %w", err)
	}
	defer rows.Close()

	questions := []*models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning question row")
			return nil, 0, fmt.Errorf("error scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating question rows: %w", err)
	}

	return questions, total, nil
}

// GetByID retrieves a question with its author name
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	sql, args, err := r.selectQuestions().Where(squirrel.Eq{"q.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get question query: %w", err)
	}

	q, err := scanQuestion(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrQuestionNotFound
		}
		logger.Error().Err(err).Int64("questionID", id).Msg("Error scanning question row")
		return nil, fmt.Errorf("error getting question by ID: %w", err)
	}
	return q, nil
}

// Create inserts a question; CreateDate defaults to now when unset
func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) (int64, error) {
	if question.CreateDate.IsZero() {
		question.CreateDate = time.Now()
	}

	sql, args, err := r.sb.Insert("questions").
		Columns("subject", "content", "create_date", "image_path", "user_id").
		Values(question.Subject, question.Content, question.CreateDate, question.ImagePath, question.UserID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create question SQL")
		return 0, fmt.Errorf("failed to build create question query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&question.ID); err != nil {
		logger.Error().Err(err).Int64("userID", question.UserID).Msg("Error executing create question query")
		return 0, fmt.Errorf("error creating question: %w", err)
	}
	return question.ID, nil
}

// Update writes subject, content, image and modify date
func (r *QuestionRepository) Update(ctx context.Context, question *models.Question) error {
	sql, args, err := r.sb.Update("questions").
		SetMap(map[string]interface{}{
			"subject":     question.Subject,
			"content":     question.Content,
			"image_path":  question.ImagePath,
			"modify_date": question.ModifyDate,
		}).
		Where(squirrel.Eq{"id": question.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update question query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("questionID", question.ID).Msg("Error executing update question query")
		return fmt.Errorf("error updating question: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrQuestionNotFound
	}
	return nil
}

// Delete removes a question and its answers in one transaction
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		answersSQL, answersArgs, err := r.sb.Delete("answers").Where(squirrel.Eq{"question_id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete answers query: %w", err)
		}
		if _, err := tx.Exec(ctx, answersSQL, answersArgs...); err != nil {
			logger.Error().Err(err).Int64("questionID", id).Msg("Error deleting answers of question")
			return fmt.Errorf("error deleting answers: %w", err)
		}

		sql, args, err := r.sb.Delete("questions").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete question query: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("questionID", id).Msg("Error deleting question")
			return fmt.Errorf("error deleting question: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrQuestionNotFound
		}
		return nil
	})
}

// CountByUser counts the questions a user has written
func (r *QuestionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("questions").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count user questions query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting user questions: %w", err)
	}
	return count, nil
}
