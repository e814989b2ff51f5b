package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// CourseImageRepository handles course image rows
type CourseImageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseImageRepository creates a new CourseImageRepository
func NewCourseImageRepository(db *pgxpool.Pool) *CourseImageRepository {
	return &CourseImageRepository{db: db, sb: statementBuilder()}
}

// ListByCourseIDs loads the images of several courses in one query, grouped by course ID
func (r *CourseImageRepository) ListByCourseIDs(ctx context.Context, courseIDs []int64) (map[int64][]*models.CourseImage, error) {
	return r.listByCourseIDs(ctx, r.db, courseIDs)
}

func (r *CourseImageRepository) listByCourseIDs(ctx context.Context, q querier, courseIDs []int64) (map[int64][]*models.CourseImage, error) {
	grouped := make(map[int64][]*models.CourseImage, len(courseIDs))
	if len(courseIDs) == 0 {
		return grouped, nil
	}

	sql, args, err := r.sb.Select("id", "course_id", "path", "created_at").
		From("course_images").
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("course_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list course images query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying course images")
		return nil, fmt.Errorf("error querying course images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		img := &models.CourseImage{}
		if err := rows.Scan(&img.ID, &img.CourseID, &img.Path, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course image row: %w", err)
		}
		grouped[img.CourseID] = append(grouped[img.CourseID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course image rows: %w", err)
	}
	return grouped, nil
}

func (r *CourseImageRepository) insert(ctx context.Context, q querier, courseID int64, path string) (*models.CourseImage, error) {
	sql, args, err := r.sb.Insert("course_images").
		Columns("course_id", "path").
		Values(courseID, path).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create course image query: %w", err)
	}

	img := &models.CourseImage{CourseID: courseID, Path: path}
	if err := q.QueryRow(ctx, sql, args...).Scan(&img.ID, &img.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing create course image query")
		return nil, fmt.Errorf("error creating course image: %w", err)
	}
	return img, nil
}

// deleteOfCourse removes the listed images of one course, or all of them when imageIDs is nil.
// Images of other courses are never touched. Returns the removed rows.
func (r *CourseImageRepository) deleteOfCourse(ctx context.Context, q querier, courseID int64, imageIDs []int64) ([]*models.CourseImage, error) {
	where := squirrel.And{squirrel.Eq{"course_id": courseID}}
	if imageIDs != nil {
		if len(imageIDs) == 0 {
			return nil, nil
		}
		where = append(where, squirrel.Eq{"id": imageIDs})
	}

	sql, args, err := r.sb.Delete("course_images").
		Where(where).
		Suffix("RETURNING id, course_id, path, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete course images query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error deleting course images")
		return nil, fmt.Errorf("error deleting course images: %w", err)
	}
	defer rows.Close()

	var removed []*models.CourseImage
	for rows.Next() {
		img := &models.CourseImage{}
		if err := rows.Scan(&img.ID, &img.CourseID, &img.Path, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning removed course image: %w", err)
		}
		removed = append(removed, img)
	}
	return removed, rows.Err()
}
