package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/db"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/dberrors"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

const classIDConstraint = "courses_classid_key"

// ICourseRepository defines the course data access operations
type ICourseRepository interface {
	ListByPublished(ctx context.Context, published bool) ([]*models.Course, error)
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	ClassIDExists(ctx context.Context, classID string) (bool, error)
	Create(ctx context.Context, course *models.Course, imagePaths []string) (int64, error)
	Update(ctx context.Context, course *models.Course, removeImageIDs []int64, newImagePaths []string) ([]*models.CourseImage, error)
	Delete(ctx context.Context, id int64) ([]*models.CourseImage, error)
}

// CourseRepository handles course database operations
type CourseRepository struct {
	db     *pgxpool.Pool
	sb     squirrel.StatementBuilderType
	images *CourseImageRepository
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool, images *CourseImageRepository) *CourseRepository {
	return &CourseRepository{db: db, sb: statementBuilder(), images: images}
}

var courseColumns = []string{
	"id", "classid", "description", "price", "duration_minutes", "is_published", "image_path", "user_id", "created_at",
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(&c.ID, &c.ClassID, &c.Description, &c.Price, &c.DurationMinutes, &c.IsPublished,
		&c.ImagePath, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CourseRepository) attachImages(ctx context.Context, q querier, courses ...*models.Course) error {
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	grouped, err := r.images.listByCourseIDs(ctx, q, ids)
	if err != nil {
		return err
	}
	for _, c := range courses {
		c.Images = grouped[c.ID]
		if c.Images == nil {
			c.Images = []*models.CourseImage{}
		}
	}
	return nil
}

// ListByPublished returns the courses in one workspace tab, newest first, images loaded
func (r *CourseRepository) ListByPublished(ctx context.Context, published bool) ([]*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"is_published": published}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list courses SQL")
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Bool("published", published).Msg("Error querying courses")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	if err := r.attachImages(ctx, r.db, courses...); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) getByID(ctx context.Context, q querier, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	c, err := scanCourse(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	if err := r.attachImages(ctx, q, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a course with its images
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.getByID(ctx, r.db, id)
}

// ClassIDExists checks whether a classid is already used
func (r *CourseRepository) ClassIDExists(ctx context.Context, classID string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("courses").
		Where(squirrel.Eq{"classid": classID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build classid exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Str("classid", classID).Msg("Error checking classid")
		return false, fmt.Errorf("error checking classid: %w", err)
	}
	return exists, nil
}

// Create inserts a course together with its image rows. The first path, if any,
// becomes the course's representative image.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course, imagePaths []string) (int64, error) {
	if len(imagePaths) > 0 {
		primary := imagePaths[0]
		course.ImagePath = &primary
	}

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("courses").
			Columns("classid", "description", "price", "duration_minutes", "is_published", "image_path", "user_id").
			Values(course.ClassID, course.Description, course.Price, course.DurationMinutes, course.IsPublished,
				course.ImagePath, course.UserID).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create course query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, classIDConstraint) {
				return apperrors.ErrClassIDAlreadyExists
			}
			logger.Error().Err(err).Str("classid", course.ClassID).Msg("Error executing create course query")
			return fmt.Errorf("error creating course: %w", err)
		}

		course.Images = make([]*models.CourseImage, 0, len(imagePaths))
		for _, p := range imagePaths {
			img, err := r.images.insert(ctx, tx, course.ID, p)
			if err != nil {
				return err
			}
			course.Images = append(course.Images, img)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return course.ID, nil
}

// Update writes the editable course fields, removes the listed images of this course,
// appends new ones and repoints image_path when its image is gone. Returns the removed images.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, removeImageIDs []int64, newImagePaths []string) ([]*models.CourseImage, error) {
	var removed []*models.CourseImage

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("courses").
			SetMap(map[string]interface{}{
				"classid":          course.ClassID,
				"description":      course.Description,
				"price":            course.Price,
				"duration_minutes": course.DurationMinutes,
			}).
			Where(squirrel.Eq{"id": course.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update course query: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, classIDConstraint) {
				return apperrors.ErrClassIDAlreadyExists
			}
			logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
			return fmt.Errorf("error updating course: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrCourseNotFound
		}

		if len(removeImageIDs) > 0 {
			removed, err = r.images.deleteOfCourse(ctx, tx, course.ID, removeImageIDs)
			if err != nil {
				return err
			}
		}

		for _, p := range newImagePaths {
			if _, err := r.images.insert(ctx, tx, course.ID, p); err != nil {
				return err
			}
		}

		if needsNewCover(course.ImagePath, removed) {
			sql, args, err := r.sb.Update("courses").
				Set("image_path", squirrel.Expr("(SELECT path FROM course_images WHERE course_id = ? ORDER BY id LIMIT 1)", course.ID)).
				Where(squirrel.Eq{"id": course.ID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build course cover query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("error updating course cover: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// needsNewCover reports whether image_path is unset or points at a removed image.
func needsNewCover(current *string, removed []*models.CourseImage) bool {
	if current == nil {
		return true
	}
	for _, img := range removed {
		if img.Path == *current {
			return true
		}
	}
	return false
}

// Delete removes a course and its image rows in one transaction and returns the removed images
func (r *CourseRepository) Delete(ctx context.Context, id int64) ([]*models.CourseImage, error) {
	var removed []*models.CourseImage

	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		removed, err = r.images.deleteOfCourse(ctx, tx, id, nil)
		if err != nil {
			return err
		}

		sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete course query: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
			return fmt.Errorf("error deleting course: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrCourseNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
