package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/oneday/onedayclass/internal/app/auth"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/filestorage"
	"github.com/oneday/onedayclass/internal/pkg/logger"
	"github.com/oneday/onedayclass/internal/pkg/validation"
)

// CourseService handles courses, their images and the uploaded files behind them
type CourseService struct {
	courseRepo repositories.ICourseRepository
	authz      *auth.AuthorizationService
	storage    filestorage.FileStorage
	allowed    []string
}

// NewCourseService creates a new CourseService
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	authz *auth.AuthorizationService,
	storage filestorage.FileStorage,
	allowedExtensions []string,
) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		authz:      authz,
		storage:    storage,
		allowed:    allowedExtensions,
	}
}

func classIDConflict() error {
	return apperrors.NewConflictError(apperrors.ErrClassIDAlreadyExists, "That class ID already exists.")
}

// Workspace lists one tab: "completed" holds published courses, anything else the drafts
func (s *CourseService) Workspace(ctx context.Context, tab string) (*dto.Workspace, error) {
	tab = dto.NormalizeTab(tab)
	courses, err := s.courseRepo.ListByPublished(ctx, tab == dto.TabCompleted)
	if err != nil {
		return nil, err
	}
	return &dto.Workspace{Tab: tab, Courses: courses}, nil
}

// Create publishes a new course owned by userID. The primary image is required; at most
// MaxExtraImages extras are kept and the rest ignored. Every upload is validated before
// anything is written to disk.
func (s *CourseService) Create(ctx context.Context, userID int64, form dto.CourseCreateForm, primary *multipart.FileHeader, extras []*multipart.FileHeader) (*models.Course, error) {
	if err := validation.CheckRequiredImage(primary, s.allowed); err != nil {
		if errors.Is(err, apperrors.ErrFileRequired) {
			return nil, apperrors.NewCustomError(err, "A main image is required.").WithField("image")
		}
		return nil, fileTypeError("image", s.allowed)
	}

	kept := make([]*multipart.FileHeader, 0, models.MaxExtraImages)
	for _, fh := range extras {
		if len(kept) == models.MaxExtraImages {
			break
		}
		if validation.Present(fh) {
			kept = append(kept, fh)
		}
	}
	if err := validation.CheckImages(kept, s.allowed); err != nil {
		return nil, fileTypeError("images", s.allowed)
	}

	exists, err := s.courseRepo.ClassIDExists(ctx, form.ClassID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, classIDConflict()
	}

	paths, err := saveAll(s.storage, append([]*multipart.FileHeader{primary}, kept...), CourseUploadDir)
	if err != nil {
		return nil, err
	}

	owner := userID
	course := &models.Course{
		ClassID:         form.ClassID,
		Description:     form.Description,
		Price:           form.PriceValue(),
		DurationMinutes: form.DurationValue(),
		IsPublished:     true,
		UserID:          &owner,
	}
	if _, err := s.courseRepo.Create(ctx, course, paths); err != nil {
		discard(s.storage, paths)
		if errors.Is(err, apperrors.ErrClassIDAlreadyExists) {
			return nil, classIDConflict()
		}
		return nil, err
	}

	logger.Info().Int64("courseID", course.ID).Str("classid", course.ClassID).Int("images", len(paths)).Msg("Course created")
	return course, nil
}

// GetForManage returns a course with its images if userID created it
func (s *CourseService) GetForManage(ctx context.Context, id, userID int64) (*models.Course, error) {
	return s.authz.OwnedCourse(ctx, id, userID)
}

// Update applies an edit submission. Blank, malformed or out-of-range fields keep the stored value,
// listed images of this course are removed and new uploads appended. Files of removed
// images are deleted after the database change is committed.
func (s *CourseService) Update(ctx context.Context, id, userID int64, form dto.CourseEditForm, newImages []*multipart.FileHeader) (*models.Course, error) {
	course, err := s.authz.OwnedCourse(ctx, id, userID)
	if err != nil {
		return course, err
	}
	if err := validation.CheckImages(newImages, s.allowed); err != nil {
		return course, fileTypeError("images", s.allowed)
	}

	if dto.ValidClassID(form.ClassID) {
		course.ClassID = form.ClassID
	}
	if form.Description != "" {
		course.Description = form.Description
	}
	if price, ok := dto.ParseAmount(form.Price); ok {
		course.Price = price
	}
	if d, ok := dto.ParseAmount(form.DurationMinutes); ok && d >= models.MinDurationMinutes {
		course.DurationMinutes = d
	}

	paths, err := saveAll(s.storage, newImages, CourseUploadDir)
	if err != nil {
		return course, err
	}

	removed, err := s.courseRepo.Update(ctx, course, form.RemoveIDs(), paths)
	if err != nil {
		discard(s.storage, paths)
		if errors.Is(err, apperrors.ErrClassIDAlreadyExists) {
			return course, classIDConflict()
		}
		return course, err
	}

	stale := make([]string, 0, len(removed))
	for _, img := range removed {
		stale = append(stale, img.Path)
	}
	discard(s.storage, stale)

	logger.Info().Int64("courseID", id).Int("removed", len(removed)).Int("added", len(paths)).Msg("Course updated")
	return s.courseRepo.GetByID(ctx, id)
}

// Delete removes an owned course, its image rows and then their files
func (s *CourseService) Delete(ctx context.Context, id, userID int64) error {
	course, err := s.authz.OwnedCourse(ctx, id, userID)
	if err != nil {
		return err
	}

	removed, err := s.courseRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	stale := make([]string, 0, len(removed)+1)
	seen := map[string]bool{}
	for _, img := range removed {
		stale = append(stale, img.Path)
		seen[img.Path] = true
	}
	if course.ImagePath != nil && !seen[*course.ImagePath] {
		stale = append(stale, *course.ImagePath)
	}
	discard(s.storage, stale)

	logger.Info().Int64("courseID", id).Int64("userID", userID).Msg("Course deleted")
	return nil
}

// ResolveUpload maps a requested upload path to the file on disk
func (s *CourseService) ResolveUpload(requested string) (string, error) {
	p, err := s.storage.Resolve(requested)
	if err != nil {
		if errors.Is(err, filestorage.ErrFileNotFound) {
			return "", apperrors.NewResourceNotFoundError("file not found")
		}
		return "", err
	}
	return p, nil
}
