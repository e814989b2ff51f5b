package services

import (
	"mime/multipart"
	"strings"

	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/filestorage"
	"github.com/oneday/onedayclass/internal/pkg/logger"
	"github.com/oneday/onedayclass/internal/pkg/validation"
)

// Upload sub-directories below the upload root
const (
	CourseUploadDir   = "courses"
	QuestionUploadDir = "questions"
)

func fileTypeError(field string, allowed []string) error {
	return apperrors.NewCustomError(apperrors.ErrFileNotAllowed,
		"Only image files are allowed ("+strings.Join(allowed, ", ")+").").WithField(field)
}

// checkUpload validates an optional single upload for field.
func checkUpload(field string, fh *multipart.FileHeader, allowed []string) error {
	if err := validation.CheckImage(fh, allowed); err != nil {
		return fileTypeError(field, allowed)
	}
	return nil
}

// saveAll stores every present file under subdir. On failure the files already
// written are removed again and nothing is returned.
func saveAll(storage filestorage.FileStorage, files []*multipart.FileHeader, subdir string) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		if !validation.Present(fh) {
			continue
		}
		p, err := storage.SaveFileWithPath(fh, subdir)
		if err != nil {
			discard(storage, paths)
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// discard deletes stored files best-effort.
func discard(storage filestorage.FileStorage, paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := storage.DeleteFile(p); err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to delete uploaded file")
		}
	}
}
