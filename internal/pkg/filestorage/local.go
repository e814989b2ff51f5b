package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/oneday/onedayclass/internal/pkg/logger"
)

// ErrFileNotFound is returned by Resolve when the target does not exist.
var ErrFileNotFound = errors.New("file not found")

const (
	// rootPrefix is the folder name clients sometimes prepend to stored paths.
	rootPrefix = "uploads/"

	// MaxStoredPathLength bounds the relative path returned by SaveFileWithPath,
	// the width of the image path columns.
	MaxStoredPathLength = 200
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage rooted at basePath, creating it if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory %s: %w", basePath, err)
	}
	if err := os.MkdirAll(abs, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", abs).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", abs, err)
	}
	logger.Info().Str("path", abs).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: abs}, nil
}

// BasePath returns the absolute upload root.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SecureFilename strips directory components and anything outside
// [A-Za-z0-9_.-] from a client-supplied filename.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	return name
}

// uniqueName prefixes the sanitized name with a random token, shortening the
// name so the result is at most max bytes.
func uniqueName(original string, max int) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	safe := SecureFilename(original)
	if safe == "" {
		safe = "upload"
	}
	safe = truncateName(safe, max-len(token)-1)
	if safe == "" {
		return token
	}
	return token + "_" + safe
}

// truncateName cuts the stem of a sanitized name down to max bytes, keeping the
// extension when it fits.
func truncateName(name string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(name) <= max {
		return name
	}
	ext := path.Ext(name)
	if len(ext) >= max {
		return name[:max]
	}
	return strings.TrimSuffix(name, ext)[:max-len(ext)] + ext
}

// SaveFileWithPath saves a file to a subdirectory of the upload root.
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	subPath = strings.Trim(path.Clean("/"+strings.ReplaceAll(subPath, "\\", "/")), "/")

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	budget := MaxStoredPathLength
	if subPath != "" {
		budget -= len(subPath) + 1
	}
	name := uniqueName(fileHeader.Filename, budget)
	dstPath := filepath.Join(fullDirPath, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := name
	if subPath != "" {
		rel = subPath + "/" + name
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", rel).Msg("File saved successfully")
	return rel, nil
}

// cleanRelative normalizes separators, drops an accidental "uploads/" prefix
// and refuses anything that would escape the root.
func cleanRelative(requested string) (string, bool) {
	cleaned := strings.ReplaceAll(requested, "\\", "/")
	cleaned = strings.TrimLeft(cleaned, "/")
	cleaned = strings.TrimPrefix(cleaned, rootPrefix)
	cleaned = path.Clean("/" + cleaned)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	return cleaned, true
}

// Resolve returns the absolute path of an existing regular file under the root.
func (ls *LocalStorage) Resolve(requested string) (string, error) {
	rel, ok := cleanRelative(requested)
	if !ok {
		return "", ErrFileNotFound
	}
	full := filepath.Join(ls.basePath, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		logger.Debug().Str("requested", requested).Str("cleaned", rel).Msg("Upload not found")
		return "", ErrFileNotFound
	}
	return full, nil
}

// DeleteFile removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(relPath string) error {
	if relPath == "" {
		return nil
	}
	rel, ok := cleanRelative(relPath)
	if !ok {
		return fmt.Errorf("invalid file path: %s", relPath)
	}
	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(rel))

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}
