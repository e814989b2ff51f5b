package filestorage

import (
	"mime/multipart"
)

// FileStorage defines the upload persistence operations used by the services.
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath and returns the path
	// relative to the upload root, e.g. "courses/<name>".
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored file given its relative path.
	DeleteFile(relPath string) error

	// Resolve maps a requested relative path to an absolute path inside the root.
	Resolve(requested string) (string, error)
}
