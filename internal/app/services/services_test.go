package services

import (
	"bytes"
	"io/fs"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/oneday/onedayclass/internal/app/repositories/memory"
	pkgauth "github.com/oneday/onedayclass/internal/pkg/auth"
	"github.com/oneday/onedayclass/internal/pkg/filestorage"
	"github.com/oneday/onedayclass/internal/pkg/validation"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	svc     *Services
	store   *memory.Store
	storage *filestorage.LocalStorage
	root    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	pkgauth.BcryptCost = bcrypt.MinCost

	root := t.TempDir()
	storage, err := filestorage.NewLocalStorage(root)
	require.NoError(t, err)

	store := memory.NewStore()
	svc := NewServices(Repos{
		Users:        store.Users,
		Questions:    store.Questions,
		Answers:      store.Answers,
		Reservations: store.Reservations,
		Courses:      store.Courses,
	}, storage, validation.DefaultImageExtensions)

	return &testEnv{svc: svc, store: store, storage: storage, root: root}
}

// uploads builds file headers for the given names as a browser would send them in one field.
func uploads(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, name := range names {
		part, err := w.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"]
}

func upload(t *testing.T, name string) *multipart.FileHeader {
	return uploads(t, name)[0]
}

// storedFiles lists every regular file below the upload root, relative to it.
func storedFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(root, p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}
