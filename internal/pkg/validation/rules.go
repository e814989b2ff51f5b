package validation

import (
	"mime/multipart"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
)

// DefaultImageExtensions is the upload allow-list used when none is configured.
var DefaultImageExtensions = []string{"png", "jpg", "jpeg", "gif"}

// DigitsPattern matches an unsigned integer optionally written with thousands separators.
var DigitsPattern = regexp.MustCompile(`^[0-9][0-9,]*$`)

// Register installs the custom rules and form-tag field naming on a validator
// engine, typically gin's binding.Validator.Engine().
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// HasAllowedExtension checks filename against the allow-list.
func HasAllowedExtension(filename string, allowed []string) bool {
	ext := Extension(filename)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}

// Present reports whether an upload field actually carries a file.
func Present(fh *multipart.FileHeader) bool {
	return fh != nil && fh.Filename != ""
}

// CheckImage validates an optional upload. A missing file is fine.
func CheckImage(fh *multipart.FileHeader, allowed []string) error {
	if !Present(fh) {
		return nil
	}
	if !HasAllowedExtension(fh.Filename, allowed) {
		return apperrors.ErrFileNotAllowed
	}
	return nil
}

// CheckRequiredImage validates a mandatory upload.
func CheckRequiredImage(fh *multipart.FileHeader, allowed []string) error {
	if !Present(fh) {
		return apperrors.ErrFileRequired
	}
	return CheckImage(fh, allowed)
}

// CheckImages validates every present file in a multi-file field.
func CheckImages(files []*multipart.FileHeader, allowed []string) error {
	for _, fh := range files {
		if err := CheckImage(fh, allowed); err != nil {
			return err
		}
	}
	return nil
}
