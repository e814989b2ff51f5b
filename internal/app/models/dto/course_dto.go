package dto

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/pkg/validation"
)

// CourseCreateForm holds the text fields of /course/create; images are file parts.
type CourseCreateForm struct {
	ClassID         string `form:"classid" binding:"required,notblank,min=3,max=50"`
	Description     string `form:"description" binding:"required,notblank,min=5"`
	Price           string `form:"price" binding:"required"`
	DurationMinutes string `form:"duration_minutes"`
}

func (f *CourseCreateForm) Normalize() {
	f.ClassID = strings.TrimSpace(f.ClassID)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = strings.TrimSpace(f.Price)
	f.DurationMinutes = strings.TrimSpace(f.DurationMinutes)
}

// Check applies the numeric-range rules that tags cannot express on string fields.
func (f *CourseCreateForm) Check() FieldErrors {
	errs := FieldErrors{}
	if _, ok := ParseAmount(f.Price); !ok {
		if validation.DigitsPattern.MatchString(f.Price) {
			errs.Add("price", "Price must be at most "+maxAmountText+".")
		} else {
			errs.Add("price", "Enter a price of 0 or more.")
		}
	}
	if f.DurationMinutes != "" {
		d, ok := ParseAmount(f.DurationMinutes)
		switch {
		case !ok && validation.DigitsPattern.MatchString(f.DurationMinutes):
			errs.Add("duration_minutes", "Duration must be at most "+maxAmountText+" minutes.")
		case !ok || d < models.MinDurationMinutes:
			errs.Add("duration_minutes", "Duration must be at least "+strconv.Itoa(models.MinDurationMinutes)+" minutes.")
		}
	}
	return errs
}

// PriceValue returns the parsed price; call after Check.
func (f *CourseCreateForm) PriceValue() int {
	p, _ := ParseAmount(f.Price)
	return p
}

// DurationValue returns the parsed duration or the default when left blank.
func (f *CourseCreateForm) DurationValue() int {
	if d, ok := ParseAmount(f.DurationMinutes); ok {
		return d
	}
	return models.DefaultDurationMinutes
}

// CourseEditForm is the loosely-validated edit submission: blank or malformed
// fields keep the stored value.
type CourseEditForm struct {
	ClassID         string   `form:"classid"`
	Description     string   `form:"description"`
	Price           string   `form:"price"`
	DurationMinutes string   `form:"duration_minutes"`
	RemoveImageIDs  []string `form:"remove_image_id"`
}

func (f *CourseEditForm) Normalize() {
	f.ClassID = strings.TrimSpace(f.ClassID)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = strings.TrimSpace(f.Price)
	f.DurationMinutes = strings.TrimSpace(f.DurationMinutes)
}

// RemoveIDs parses the ids of images to drop, skipping garbage.
func (f *CourseEditForm) RemoveIDs() []int64 {
	ids := make([]int64, 0, len(f.RemoveImageIDs))
	for _, s := range f.RemoveImageIDs {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

var maxAmountText = strconv.Itoa(models.MaxAmount)

// ParseAmount parses an unsigned integer that may contain thousands separators.
// Values above models.MaxAmount are refused.
func ParseAmount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !validation.DigitsPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// ValidClassID reports whether an edited classid fits the create-form length rule.
func ValidClassID(classID string) bool {
	n := utf8.RuneCountInString(classID)
	return n >= models.MinClassIDLength && n <= models.MaxClassIDLength
}
