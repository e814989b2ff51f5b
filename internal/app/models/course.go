package models

import (
	"math"
	"time"
)

// Course is a one-day class offering.
type Course struct {
	ID              int64     `json:"id" db:"id"`
	ClassID         string    `json:"classid" db:"classid"`
	Description     string    `json:"description" db:"description"`
	Price           int       `json:"price" db:"price"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	IsPublished     bool      `json:"isPublished" db:"is_published"`
	ImagePath       *string   `json:"imagePath,omitempty" db:"image_path"`
	UserID          *int64    `json:"userId,omitempty" db:"user_id"` // creator, NULL for legacy rows
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`

	Images []*CourseImage `json:"images,omitempty"`
}

// OwnedBy reports whether userID created the course.
func (c *Course) OwnedBy(userID int64) bool {
	return c.UserID != nil && *c.UserID == userID
}

// CourseImage is one stored picture of a course.
type CourseImage struct {
	ID        int64     `json:"id" db:"id"`
	CourseID  int64     `json:"courseId" db:"course_id"`
	Path      string    `json:"path" db:"path"` // relative to the upload root
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

const (
	DefaultDurationMinutes = 60
	MinDurationMinutes     = 5
	// MaxExtraImages caps the supplementary images accepted on create.
	MaxExtraImages = 4

	MinClassIDLength = 3
	MaxClassIDLength = 50
	// MaxAmount is the largest price or duration the INTEGER columns hold.
	MaxAmount = math.MaxInt32
)
