package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/oneday/onedayclass/internal/app/models"
	appRepos "github.com/oneday/onedayclass/internal/app/repositories"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
)

// DemoCourses are unpublished classes listed on the workspace "create" tab of a fresh install.
// They have no owner, so nobody can manage them until an operator publishes them in the database.
var DemoCourses = []appModels.Course{
	{ClassID: "pottery-basics", Description: "Throw your first bowl on the wheel.", Price: 45000, DurationMinutes: 120},
	{ClassID: "watercolor-101", Description: "Loose landscapes with three colors.", Price: 30000, DurationMinutes: 90},
	{ClassID: "sourdough", Description: "Starter care, shaping and baking.", Price: 38000, DurationMinutes: 180},
}

// CreateDefaultData creates the demo draft courses that don't exist yet.
func CreateDefaultData(ctx context.Context, courseRepo appRepos.ICourseRepository, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (demo courses)...")
	var finalErr error
	created := 0

	for _, demo := range DemoCourses {
		exists, err := courseRepo.ClassIDExists(ctx, demo.ClassID)
		if err != nil {
			lgr.Error().Err(err).Str("classid", demo.ClassID).Msg("Error checking demo course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			continue
		}

		course := demo
		course.IsPublished = false
		if course.DurationMinutes == 0 {
			course.DurationMinutes = appModels.DefaultDurationMinutes
		}
		if _, err := courseRepo.Create(ctx, &course, nil); err != nil {
			if errors.Is(err, apperrors.ErrClassIDAlreadyExists) {
				continue
			}
			lgr.Error().Err(err).Str("classid", demo.ClassID).Msg("Error creating demo course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
	}

	lgr.Info().Int("created", created).Msg("Default data check complete")
	return finalErr
}
