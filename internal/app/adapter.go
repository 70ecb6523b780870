package app

import (
	"context"

	"github.com/open-insights/course-analytics/internal/collect"
	"github.com/open-insights/course-analytics/internal/engagement"
	"github.com/open-insights/course-analytics/internal/store"
)

// storeAdapter adapts collected analytics rows to store format.
type storeAdapter struct {
	st *store.Store
}

func (a *storeAdapter) SaveEnrollment(ctx context.Context, e collect.EnrollmentCount) error {
	return a.st.SaveEnrollment(ctx, store.Enrollment{
		Course:      e.Course,
		Date:        e.Date,
		Demographic: e.Demographic.String(),
		Category:    e.Category,
		Count:       e.Count,
	})
}

func (a *storeAdapter) SaveActivity(ctx context.Context, act collect.ActivityCount) error {
	return a.st.SaveActivity(ctx, store.Activity{
		Course:        act.Course,
		IntervalStart: act.IntervalStart,
		IntervalEnd:   act.IntervalEnd,
		ActivityType:  act.ActivityType.String(),
		Count:         act.Count,
	})
}

func (a *storeAdapter) SaveVideo(ctx context.Context, v collect.Video) error {
	return a.st.SaveVideo(ctx, store.Video{
		Course:          v.Course,
		EncodedModuleID: v.EncodedModuleID,
		PipelineVideoID: v.PipelineVideoID,
		Duration:        v.Duration,
		StartViews:      v.StartViews,
		EndViews:        v.EndViews,
		Completion:      engagement.CompletionRate(v.StartViews, v.EndViews),
	})
}

func (a *storeAdapter) SaveCourseTombstone(ctx context.Context, courseID string) error {
	return a.st.SaveCourseTombstone(ctx, courseID)
}
