// Package collect fans course analytics requests out against the API and
// hands the decoded rows to a snapshot store.
package collect

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"

	"github.com/open-insights/course-analytics/analytics"
)

// EnrollmentCount is one decoded enrollment row. Demographic and Category are
// empty for across-all counts.
type EnrollmentCount struct {
	Course      string
	Date        string
	Demographic analytics.Demographic
	Category    string
	Count       int
}

// ActivityCount is one decoded activity row.
type ActivityCount struct {
	Course        string
	IntervalStart string
	IntervalEnd   string
	ActivityType  analytics.ActivityType
	Count         int
}

// Video is one decoded tracked-video row.
type Video struct {
	Course          string
	EncodedModuleID string
	PipelineVideoID string
	Duration        int
	StartViews      int
	EndViews        int
}

// SnapshotStore defines the interface for storing collected analytics.
type SnapshotStore interface {
	SaveEnrollment(ctx context.Context, e EnrollmentCount) error
	SaveActivity(ctx context.Context, a ActivityCount) error
	SaveVideo(ctx context.Context, v Video) error
	SaveCourseTombstone(ctx context.Context, courseID string) error
}

// Collector coordinates fetching and storing analytics for courses.
type Collector struct {
	client         *analytics.Client
	store          SnapshotStore
	demographics   []analytics.Demographic
	maxConcurrency int
}

// NewCollector creates a new collector. demographics selects the enrollment
// breakdowns fetched in addition to the across-all counts.
func NewCollector(client *analytics.Client, store SnapshotStore, demographics []analytics.Demographic, maxConcurrency int) *Collector {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Collector{
		client:         client,
		store:          store,
		demographics:   demographics,
		maxConcurrency: maxConcurrency,
	}
}

// Collect fetches the full request set for one course (across-all enrollment,
// per-demographic enrollment, every activity type, tracked videos) for the
// given date range, in parallel with controlled concurrency, and stores the
// results. Empty dates fall back to the API's most-recent-data behaviour.
//
// A course the API answers with 404 is recorded as a tombstone instead of
// failing the run.
func (c *Collector) Collect(ctx context.Context, courseID, startDate, endDate string) error {
	course := c.client.Course(courseID)

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, c.maxConcurrency)

	run := func(task func(context.Context) error) {
		g.Go(func() error {
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore

			return task(gctx)
		})
	}

	run(func(ctx context.Context) error {
		return c.collectEnrollment(ctx, course, "", startDate, endDate)
	})
	for _, demographic := range c.demographics {
		demographic := demographic // per-iteration copy for pre-1.22 loop semantics
		run(func(ctx context.Context) error {
			return c.collectEnrollment(ctx, course, demographic, startDate, endDate)
		})
	}
	for _, activityType := range analytics.ActivityTypes() {
		activityType := activityType // per-iteration copy for pre-1.22 loop semantics
		run(func(ctx context.Context) error {
			return c.collectActivity(ctx, course, activityType, startDate, endDate)
		})
	}
	run(func(ctx context.Context) error {
		return c.collectVideos(ctx, course, startDate, endDate)
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			return c.store.SaveCourseTombstone(ctx, courseID)
		}
		return fmt.Errorf("collect course %s: %w", courseID, err)
	}

	return nil
}

type enrollmentRow struct {
	CourseID string `mapstructure:"course_id"`
	Date     string `mapstructure:"date"`
	Count    int    `mapstructure:"count"`
}

func (c *Collector) collectEnrollment(ctx context.Context, course *analytics.Course, demographic analytics.Demographic, startDate, endDate string) error {
	doc, err := course.Enrollment(ctx, demographic, analytics.WithDateRange(startDate, endDate))
	if err != nil {
		return fmt.Errorf("get enrollment: %w", err)
	}

	items, err := documentRows(doc)
	if err != nil {
		return fmt.Errorf("enrollment response: %w", err)
	}

	for _, item := range items {
		var row enrollmentRow
		if err := decodeRow(item, &row); err != nil {
			return fmt.Errorf("decode enrollment row: %w", err)
		}

		category := ""
		if demographic != "" {
			// Breakdown rows carry the category under a field named
			// after the demographic, e.g. {"gender": "m", "count": 10}.
			if m, ok := item.(map[string]any); ok {
				if v, present := m[demographic.String()]; present && v != nil {
					category = fmt.Sprintf("%v", v)
				}
			}
		}

		err := c.store.SaveEnrollment(ctx, EnrollmentCount{
			Course:      course.CourseID,
			Date:        row.Date,
			Demographic: demographic,
			Category:    category,
			Count:       row.Count,
		})
		if err != nil {
			return fmt.Errorf("save enrollment: %w", err)
		}
	}

	return nil
}

type activityRow struct {
	CourseID      string `mapstructure:"course_id"`
	IntervalStart string `mapstructure:"interval_start"`
	IntervalEnd   string `mapstructure:"interval_end"`
	ActivityType  string `mapstructure:"activity_type"`
	Count         int    `mapstructure:"count"`
}

func (c *Collector) collectActivity(ctx context.Context, course *analytics.Course, activityType analytics.ActivityType, startDate, endDate string) error {
	doc, err := course.Activity(ctx, activityType, analytics.WithDateRange(startDate, endDate))
	if err != nil {
		return fmt.Errorf("get activity: %w", err)
	}

	items, err := documentRows(doc)
	if err != nil {
		return fmt.Errorf("activity response: %w", err)
	}

	for _, item := range items {
		var row activityRow
		if err := decodeRow(item, &row); err != nil {
			return fmt.Errorf("decode activity row: %w", err)
		}

		err := c.store.SaveActivity(ctx, ActivityCount{
			Course:        course.CourseID,
			IntervalStart: row.IntervalStart,
			IntervalEnd:   row.IntervalEnd,
			ActivityType:  activityType,
			Count:         row.Count,
		})
		if err != nil {
			return fmt.Errorf("save activity: %w", err)
		}
	}

	return nil
}

type videoRow struct {
	PipelineVideoID string `mapstructure:"pipeline_video_id"`
	EncodedModuleID string `mapstructure:"encoded_module_id"`
	Duration        int    `mapstructure:"duration"`
	StartViews      int    `mapstructure:"start_views"`
	EndViews        int    `mapstructure:"end_views"`
}

func (c *Collector) collectVideos(ctx context.Context, course *analytics.Course, startDate, endDate string) error {
	doc, err := course.Videos(ctx, analytics.WithDateRange(startDate, endDate))
	if err != nil {
		return fmt.Errorf("get videos: %w", err)
	}

	items, err := documentRows(doc)
	if err != nil {
		return fmt.Errorf("videos response: %w", err)
	}

	for _, item := range items {
		var row videoRow
		if err := decodeRow(item, &row); err != nil {
			return fmt.Errorf("decode video row: %w", err)
		}

		err := c.store.SaveVideo(ctx, Video{
			Course:          course.CourseID,
			EncodedModuleID: row.EncodedModuleID,
			PipelineVideoID: row.PipelineVideoID,
			Duration:        row.Duration,
			StartViews:      row.StartViews,
			EndViews:        row.EndViews,
		})
		if err != nil {
			return fmt.Errorf("save video: %w", err)
		}
	}

	return nil
}

// documentRows normalizes a decoded JSON document into a list of rows: the
// API returns a list for ranged queries and a single object for
// most-recent-data queries.
func documentRows(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		return []any{v}, nil
	default:
		return nil, fmt.Errorf("unexpected response shape %T", doc)
	}
}

// decodeRow converts one dynamic JSON row into a typed struct. Weak typing
// covers JSON numbers arriving as float64 for integer fields.
func decodeRow(item any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	return dec.Decode(item)
}
