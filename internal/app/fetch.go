package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/open-insights/course-analytics/analytics"
	"github.com/open-insights/course-analytics/internal/collect"
	"github.com/open-insights/course-analytics/internal/config"
	"github.com/open-insights/course-analytics/internal/roster"
	"github.com/open-insights/course-analytics/internal/store"
)

// Fetch retrieves analytics data from the API for configured courses.
func Fetch(ctx context.Context, cfg *config.Config, st *store.Store) error {
	courses := cfg.Courses
	if cfg.RosterURL != "" {
		fetched, err := roster.NewFetcher(cfg.RosterURL).Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch roster: %w", err)
		}
		slog.Info("loaded course roster", "url", cfg.RosterURL, "count", len(fetched))
		courses = fetched
	}

	if len(courses) == 0 {
		slog.Warn("no courses configured, set ANALYTICS_COURSES or ANALYTICS_ROSTER_URL environment variable")
		return nil
	}

	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	slog.Info("starting analytics fetch",
		"run", runID,
		"courses", len(courses),
		"demographics", cfg.Demographics,
		"rateLimit", cfg.RateLimit,
		"maxConcurrency", cfg.MaxConcurrency)

	client := analytics.NewClient(cfg.APIBaseURL,
		analytics.WithAuthToken(cfg.AuthToken),
		analytics.WithRateLimit(cfg.RateLimit),
		analytics.WithTimeout(cfg.HTTPTimeout),
	)

	if !client.Status().Alive(ctx) {
		slog.Warn("analytics API is not responding, proceeding anyway", "baseURL", cfg.APIBaseURL)
	}

	collector := collect.NewCollector(client, &storeAdapter{st}, cfg.Demographics, cfg.MaxConcurrency)

	var lastErr error
	for _, courseID := range courses {
		if err := processCourse(ctx, courseID, st, collector, cfg); err != nil {
			slog.Error("failed to process course", "course", courseID, "error", err)
			lastErr = err
			continue
		}
	}

	retentionCutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
	if err := st.DeleteMetricsOlderThan(ctx, retentionCutoff); err != nil {
		return fmt.Errorf("delete old metrics: %w", err)
	}
	slog.Info("deleted old data", "cutoff", retentionCutoff)

	if err := st.RecordFetchRun(ctx, store.FetchRun{
		ID:          runID,
		StartedAt:   startedAt,
		FinishedAt:  time.Now().UTC(),
		CourseCount: len(courses),
	}); err != nil {
		return fmt.Errorf("record fetch run: %w", err)
	}

	if lastErr != nil {
		return fmt.Errorf("some courses failed to process: %w", lastErr)
	}

	slog.Info("completed analytics fetch", "run", runID)
	return nil
}

func processCourse(ctx context.Context, courseID string, st *store.Store, collector *collect.Collector, cfg *config.Config) error {
	slog.Info("processing course", "course", courseID)

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -cfg.BackfillDays)

	lastCursor, err := st.GetCourseCursor(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			slog.Info("no cursor found, backfilling", "course", courseID, "start", analytics.FormatDate(start))
		} else {
			return fmt.Errorf("get cursor for %s: %w", courseID, err)
		}
	} else {
		start = lastCursor
		slog.Info("resuming from cursor", "course", courseID, "cursor", analytics.FormatDate(lastCursor))
	}

	startDate := analytics.FormatDate(start)
	endDate := analytics.FormatDate(now)

	if err := collector.Collect(ctx, courseID, startDate, endDate); err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	if err := st.SaveCourseCursor(ctx, courseID, now); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}

	slog.Info("completed course", "course", courseID, "cursor", endDate)
	return nil
}
