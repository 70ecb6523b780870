package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Cursor dates use the analytics API wire format.
const dateFormat = time.DateOnly

// Enrollment is an enrollment count snapshot. Demographic and Category are
// empty for across-all counts.
type Enrollment struct {
	Course      string
	Date        string
	Demographic string
	Category    string
	Count       int
}

// Activity is a student activity count for one interval.
type Activity struct {
	Course        string
	IntervalStart string
	IntervalEnd   string
	ActivityType  string
	Count         int
}

// Video is a per-video view snapshot. Completion is the fraction of viewers
// who reached the end of the video.
type Video struct {
	Course          string
	EncodedModuleID string
	PipelineVideoID string
	Duration        int
	StartViews      int
	EndViews        int
	Completion      float64
}

// MetricEntry is one row of the unified metric rollup used for reporting.
type MetricEntry struct {
	Course   string
	Metric   string
	Category string
	Date     string
	Count    int
}

// FetchRun records one completed fetch invocation.
type FetchRun struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	CourseCount int
}

// Store manages database operations for collected course analytics.
type Store struct {
	db *sql.DB
}

// NewStore creates a new store instance and initializes the database.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if err := s.enableSQLitePragmas(ctx); err != nil {
		return err
	}

	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	return s.runMigrations(ctx)
}

func (s *Store) enableSQLitePragmas(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}

	return nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS course_cursor (
			course TEXT PRIMARY KEY,
			cursor TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS course_tombstone (
			course TEXT PRIMARY KEY,
			deleted_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS enrollment (
			course TEXT NOT NULL,
			date TEXT NOT NULL,
			demographic TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			count INTEGER NOT NULL,
			PRIMARY KEY (course, date, demographic, category)
		);

		CREATE TABLE IF NOT EXISTS activity (
			course TEXT NOT NULL,
			interval_start TEXT NOT NULL,
			interval_end TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (course, interval_start, activity_type)
		);

		CREATE TABLE IF NOT EXISTS video (
			course TEXT NOT NULL,
			encoded_module_id TEXT NOT NULL,
			pipeline_video_id TEXT,
			duration INTEGER,
			start_views INTEGER NOT NULL,
			end_views INTEGER NOT NULL,
			completion REAL,
			PRIMARY KEY (course, encoded_module_id)
		);

		CREATE TABLE IF NOT EXISTS reported_snapshot (
			course TEXT NOT NULL,
			metric TEXT NOT NULL,
			category TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (course, metric, category, date)
		);

		CREATE TABLE IF NOT EXISTS fetch_run (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			course_count INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_enrollment_course ON enrollment(course);
		CREATE INDEX IF NOT EXISTS idx_activity_course ON activity(course);

		CREATE VIEW IF NOT EXISTS metric_rollup AS
			SELECT course, 'enrollment' AS metric,
				CASE WHEN demographic = '' THEN '' ELSE demographic || ':' || category END AS category,
				date, count
			FROM enrollment
			UNION ALL
			SELECT course, 'activity', activity_type, interval_end, count
			FROM activity
			UNION ALL
			SELECT course, 'video_views', encoded_module_id, '', start_views
			FROM video
			UNION ALL
			SELECT course, 'video_completion_pct', encoded_module_id, '',
				CAST(ROUND(COALESCE(completion, 0) * 100) AS INTEGER)
			FROM video;
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	migrations := []string{
		"ALTER TABLE video ADD COLUMN pipeline_video_id TEXT",
		"ALTER TABLE video ADD COLUMN completion REAL",
		"ALTER TABLE fetch_run ADD COLUMN course_count INTEGER NOT NULL DEFAULT 0",
	}

	for _, migration := range migrations {
		_, err := s.db.ExecContext(ctx, migration)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") && !strings.Contains(err.Error(), "no such column") {
			return fmt.Errorf("run migration: %w", err)
		}
	}

	return nil
}

// SaveCourseCursor saves the last collected date for a course.
func (s *Store) SaveCourseCursor(ctx context.Context, course string, cursor time.Time) error {
	query := `
		INSERT INTO course_cursor (course, cursor)
		VALUES (?, ?)
		ON CONFLICT(course) DO UPDATE SET cursor = excluded.cursor
	`
	_, err := s.db.ExecContext(ctx, query, course, cursor.UTC().Format(dateFormat))
	if err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

// GetCourseCursor retrieves the last collected date for a course.
// Returns sql.ErrNoRows directly if no cursor exists for the course,
// allowing callers to distinguish "no cursor yet" from database errors.
func (s *Store) GetCourseCursor(ctx context.Context, course string) (time.Time, error) {
	query := `SELECT cursor FROM course_cursor WHERE course = ?`
	var cursorStr string
	err := s.db.QueryRowContext(ctx, query, course).Scan(&cursorStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, sql.ErrNoRows
		}
		return time.Time{}, fmt.Errorf("get cursor: %w", err)
	}

	cursor, err := time.Parse(dateFormat, cursorStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cursor: %w", err)
	}

	return cursor, nil
}

// SaveEnrollment saves an enrollment count, replacing any existing snapshot
// for the same course, date and demographic breakdown.
func (s *Store) SaveEnrollment(ctx context.Context, e Enrollment) error {
	query := `
		INSERT INTO enrollment (course, date, demographic, category, count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(course, date, demographic, category) DO UPDATE SET
			count = excluded.count
	`
	_, err := s.db.ExecContext(ctx, query, e.Course, e.Date, e.Demographic, e.Category, e.Count)
	if err != nil {
		return fmt.Errorf("save enrollment: %w", err)
	}
	return nil
}

// SaveActivity saves an activity count, replacing any existing snapshot for
// the same course, interval and activity type.
func (s *Store) SaveActivity(ctx context.Context, a Activity) error {
	query := `
		INSERT INTO activity (course, interval_start, interval_end, activity_type, count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(course, interval_start, activity_type) DO UPDATE SET
			interval_end = excluded.interval_end,
			count = excluded.count
	`
	_, err := s.db.ExecContext(ctx, query, a.Course, a.IntervalStart, a.IntervalEnd, a.ActivityType, a.Count)
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	return nil
}

// SaveVideo saves a per-video view snapshot, replacing any existing snapshot
// for the same course and module.
func (s *Store) SaveVideo(ctx context.Context, v Video) error {
	query := `
		INSERT INTO video (course, encoded_module_id, pipeline_video_id, duration, start_views, end_views, completion)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(course, encoded_module_id) DO UPDATE SET
			pipeline_video_id = excluded.pipeline_video_id,
			duration = excluded.duration,
			start_views = excluded.start_views,
			end_views = excluded.end_views,
			completion = excluded.completion
	`
	_, err := s.db.ExecContext(ctx, query, v.Course, v.EncodedModuleID, v.PipelineVideoID, v.Duration, v.StartViews, v.EndViews, v.Completion)
	if err != nil {
		return fmt.Errorf("save video: %w", err)
	}
	return nil
}

// SaveCourseTombstone records a course the API no longer knows about.
func (s *Store) SaveCourseTombstone(ctx context.Context, course string) error {
	query := `
		INSERT INTO course_tombstone (course)
		VALUES (?)
		ON CONFLICT(course) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("save tombstone: %w", err)
	}
	return nil
}

// RecordFetchRun records a completed fetch invocation.
func (s *Store) RecordFetchRun(ctx context.Context, run FetchRun) error {
	query := `
		INSERT INTO fetch_run (id, started_at, finished_at, course_count)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339), run.CourseCount)
	if err != nil {
		return fmt.Errorf("record fetch run: %w", err)
	}
	return nil
}

// GetMetricsForReport retrieves all metric rows for reporting, optionally
// filtered to a single course.
func (s *Store) GetMetricsForReport(ctx context.Context, course string) ([]MetricEntry, error) {
	query := `SELECT course, metric, category, date, count FROM metric_rollup`

	var rows *sql.Rows
	var err error

	if course == "" {
		query += " ORDER BY course, metric, category, date"
		rows, err = s.db.QueryContext(ctx, query)
	} else {
		query += " WHERE course = ? ORDER BY course, metric, category, date"
		rows, err = s.db.QueryContext(ctx, query, course)
	}

	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	return scanMetricEntries(rows)
}

// GetUnreportedMetrics retrieves metric rows that are new or changed since the
// last saved report snapshot.
func (s *Store) GetUnreportedMetrics(ctx context.Context, course string) ([]MetricEntry, error) {
	query := `
		SELECT m.course, m.metric, m.category, m.date, m.count
		FROM metric_rollup m
		LEFT JOIN reported_snapshot r
			ON m.course = r.course AND m.metric = r.metric AND m.category = r.category AND m.date = r.date
		WHERE (r.course IS NULL OR r.count != m.count)`

	var rows *sql.Rows
	var err error

	if course == "" {
		query += " ORDER BY m.course, m.metric, m.category, m.date"
		rows, err = s.db.QueryContext(ctx, query)
	} else {
		query += " AND m.course = ? ORDER BY m.course, m.metric, m.category, m.date"
		rows, err = s.db.QueryContext(ctx, query, course)
	}

	if err != nil {
		return nil, fmt.Errorf("query unreported metrics: %w", err)
	}
	defer rows.Close()

	return scanMetricEntries(rows)
}

func scanMetricEntries(rows *sql.Rows) ([]MetricEntry, error) {
	var entries []MetricEntry
	for rows.Next() {
		var e MetricEntry
		if err := rows.Scan(&e.Course, &e.Metric, &e.Category, &e.Date, &e.Count); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// SaveReportSnapshot saves the current report snapshot, replacing any existing
// snapshot.
func (s *Store) SaveReportSnapshot(ctx context.Context, entries []MetricEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "DELETE FROM reported_snapshot")
	if err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reported_snapshot (course, metric, category, date, count)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err = stmt.ExecContext(ctx, e.Course, e.Metric, e.Category, e.Date, e.Count)
		if err != nil {
			return fmt.Errorf("insert snapshot entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// DeleteMetricsOlderThan deletes dated metric rows older than the cutoff time.
// Video snapshots are undated and are kept.
func (s *Store) DeleteMetricsOlderThan(ctx context.Context, cutoff time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	cutoffStr := cutoff.UTC().Format(dateFormat)

	_, err = tx.ExecContext(ctx, `DELETE FROM enrollment WHERE date(date) < date(?)`, cutoffStr)
	if err != nil {
		return fmt.Errorf("delete old enrollment rows: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM activity WHERE date(interval_end) < date(?)`, cutoffStr)
	if err != nil {
		return fmt.Errorf("delete old activity rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
