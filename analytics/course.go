package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Course accesses analytics for a single course. It is immutable after
// construction, holds no state beyond its identity, and may be reused for any
// number of calls from any number of goroutines.
type Course struct {
	client *Client

	// CourseID identifies the course, e.g. edX/DemoX/Demo_Course.
	CourseID string
}

type callOptions struct {
	format    DataFormat
	startDate string
	endDate   string
}

// CallOption configures a single endpoint call.
type CallOption func(*callOptions)

// WithFormat selects the response data format. The default is JSON.
func WithFormat(format DataFormat) CallOption {
	return func(o *callOptions) {
		o.format = format
	}
}

// WithStartDate sets the minimum date (YYYY-MM-DD, UTC) for returned data.
func WithStartDate(date string) CallOption {
	return func(o *callOptions) {
		o.startDate = date
	}
}

// WithEndDate sets the maximum date (YYYY-MM-DD, UTC) for returned data.
func WithEndDate(date string) CallOption {
	return func(o *callOptions) {
		o.endDate = date
	}
}

// WithDateRange sets both the start and end date (YYYY-MM-DD, UTC).
func WithDateRange(startDate, endDate string) CallOption {
	return func(o *callOptions) {
		o.startDate = startDate
		o.endDate = endDate
	}
}

func applyCallOptions(opts []CallOption) callOptions {
	o := callOptions{format: JSON}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type queryParam struct {
	key   string
	value string
}

// buildQuery assembles a query string from the given parameters, preserving
// their order and skipping empty values. It returns "" when every value is
// empty, so bare paths stay bare.
func buildQuery(params []queryParam) string {
	var sb strings.Builder
	for _, p := range params {
		if p.value == "" {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.value))
	}
	return sb.String()
}

func dateParams(o callOptions) []queryParam {
	return []queryParam{
		{"start_date", o.startDate},
		{"end_date", o.endDate},
	}
}

// Enrollment returns course enrollment data.
//
// When a start or end date is given, all data for the range is returned;
// otherwise data for the most-recent date is returned. A non-empty demographic
// groups the data by that demographic; the empty demographic returns data
// across all demographics.
func (r *Course) Enrollment(ctx context.Context, demographic Demographic, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/enrollment/", r.CourseID)
	if demographic != "" {
		path += fmt.Sprintf("%s/", demographic)
	}
	path += buildQuery(dateParams(o))

	return r.client.Get(ctx, path, o.format)
}

// Activity returns student activity counts for the course. activityType must
// be non-empty (use ActivityTypeAny for all activity) and is always sent as a
// query parameter.
func (r *Course) Activity(ctx context.Context, activityType ActivityType, opts ...CallOption) (any, error) {
	if activityType == "" {
		return nil, fmt.Errorf("activity type cannot be empty: %w", ErrInvalidRequest)
	}

	o := applyCallOptions(opts)

	params := append([]queryParam{{"activity_type", string(activityType)}}, dateParams(o)...)
	path := fmt.Sprintf("courses/%s/activity/", r.CourseID) + buildQuery(params)

	return r.client.Get(ctx, path, o.format)
}

// RecentActivity returns recent activity counts for the course.
//
// Deprecated: the recent_activity endpoint is superseded by the date-ranged
// activity endpoint. Use Activity instead.
func (r *Course) RecentActivity(ctx context.Context, activityType ActivityType, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/recent_activity/?activity_type=%s", r.CourseID, url.QueryEscape(string(activityType)))

	return r.client.Get(ctx, path, o.format)
}

// Problems returns the problems for the course.
func (r *Course) Problems(ctx context.Context, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/problems/", r.CourseID)

	return r.client.Get(ctx, path, o.format)
}

// ProblemsAndTags returns the problems for the course together with their tags.
func (r *Course) ProblemsAndTags(ctx context.Context, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/problems_and_tags/", r.CourseID)

	return r.client.Get(ctx, path, o.format)
}

// Reports returns download metadata for a named course report, e.g.
// "problem_response".
func (r *Course) Reports(ctx context.Context, reportName string, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/reports/%s/", r.CourseID, reportName)

	return r.client.Get(ctx, path, o.format)
}

// VideoSettings returns the settings used by the pipeline to process the logs.
func (r *Course) VideoSettings(ctx context.Context, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/videos/settings/", r.CourseID)

	return r.client.Get(ctx, path, o.format)
}

// Videos returns the tracked videos for the course.
func (r *Course) Videos(ctx context.Context, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/videos/", r.CourseID) + buildQuery(dateParams(o))

	return r.client.Get(ctx, path, o.format)
}

// VideoSummary returns summary information about a particular video.
func (r *Course) VideoSummary(ctx context.Context, videoID string, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/videos/%s/summary/", r.CourseID, videoID) + buildQuery(dateParams(o))

	return r.client.Get(ctx, path, o.format)
}

// VideoSeekTimes returns seek times for a particular video.
func (r *Course) VideoSeekTimes(ctx context.Context, videoID string, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/videos/%s/seek_times/", r.CourseID, videoID) + buildQuery(dateParams(o))

	return r.client.Get(ctx, path, o.format)
}

// OnCampusData returns per-student analytics data about the course.
func (r *Course) OnCampusData(ctx context.Context, opts ...CallOption) (any, error) {
	o := applyCallOptions(opts)

	path := fmt.Sprintf("courses/%s/on_campus_student_data/", r.CourseID) + buildQuery(dateParams(o))

	return r.client.Get(ctx, path, o.format)
}
