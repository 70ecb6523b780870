package app

import "fmt"

// ShowHelp displays usage information.
func ShowHelp() {
	fmt.Print(`
Course Analytics - Course Metrics Collection Tool

USAGE:
  course-analytics [command] [options]

COMMANDS:
  -fetch              Fetch latest course metrics from the analytics API
  -report             Generate report from local database
  -help               Show this help message

FETCH OPTIONS:
  Environment variables:
    ANALYTICS_COURSES             Comma-separated list of course IDs
    ANALYTICS_ROSTER_URL          URL of a course roster (overrides ANALYTICS_COURSES)
    ANALYTICS_DEMOGRAPHICS        Enrollment breakdowns to fetch (birth_year,education,gender,location)
    ANALYTICS_API_BASE_URL        Analytics API base URL (default: http://localhost:9001/api/v0)
    ANALYTICS_AUTH_TOKEN          API auth token (optional)
    ANALYTICS_DB_PATH             Database path (default: ./analytics.db)
    ANALYTICS_BACKFILL_DAYS       Initial backfill window in days (default: 30)
    ANALYTICS_DATA_RETENTION_DAYS Data retention period in days (default: 30)

REPORT OPTIONS:
  -format <format>    Output format: markdown, csv, jsonl (default: markdown)
  -output <file>      Output base file path (timestamp suffix appended; default: ./report.md)
  -course <id>        Filter by course ID (optional)
  -diff               Generate differential report (new/changed metrics only)

EXAMPLES:
  # Fetch course metrics
  ANALYTICS_COURSES=edX/DemoX/Demo_Course course-analytics -fetch

  # Generate markdown report (creates report_<timestamp>.md)
  course-analytics -report -format=markdown -output=report.md

  # Generate differential CSV report for one course
  course-analytics -report -diff -format=csv -course=edX/DemoX/Demo_Course -output=demo-diff.csv
`)
}
