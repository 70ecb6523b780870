package analytics

// ActivityType is a server-defined category of student activity events. The
// wrapper forwards these verbatim; unknown values are rejected by the server.
type ActivityType string

// Activity types known to the analytics API.
const (
	ActivityTypeAny              ActivityType = "any"
	ActivityTypeAttemptedProblem ActivityType = "attempted_problem"
	ActivityTypePlayedVideo      ActivityType = "played_video"
	ActivityTypePostedForum      ActivityType = "posted_forum"
)

// ActivityTypes lists all activity types known to the analytics API.
func ActivityTypes() []ActivityType {
	return []ActivityType{
		ActivityTypeAny,
		ActivityTypeAttemptedProblem,
		ActivityTypePlayedVideo,
		ActivityTypePostedForum,
	}
}

// String returns the string representation of the activity type.
func (a ActivityType) String() string {
	return string(a)
}
