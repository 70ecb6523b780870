package analytics

// DataFormat selects the response encoding requested from the API. It controls
// both the Accept header and how the response body is decoded.
type DataFormat string

// Supported data formats.
const (
	JSON DataFormat = "json"
	CSV  DataFormat = "csv"
)

// ContentType returns the MIME type sent in the Accept header for this format.
func (f DataFormat) ContentType() string {
	if f == CSV {
		return "text/csv"
	}
	return "application/json"
}
