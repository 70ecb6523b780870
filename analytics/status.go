package analytics

import "context"

// Status accesses the API health endpoints.
type Status struct {
	client *Client
}

// Alive reports whether the API is reachable and responding.
func (s *Status) Alive(ctx context.Context) bool {
	return s.client.HasResource(ctx, "status")
}

// Authenticated reports whether the client's credentials are accepted.
func (s *Status) Authenticated(ctx context.Context) bool {
	return s.client.HasResource(ctx, "authenticated")
}
