// Package models holds the rate limiting value types shared by stores and
// middleware.
package models

import "time"

// EndpointClass groups routes that share a request budget.
type EndpointClass string

const (
	// ClassIssue covers routes that persist or assemble letters.
	ClassIssue EndpointClass = "issue"
	// ClassRead covers lookups, documents and audit trails.
	ClassRead EndpointClass = "read"
)

// Policy is the budget for one endpoint class.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Policies maps each class to its budget. A class without an entry is
// not limited.
type Policies map[EndpointClass]Policy

// DefaultPolicies returns the budgets used when none are configured.
func DefaultPolicies() Policies {
	return Policies{
		ClassIssue: {Limit: 30, Window: time.Minute},
		ClassRead:  {Limit: 300, Window: time.Minute},
	}
}

// Result is the outcome of one check against a bucket.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// ExceededResponse is written with a 429.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// IPKey builds the bucket key for a client IP and class.
func IPKey(ip string, class EndpointClass) string {
	return "ratelimit:ip:" + ip + ":" + string(class)
}
