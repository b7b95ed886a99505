// Package entity defines the entities and errors used in the application.
// It includes the Record struct, which maps a shortcode to its target URL
// together with the visit statistics, and the shortcode format rule.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidURL is returned when a record is requested for an empty URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidShortcode is returned when a shortcode does not match the format rule.
	ErrInvalidShortcode = errors.New("invalid shortcode")
	// ErrShortcodeInUse is returned when attempting to create a record with a shortcode that already exists.
	ErrShortcodeInUse = errors.New("shortcode already in use")
	// ErrRecordNotFound is returned when no record is stored under the given shortcode.
	ErrRecordNotFound = errors.New("record not found")
	// ErrStoreUnavailable wraps failures of the underlying key-value store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Record represents a shortened URL and its visit statistics.
type Record struct {
	Shortcode     string     `json:"shortcode"`              // Shortcode is the store key and never changes.
	URL           string     `json:"url"`                    // URL is the redirect target.
	StartDate     time.Time  `json:"startDate"`              // StartDate is the creation timestamp.
	LastSeenDate  *time.Time `json:"lastSeenDate,omitempty"` // LastSeenDate is nil until the first redirect.
	RedirectCount int64      `json:"redirectCount"`          // RedirectCount is the number of redirects served.
}

// CreateInput is the normalized input for creating a record.
// An empty Shortcode asks for a generated one.
type CreateInput struct {
	Shortcode string
	URL       string
}

// Stats is the public statistics view of a record.
type Stats struct {
	StartDate     time.Time
	RedirectCount int64
	LastSeenDate  *time.Time
}

// Stats projects the record onto its statistics view.
// LastSeenDate is included only once the record has been visited.
func (r *Record) Stats() Stats {
	s := Stats{
		StartDate:     r.StartDate,
		RedirectCount: r.RedirectCount,
	}

	if r.RedirectCount > 0 && r.LastSeenDate != nil {
		t := *r.LastSeenDate
		s.LastSeenDate = &t
	}

	return s
}

// Visit registers one redirect at the given time. lastSeenDate never moves
// back past the previous visit or the start date, even if the clock does.
func (r *Record) Visit(at time.Time) {
	if at.Before(r.StartDate) {
		at = r.StartDate
	}
	if r.LastSeenDate != nil && at.Before(*r.LastSeenDate) {
		at = *r.LastSeenDate
	}

	r.RedirectCount++
	r.LastSeenDate = &at
}
