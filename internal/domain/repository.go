package domain

import (
	"encoding/json"
	"time"
)

// Repository holds the metadata of a single repository within an organization.
// Two repositories are the same entity only if both Org and Name match.
type Repository struct {
	Org        string    `json:"org"`
	Name       string    `json:"name"`
	Language   string    `json:"language"`
	Stars      int       `json:"stars"`
	Forks      int       `json:"forks"`
	OpenIssues int       `json:"open_issues"`
	PushedAt   time.Time `json:"pushed_at"`
	Archived   bool      `json:"archived"`
	Fork       bool      `json:"fork"`
	URL        string    `json:"url"`
}

// FullName returns "org/name".
func (r Repository) FullName() string {
	return r.Org + "/" + r.Name
}

// NeverPushed reports whether the provider has no push time for the repository.
func (r Repository) NeverPushed() bool {
	return r.PushedAt.IsZero()
}

// DaysSincePush returns the number of whole days between the last push and now.
func (r Repository) DaysSincePush(now time.Time) int {
	if r.NeverPushed() {
		return NeverPushedDays
	}
	return int(now.Sub(r.PushedAt) / (24 * time.Hour))
}

// NeverPushedDays is the staleness reported for repositories without a push time.
const NeverPushedDays = 99999

// Repository status labels shown in listings.
const (
	StatusArchived = "archived"
	StatusStale    = "stale"
	StatusActive   = "active"
)

// StatusStaleAfterDays is the push age beyond which a listing marks a repository stale.
const StatusStaleAfterDays = 365

// Status classifies the repository for listings: archived first, then stale
// when the last push is more than StatusStaleAfterDays ago, else active.
func (r Repository) Status(now time.Time) string {
	switch {
	case r.Archived:
		return StatusArchived
	case r.DaysSincePush(now) > StatusStaleAfterDays:
		return StatusStale
	default:
		return StatusActive
	}
}

// repositoryFields has the fields of Repository without its methods.
type repositoryFields Repository

// repositoryJSON encodes a missing push time as null rather than the zero time.
type repositoryJSON struct {
	repositoryFields
	PushedAt *time.Time `json:"pushed_at"`
}

func (r Repository) toJSON() repositoryJSON {
	v := repositoryJSON{repositoryFields: repositoryFields(r)}
	if !r.NeverPushed() {
		v.PushedAt = &r.PushedAt
	}
	return v
}

func (r Repository) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}
