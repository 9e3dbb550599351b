package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds reported to the user and used for exit codes.
const (
	KindAuth      = "auth"
	KindNotFound  = "not_found"
	KindTransport = "transport"
	KindRateLimit = "rate_limit"
	KindConfig    = "config"
	KindAPI       = "api"
	KindUnknown   = "error"
)

// AuthError means the credential is missing, invalid, or expired.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "Not authenticated. Run `gitorg auth` first."
	}
	return fmt.Sprintf("authentication failed: %v. Run `gitorg auth` to re-authenticate.", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
func (e *AuthError) Kind() string  { return KindAuth }

// NotFoundError means the named organization does not exist or is not visible.
type NotFoundError struct {
	Org string
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("organization not found: %s", e.Org)
}

func (e *NotFoundError) Unwrap() error { return e.Err }
func (e *NotFoundError) Kind() string  { return KindNotFound }

// TransportError wraps network, DNS, and TLS failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Kind() string  { return KindTransport }

// RateLimitError means the API quota is exhausted.
type RateLimitError struct {
	Reset time.Time
	Err   error
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "Rate limited. Please wait and retry."
	}
	return fmt.Sprintf("Rate limited. Resets at %s. Please wait and retry.", e.Reset.UTC().Format("15:04:05 UTC"))
}

func (e *RateLimitError) Unwrap() error { return e.Err }
func (e *RateLimitError) Kind() string  { return KindRateLimit }

// ConfigError means the configuration file could not be read or parsed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("Configuration error: %v", e.Err)
	}
	return fmt.Sprintf("Configuration error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Kind() string  { return KindConfig }

// APIError is any other error response from GitHub.
type APIError struct {
	Status int
	Err    error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %v", e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
func (e *APIError) Kind() string  { return KindAPI }

// OrgError records the failure of a single organization's fetch.
type OrgError struct {
	Org string
	Err error
}

func (e *OrgError) Error() string {
	var nf *NotFoundError
	if errors.As(e.Err, &nf) {
		return e.Err.Error()
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.Org, e.Err)
}

func (e *OrgError) Unwrap() error { return e.Err }

// KindOf returns the kind of the first typed error in err's chain.
func KindOf(err error) string {
	var k interface{ Kind() string }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// OrgOf returns the organization an error refers to, if any.
func OrgOf(err error) string {
	var oe *OrgError
	if errors.As(err, &oe) {
		return oe.Org
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Org
	}
	return ""
}
