package cmd

import "github.com/naka-gawa/gitorg/internal/domain"

// Process exit codes, one per error kind.
const (
	exitOK        = 0
	exitError     = 1
	exitUsage     = 2
	exitAuth      = 3
	exitNotFound  = 4
	exitTransport = 5
	exitRateLimit = 6
	exitConfig    = 7
)

const kindUsage = "usage"

// usageError is a malformed invocation: an unknown flag, command, or flag value.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
func (e *usageError) Kind() string  { return kindUsage }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch domain.KindOf(err) {
	case kindUsage:
		return exitUsage
	case domain.KindAuth:
		return exitAuth
	case domain.KindNotFound:
		return exitNotFound
	case domain.KindTransport:
		return exitTransport
	case domain.KindRateLimit:
		return exitRateLimit
	case domain.KindConfig:
		return exitConfig
	default:
		return exitError
	}
}
