package usecase

import (
	"time"

	"github.com/naka-gawa/gitorg/internal/domain"
)

const (
	overviewLanguages = 5
	overviewRows      = 10
)

// Compose builds the overview of one snapshot from the other views.
func Compose(snapshot *Snapshot, now time.Time, days int) domain.Overview {
	s := Summarize(snapshot.Repositories)
	return domain.Overview{
		Days:           days,
		Stats:          s,
		TopLanguages:   s.TopLanguages(overviewLanguages),
		RecentlyActive: head(recentlyActive(snapshot.Repositories, now, days), overviewRows),
		Stale:          head(FilterStale(snapshot.Repositories, now, days, false), overviewRows),
		RecentIssues:   recentIssues(FilterIssues(snapshot.Issues), overviewRows),
	}
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
