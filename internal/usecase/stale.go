package usecase

import (
	"time"

	"github.com/naka-gawa/gitorg/internal/domain"
)

// DefaultStaleDays is the default --days threshold.
const DefaultStaleDays = 90

// FilterStale returns the repositories that have not been pushed to for at
// least days whole days, most stale first. Archived repositories are left out
// unless includeArchived is set. A repository that was never pushed is always stale.
func FilterStale(repos []domain.Repository, now time.Time, days int, includeArchived bool) []domain.AgedRepository {
	stale := make([]domain.AgedRepository, 0)
	for _, r := range SortRepositories(repos, SortStaleness) {
		if r.Archived && !includeArchived {
			continue
		}
		age := r.DaysSincePush(now)
		if age < days && !r.NeverPushed() {
			continue
		}
		stale = append(stale, domain.AgedRepository{Repository: r, DaysSincePush: age})
	}
	return stale
}

// recentlyActive returns the non-stale repositories, most recently pushed first.
func recentlyActive(repos []domain.Repository, now time.Time, days int) []domain.AgedRepository {
	active := make([]domain.AgedRepository, 0)
	for _, r := range SortRepositories(repos, SortActivity) {
		age := r.DaysSincePush(now)
		if age >= days || r.NeverPushed() {
			continue
		}
		active = append(active, domain.AgedRepository{Repository: r, DaysSincePush: age})
	}
	return active
}
