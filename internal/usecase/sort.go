package usecase

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/naka-gawa/gitorg/internal/domain"
)

// SortKey is an ordering for repository listings.
type SortKey string

const (
	SortStars     SortKey = "stars"     // most stars first
	SortActivity  SortKey = "activity"  // most recent push first
	SortStaleness SortKey = "staleness" // oldest push first
	SortName      SortKey = "name"      // case-insensitive name
)

// SortKeys lists the accepted sort keys in the order they are documented.
var SortKeys = []SortKey{SortStars, SortActivity, SortStaleness, SortName}

// ParseSortKey validates s as a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, key) {
		return key, nil
	}
	return "", fmt.Errorf("invalid sort key %q: must be one of stars, activity, staleness, name", s)
}

// SortRepositories returns a sorted copy of repos. Ties on the primary key are
// broken by name and then organization, so the order is total.
func SortRepositories(repos []domain.Repository, key SortKey) []domain.Repository {
	sorted := slices.Clone(repos)
	primary := primaryOrder(key)
	slices.SortStableFunc(sorted, func(a, b domain.Repository) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return compareByName(a, b)
	})
	return sorted
}

func primaryOrder(key SortKey) func(a, b domain.Repository) int {
	switch key {
	case SortStars:
		return func(a, b domain.Repository) int { return cmp.Compare(b.Stars, a.Stars) }
	case SortStaleness:
		return func(a, b domain.Repository) int { return a.PushedAt.Compare(b.PushedAt) }
	case SortName:
		return func(a, b domain.Repository) int { return 0 }
	default:
		return func(a, b domain.Repository) int { return b.PushedAt.Compare(a.PushedAt) }
	}
}

func compareByName(a, b domain.Repository) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Org, b.Org),
	)
}
