package domain

import (
	"cmp"
	"encoding/json"
	"slices"
)

// UnknownLanguage is the language bucket for repositories without a detected language.
const UnknownLanguage = "unknown"

// RepoRef points at a repository together with the metric it was selected for.
type RepoRef struct {
	Org   string `json:"org"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LanguageCount is one entry of a language histogram.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// Stats holds aggregate figures over a set of repositories.
type Stats struct {
	TotalRepos      int            `json:"total_repos"`
	TotalStars      int            `json:"total_stars"`
	TotalForks      int            `json:"total_forks"`
	TotalOpenIssues int            `json:"total_open_issues"`
	MeanStars       float64        `json:"mean_stars"`
	MedianStars     float64        `json:"median_stars"`
	Languages       map[string]int `json:"languages"`
	MostStarred     *RepoRef       `json:"most_starred"`
	MostForked      *RepoRef       `json:"most_forked"`
}

// TopLanguages returns up to n languages ordered by repository count, then name.
// n <= 0 returns all of them.
func (s Stats) TopLanguages(n int) []LanguageCount {
	langs := make([]LanguageCount, 0, len(s.Languages))
	for lang, count := range s.Languages {
		langs = append(langs, LanguageCount{Language: lang, Count: count})
	}
	slices.SortFunc(langs, func(a, b LanguageCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Language, b.Language)
	})
	if n > 0 && len(langs) > n {
		langs = langs[:n]
	}
	return langs
}

// AgedRepository is a repository annotated with the whole days elapsed since its last push.
type AgedRepository struct {
	Repository
	DaysSincePush int `json:"days_since_push"`
}

// MarshalJSON keeps DaysSincePush next to the repository fields; the embedded
// Repository's encoder would otherwise drop it.
func (a AgedRepository) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		repositoryJSON
		DaysSincePush int `json:"days_since_push"`
	}{a.Repository.toJSON(), a.DaysSincePush})
}

// IssueGroup holds the open issues of one organization in fetch order.
type IssueGroup struct {
	Org    string  `json:"org"`
	Issues []Issue `json:"issues"`
}

// Overview bundles every derived view of one snapshot, in display order.
type Overview struct {
	Days           int              `json:"days"`
	Stats          Stats            `json:"stats"`
	TopLanguages   []LanguageCount  `json:"top_languages"`
	RecentlyActive []AgedRepository `json:"recently_active"`
	Stale          []AgedRepository `json:"stale"`
	RecentIssues   []Issue          `json:"recent_issues"`
}
