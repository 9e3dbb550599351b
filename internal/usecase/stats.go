package usecase

import (
	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/gitorg/internal/domain"
)

// Summarize reduces repos to aggregate figures. Every repository counts toward
// exactly one language bucket, so the bucket counts add up to TotalRepos.
func Summarize(repos []domain.Repository) domain.Stats {
	s := domain.Stats{Languages: make(map[string]int)}
	starCounts := make([]int, 0, len(repos))
	var mostStarred, mostForked *domain.Repository

	for i := range repos {
		r := &repos[i]
		s.TotalRepos++
		s.TotalStars += r.Stars
		s.TotalForks += r.Forks
		s.TotalOpenIssues += r.OpenIssues
		starCounts = append(starCounts, r.Stars)

		lang := r.Language
		if lang == "" {
			lang = domain.UnknownLanguage
		}
		s.Languages[lang]++

		if mostStarred == nil || r.Stars > mostStarred.Stars ||
			(r.Stars == mostStarred.Stars && compareByName(*r, *mostStarred) < 0) {
			mostStarred = r
		}
		if mostForked == nil || r.Forks > mostForked.Forks ||
			(r.Forks == mostForked.Forks && compareByName(*r, *mostForked) < 0) {
			mostForked = r
		}
	}

	if mostStarred != nil {
		s.MostStarred = &domain.RepoRef{Org: mostStarred.Org, Name: mostStarred.Name, Count: mostStarred.Stars}
	}
	if mostForked != nil {
		s.MostForked = &domain.RepoRef{Org: mostForked.Org, Name: mostForked.Name, Count: mostForked.Forks}
	}

	if len(starCounts) > 0 {
		data := stats.LoadRawData(starCounts)
		if mean, err := stats.Mean(data); err == nil {
			s.MeanStars = round2(mean)
		}
		if median, err := stats.Median(data); err == nil {
			s.MedianStars = round2(median)
		}
	}
	return s
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
