package usecase

import (
	"cmp"
	"slices"

	"github.com/naka-gawa/gitorg/internal/domain"
)

// FilterIssues drops pull requests and groups the remaining issues by
// organization. Groups appear in the order their organization is first seen,
// and issues keep their fetch order within a group.
func FilterIssues(issues []domain.Issue) []domain.IssueGroup {
	groups := make([]domain.IssueGroup, 0)
	index := make(map[string]int)
	for _, issue := range issues {
		if issue.PullRequest {
			continue
		}
		i, ok := index[issue.Org]
		if !ok {
			i = len(groups)
			index[issue.Org] = i
			groups = append(groups, domain.IssueGroup{Org: issue.Org})
		}
		groups[i].Issues = append(groups[i].Issues, issue)
	}
	return groups
}

// recentIssues returns up to n issues, most recently updated first.
func recentIssues(groups []domain.IssueGroup, n int) []domain.Issue {
	all := make([]domain.Issue, 0)
	for _, g := range groups {
		all = append(all, g.Issues...)
	}
	slices.SortStableFunc(all, func(a, b domain.Issue) int {
		return cmp.Or(
			b.UpdatedAt.Compare(a.UpdatedAt),
			cmp.Compare(a.Org, b.Org),
			cmp.Compare(a.Repo, b.Repo),
			cmp.Compare(a.Number, b.Number),
		)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
