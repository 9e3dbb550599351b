package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/gitorg/internal/domain"
)

func lastPush(r domain.Repository) string {
	if r.NeverPushed() {
		return "never"
	}
	return r.PushedAt.UTC().Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func itoa(n int) string { return strconv.Itoa(n) }

// Organizations renders the organization list.
func (r *Renderer) Organizations(orgs []domain.Organization) error {
	if r.json {
		return r.writeJSON(nonNil(orgs))
	}
	if len(orgs) == 0 {
		r.Warn("No organizations found.")
		return nil
	}

	r.sectionHeader("Organizations")
	t := newTable(text("Login"), text("Name"), numeric("Public Repos"), text("URL"))
	for _, o := range orgs {
		t.add(o.Login, orDash(o.Name), itoa(o.PublicRepos), o.URL)
	}
	if err := t.write(r.out, r.header); err != nil {
		return err
	}
	r.footer("%d organization(s) found.", len(orgs))
	return nil
}

// Repositories renders a repository listing in the order given. now dates the
// Status column.
func (r *Renderer) Repositories(repos []domain.Repository, now time.Time) error {
	if r.json {
		return r.writeJSON(nonNil(repos))
	}
	if len(repos) == 0 {
		r.Warn("No repositories found.")
		return nil
	}

	r.sectionHeader("Repositories")
	t := newTable(
		text("Org"), text("Name"), text("Language"),
		numeric("Stars"), numeric("Forks"), numeric("Issues"),
		text("Last Push"), text("Status"),
	)
	for _, repo := range repos {
		t.add(repo.Org, repo.Name, orDash(repo.Language),
			itoa(repo.Stars), itoa(repo.Forks), itoa(repo.OpenIssues),
			lastPush(repo), repo.Status(now))
	}
	if err := t.write(r.out, r.header); err != nil {
		return err
	}
	r.footer("%d repository(ies) found.", len(repos))
	return nil
}

// Stale renders the result of the stale filter for a threshold of days.
func (r *Renderer) Stale(repos []domain.AgedRepository, days int) error {
	if r.json {
		return r.writeJSON(nonNil(repos))
	}
	if len(repos) == 0 {
		r.Success("No repositories stale for %d days or more.", days)
		return nil
	}

	r.sectionHeader(fmt.Sprintf("Stale Repositories (>=%d days)", days))
	if err := r.agedTable(repos, true).write(r.out, r.header); err != nil {
		return err
	}
	r.footer("%d stale repository(ies) found.", len(repos))
	return nil
}

func (r *Renderer) agedTable(repos []domain.AgedRepository, withLanguage bool) *table {
	columns := []column{text("Org"), text("Name"), text("Last Push"), numeric("Days Since Push"), numeric("Stars")}
	if withLanguage {
		columns = append(columns, text("Language"))
	}
	t := newTable(columns...)
	for _, a := range repos {
		cells := []string{a.Org, a.Name, lastPush(a.Repository), itoa(a.DaysSincePush), itoa(a.Stars)}
		if withLanguage {
			cells = append(cells, orDash(a.Language))
		}
		t.add(cells...)
	}
	return t
}

// Issues renders open issues, one section per organization.
func (r *Renderer) Issues(groups []domain.IssueGroup) error {
	if r.json {
		return r.writeJSON(nonNil(groups))
	}
	total := 0
	for _, g := range groups {
		total += len(g.Issues)
	}
	if total == 0 {
		r.Success("No open issues found.")
		return nil
	}

	for _, g := range groups {
		r.sectionHeader("Open Issues: " + g.Org)
		if err := issueTable(g.Issues, true).write(r.out, r.header); err != nil {
			return err
		}
	}
	r.footer("%d open issue(s) found.", total)
	return nil
}

func issueTable(issues []domain.Issue, detailed bool) *table {
	columns := []column{text("Org"), text("Repo"), numeric("#"), text("Title")}
	if detailed {
		columns = append(columns, text("Author"), text("Labels"), text("Created"))
	} else {
		columns = append(columns, text("Updated"))
	}
	t := newTable(columns...)
	for _, i := range issues {
		cells := []string{i.Org, i.Repo, itoa(i.Number), i.Title}
		if detailed {
			cells = append(cells, orDash(i.Author), orDash(strings.Join(i.Labels, ", ")), formatDate(i.CreatedAt))
		} else {
			cells = append(cells, formatDate(i.UpdatedAt))
		}
		t.add(cells...)
	}
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dateLayout)
}

func repoRef(ref *domain.RepoRef) string {
	if ref == nil {
		return "-"
	}
	return fmt.Sprintf("%s/%s (%d)", ref.Org, ref.Name, ref.Count)
}

// Stats renders aggregate statistics.
func (r *Renderer) Stats(s domain.Stats) error {
	if r.json {
		return r.writeJSON(s)
	}

	r.sectionHeader("Organization Statistics")
	r.statsSummary(s)
	fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Most Starred:"), repoRef(s.MostStarred))
	fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Most Forked:"), repoRef(s.MostForked))
	fmt.Fprintf(r.out, "  %s %.2f\n", r.bold.Sprint("Mean Stars:"), s.MeanStars)
	fmt.Fprintf(r.out, "  %s %.2f\n", r.bold.Sprint("Median Stars:"), s.MedianStars)

	if len(s.Languages) == 0 {
		return nil
	}
	r.sectionHeader("Languages")
	return languageTable(s.TopLanguages(0)).write(r.out, r.header)
}

func (r *Renderer) statsSummary(s domain.Stats) {
	fmt.Fprintf(r.out, "  %s %d\n", r.bold.Sprint("Repositories:"), s.TotalRepos)
	fmt.Fprintf(r.out, "  %s %d\n", r.bold.Sprint("Total Stars:"), s.TotalStars)
	fmt.Fprintf(r.out, "  %s %d\n", r.bold.Sprint("Total Forks:"), s.TotalForks)
	fmt.Fprintf(r.out, "  %s %d\n", r.bold.Sprint("Open Issues:"), s.TotalOpenIssues)
}

func languageTable(langs []domain.LanguageCount) *table {
	t := newTable(text("Language"), numeric("Repos"))
	for _, l := range langs {
		t.add(l.Language, itoa(l.Count))
	}
	return t
}

// Overview renders every section of the overview in order.
func (r *Renderer) Overview(o domain.Overview) error {
	if r.json {
		o.TopLanguages = nonNil(o.TopLanguages)
		o.RecentlyActive = nonNil(o.RecentlyActive)
		o.Stale = nonNil(o.Stale)
		o.RecentIssues = nonNil(o.RecentIssues)
		return r.writeJSON(o)
	}

	r.sectionHeader("Summary")
	r.statsSummary(o.Stats)
	fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Most Starred:"), repoRef(o.Stats.MostStarred))

	sections := []struct {
		title string
		empty bool
		table func() *table
	}{
		{"Top Languages", len(o.TopLanguages) == 0, func() *table { return languageTable(o.TopLanguages) }},
		{fmt.Sprintf("Recently Active Repos (<%d days)", o.Days), len(o.RecentlyActive) == 0, func() *table { return r.agedTable(o.RecentlyActive, false) }},
		{fmt.Sprintf("Stale Repos (>=%d days)", o.Days), len(o.Stale) == 0, func() *table { return r.agedTable(o.Stale, false) }},
		{"Recent Issues", len(o.RecentIssues) == 0, func() *table { return issueTable(o.RecentIssues, false) }},
	}
	for _, s := range sections {
		if s.empty {
			continue
		}
		r.sectionHeader(s.title)
		if err := s.table().write(r.out, r.header); err != nil {
			return err
		}
	}
	return nil
}

// nonNil makes empty listings encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
