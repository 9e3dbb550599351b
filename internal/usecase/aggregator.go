// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/naka-gawa/gitorg/internal/domain"
	"github.com/naka-gawa/gitorg/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of organizations fetched at once.
const DefaultConcurrency = 4

// Want selects which collections Collect fetches for every organization.
type Want uint8

const (
	WantRepositories Want = 1 << iota
	WantIssues
)

// Snapshot is the result of one fetch. Successful organizations contribute
// their records in the order the organizations were requested; each failed
// organization contributes exactly one entry in Failures and no records.
type Snapshot struct {
	Orgs         []string
	Repositories []domain.Repository
	Issues       []domain.Issue
	Failures     []*domain.OrgError
}

// Err returns the first per-organization failure, or nil.
func (s *Snapshot) Err() error {
	if len(s.Failures) == 0 {
		return nil
	}
	return s.Failures[0]
}

// Aggregator is the use case for fetching organization data.
// It orchestrates the per-organization fetches and merges their results.
type Aggregator struct {
	fetcher     gateway.Fetcher
	logger      *slog.Logger
	concurrency int
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
}

// ResolveOrgs picks the organizations a command works on: the --org flags if
// given, else the configured defaults, else every organization the token can
// see. Duplicates are dropped, keeping the first occurrence.
func (a *Aggregator) ResolveOrgs(ctx context.Context, flagOrgs, defaultOrgs []string) ([]string, error) {
	switch {
	case len(flagOrgs) > 0:
		return dedupe(flagOrgs), nil
	case len(defaultOrgs) > 0:
		return dedupe(defaultOrgs), nil
	}

	a.logger.Debug("Usecase: No organizations given, listing all accessible ones...")
	orgs, err := a.fetcher.FetchOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(orgs))
	for _, org := range orgs {
		names = append(names, org.Login)
	}
	return dedupe(names), nil
}

type orgResult struct {
	repos  []domain.Repository
	issues []domain.Issue
	err    error
}

// Collect fetches the wanted collections of every organization concurrently.
//
// A failure of one organization is recorded in the snapshot and does not stop
// the others. A rate limit error is different: the quota is shared, so the
// remaining fetches are cancelled and the error is returned on its own.
func (a *Aggregator) Collect(ctx context.Context, orgs []string, want Want) (*Snapshot, error) {
	a.logger.Debug("Usecase: Starting data collection...", slog.Any("orgs", orgs))

	results := make([]orgResult, len(orgs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.concurrency)
	for i, org := range orgs {
		eg.Go(func() error {
			res := a.collectOrg(egCtx, org, want)
			var rlErr *domain.RateLimitError
			if errors.As(res.err, &rlErr) {
				return res.err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{Orgs: orgs}
	for i, res := range results {
		if res.err != nil {
			a.logger.Debug("Usecase: Failed to fetch organization.", slog.String("org", orgs[i]), slog.Any("error", res.err))
			snapshot.Failures = append(snapshot.Failures, &domain.OrgError{Org: orgs[i], Err: res.err})
			continue
		}
		snapshot.Repositories = append(snapshot.Repositories, res.repos...)
		snapshot.Issues = append(snapshot.Issues, res.issues...)
	}

	a.logger.Debug("Usecase: Collection complete.",
		slog.Int("repositories", len(snapshot.Repositories)),
		slog.Int("issues", len(snapshot.Issues)),
		slog.Int("failures", len(snapshot.Failures)),
	)
	return snapshot, nil
}

// collectOrg fetches one organization. Any error discards everything fetched for it.
func (a *Aggregator) collectOrg(ctx context.Context, org string, want Want) orgResult {
	var res orgResult
	if want&WantRepositories != 0 {
		repos, err := a.fetcher.FetchRepositories(ctx, org)
		if err != nil {
			return orgResult{err: err}
		}
		res.repos = repos
	}
	if want&WantIssues != 0 {
		issues, err := a.fetcher.FetchIssues(ctx, org)
		if err != nil {
			return orgResult{err: err}
		}
		res.issues = issues
	}
	return res
}

func dedupe(orgs []string) []string {
	seen := make(map[string]struct{}, len(orgs))
	out := make([]string, 0, len(orgs))
	for _, org := range orgs {
		if _, ok := seen[org]; ok {
			continue
		}
		seen[org] = struct{}{}
		out = append(out, org)
	}
	return out
}
