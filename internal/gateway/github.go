// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v84/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/naka-gawa/gitorg/internal/domain"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const defaultPerPage = 100

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchOrganizations(ctx context.Context) ([]domain.Organization, error)
	FetchRepositories(ctx context.Context, org string) ([]domain.Repository, error)
	FetchIssues(ctx context.Context, org string) ([]domain.Issue, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	quota         *quotaRecorder
	perPage       int
	logger        *slog.Logger
}

var _ Fetcher = (*GitHubGateway)(nil)

// Option customizes a GitHubGateway.
type Option func(*gatewayOptions)

type gatewayOptions struct {
	baseURL   string
	transport http.RoundTripper
}

// WithBaseURL points the gateway at a GitHub Enterprise Server REST endpoint
// such as https://ghe.example.com/api/v3/. The GraphQL endpoint is derived from it.
func WithBaseURL(baseURL string) Option {
	return func(o *gatewayOptions) {
		o.baseURL = baseURL
	}
}

// WithTransport replaces the base HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *gatewayOptions) {
		o.transport = rt
	}
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
//
// Requests carry the token as a bearer credential. Every response's quota
// headers are recorded, and a secondary rate limit is surfaced as an error
// instead of being waited out.
func NewGitHubGateway(token domain.Token, logger *slog.Logger, opts ...Option) (*GitHubGateway, error) {
	var o gatewayOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = http.DefaultTransport
	}

	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(o.transport,
		github_ratelimit.WithSingleSleepLimit(0, func(cbContext *github_ratelimit.CallbackContext) {
			logger.Warn("secondary rate limit reached, not retrying", slog.String("url", cbContext.Request.URL.Path))
		}),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create rate limit waiter")
	}
	quota := &quotaRecorder{base: rateLimitWaiter}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.String()})
	transport := &oauth2.Transport{
		Base:   quota,
		Source: ts,
	}

	restClient := github.NewClient(&http.Client{Transport: transport})
	graphqlEndpoint := "https://api.github.com/graphql"
	if o.baseURL != "" {
		baseURL, err := url.Parse(o.baseURL)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid API base URL", goerr.V("base_url", o.baseURL))
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		restClient.BaseURL = baseURL
		graphqlEndpoint = graphqlURL(baseURL)
	}
	graphqlHTTPClient := &http.Client{Transport: &statusTransport{base: transport}}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewEnterpriseClient(graphqlEndpoint, graphqlHTTPClient),
		quota:         quota,
		perPage:       defaultPerPage,
		logger:        logger,
	}, nil
}

// graphqlURL maps a REST base URL to its GraphQL endpoint: GitHub Enterprise
// Server serves REST under /api/v3/ and GraphQL under /api/graphql.
func graphqlURL(restBase *url.URL) string {
	u := *restBase
	if strings.HasSuffix(u.Path, "/api/v3/") {
		u.Path = strings.TrimSuffix(u.Path, "v3/") + "graphql"
	} else {
		u.Path += "graphql"
	}
	return u.String()
}

// viewerOrganizationsQuery lists the organizations of the authenticated user.
type viewerOrganizationsQuery struct {
	Viewer struct {
		Organizations struct {
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Nodes []struct {
				Login        string
				Name         string
				Description  string
				URL          string
				Repositories struct {
					TotalCount int
				} `graphql:"repositories(privacy: PUBLIC)"`
			}
		} `graphql:"organizations(first: 100, after: $cursor)"`
	}
}

// FetchOrganizations returns every organization the token's user belongs to.
func (g *GitHubGateway) FetchOrganizations(ctx context.Context) ([]domain.Organization, error) {
	g.logger.Debug("Fetching organizations using GraphQL API...")
	variables := map[string]interface{}{"cursor": (*githubv4.String)(nil)}
	var orgs []domain.Organization
	for {
		var q viewerOrganizationsQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, classify(goerr.Wrap(err, "failed to execute GraphQL query for organizations"), "")
		}
		for _, node := range q.Viewer.Organizations.Nodes {
			orgURL := node.URL
			if orgURL == "" {
				orgURL = "https://github.com/" + node.Login
			}
			orgs = append(orgs, domain.Organization{
				Login:       node.Login,
				Name:        node.Name,
				Description: node.Description,
				PublicRepos: node.Repositories.TotalCount,
				URL:         orgURL,
			})
		}
		if !q.Viewer.Organizations.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Viewer.Organizations.PageInfo.EndCursor)
		g.logger.Debug("  Fetching next page of organizations...")
	}
	g.logger.Debug("Completed fetching organizations.", slog.Int("count", len(orgs)))
	return orgs, nil
}

// FetchRepositories returns every repository of org, following pagination to the end.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, org string) ([]domain.Repository, error) {
	g.logger.Debug("Fetching repositories using REST API...", slog.String("org", org))
	opts := &github.RepositoryListByOrgOptions{
		Type:        "all",
		Sort:        "full_name",
		ListOptions: github.ListOptions{PerPage: g.perPage},
	}
	fetch := func(ctx context.Context, page int) ([]*github.Repository, *github.Response, error) {
		opts.Page = page
		g.logger.Debug("  Fetching page of repositories...", slog.String("org", org), slog.Int("page", page))
		return g.restClient.Repositories.ListByOrg(ctx, org, opts)
	}

	var repos []domain.Repository
	for page, err := range pages(ctx, g.perPage, fetch) {
		if err != nil {
			return nil, classify(goerr.Wrap(err, "failed to list repositories", goerr.V("org", org)), org)
		}
		for _, r := range page {
			repos = append(repos, toRepository(org, r))
		}
	}
	g.logger.Debug("Completed fetching repositories.", slog.String("org", org), slog.Int("count", len(repos)))
	return repos, nil
}

// FetchIssues returns the open issues of org. Pull requests are dropped.
func (g *GitHubGateway) FetchIssues(ctx context.Context, org string) ([]domain.Issue, error) {
	g.logger.Debug("Fetching issues using REST API...", slog.String("org", org))
	opts := &github.IssueListByOrgOptions{
		Filter:      "all",
		State:       "open",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: g.perPage},
	}
	fetch := func(ctx context.Context, page int) ([]*github.Issue, *github.Response, error) {
		opts.Page = page
		g.logger.Debug("  Fetching page of issues...", slog.String("org", org), slog.Int("page", page))
		return g.restClient.Issues.ListByOrg(ctx, org, opts)
	}

	var issues []domain.Issue
	for page, err := range pages(ctx, g.perPage, fetch) {
		if err != nil {
			return nil, classify(goerr.Wrap(err, "failed to list issues", goerr.V("org", org)), org)
		}
		for _, i := range page {
			if i.IsPullRequest() {
				continue
			}
			issues = append(issues, toIssue(org, i))
		}
	}
	g.logger.Debug("Completed fetching issues.", slog.String("org", org), slog.Int("count", len(issues)))
	return issues, nil
}

// FetchViewer returns the user that owns the token. It is used to validate a new token.
func (g *GitHubGateway) FetchViewer(ctx context.Context) (domain.Viewer, error) {
	user, _, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		return domain.Viewer{}, classify(goerr.Wrap(err, "token validation failed"), "")
	}
	return domain.Viewer{Login: user.GetLogin(), Name: user.GetName()}, nil
}

// FetchRateLimit queries the rate limit status endpoint for the core REST quota.
func (g *GitHubGateway) FetchRateLimit(ctx context.Context) (domain.RateLimit, error) {
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return domain.RateLimit{}, classify(goerr.Wrap(err, "failed to get rate limit"), "")
	}
	core := limits.GetCore()
	if core == nil {
		return domain.RateLimit{}, goerr.New("rate limit response has no core resource")
	}
	return domain.RateLimit{
		Resource:  "core",
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

// LastRate returns the quota reported by the most recent response, if any.
func (g *GitHubGateway) LastRate() (domain.RateLimit, bool) {
	return g.quota.last()
}

func toRepository(org string, r *github.Repository) domain.Repository {
	return domain.Repository{
		Org:        org,
		Name:       r.GetName(),
		Language:   r.GetLanguage(),
		Stars:      r.GetStargazersCount(),
		Forks:      r.GetForksCount(),
		OpenIssues: r.GetOpenIssuesCount(),
		PushedAt:   r.GetPushedAt().Time,
		Archived:   r.GetArchived(),
		Fork:       r.GetFork(),
		URL:        r.GetHTMLURL(),
	}
}

func toIssue(org string, i *github.Issue) domain.Issue {
	repo := i.GetRepository().GetName()
	if repo == "" && i.GetRepositoryURL() != "" {
		repo = path.Base(i.GetRepositoryURL())
	}
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.GetName())
	}
	return domain.Issue{
		Org:         org,
		Repo:        repo,
		Number:      i.GetNumber(),
		Title:       i.GetTitle(),
		Author:      i.GetUser().GetLogin(),
		Labels:      labels,
		Comments:    i.GetComments(),
		CreatedAt:   i.GetCreatedAt().Time,
		UpdatedAt:   i.GetUpdatedAt().Time,
		URL:         i.GetHTMLURL(),
		PullRequest: i.IsPullRequest(),
	}
}
