package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/naka-gawa/gitorg/internal/config"
	"github.com/naka-gawa/gitorg/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves the handful of REST and GraphQL endpoints the commands use.
type fakeGitHub struct {
	*httptest.Server
	repos     map[string][]map[string]any
	issues    map[string][]map[string]any
	remaining int

	mu       sync.Mutex
	requests []string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{
		repos:     map[string][]map[string]any{},
		issues:    map[string][]map[string]any{},
		remaining: 4999,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"login": "octocat", "name": "The Octocat"})
	})
	mux.HandleFunc("GET /rate_limit", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"resources": map[string]any{
			"core": map[string]any{"limit": 5000, "remaining": f.remaining, "reset": time.Now().Add(time.Hour).Unix()},
		}})
	})
	mux.HandleFunc("GET /orgs/{org}/repos", func(w http.ResponseWriter, r *http.Request) {
		repos, ok := f.repos[r.PathValue("org")]
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, repos)
	})
	mux.HandleFunc("GET /orgs/{org}/issues", func(w http.ResponseWriter, r *http.Request) {
		issues, ok := f.issues[r.PathValue("org")]
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, issues)
	})
	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": map[string]any{"viewer": map[string]any{"organizations": map[string]any{
			"pageInfo": map[string]any{"hasNextPage": false, "endCursor": nil},
			"nodes": []map[string]any{
				{"login": "acme", "name": "Acme Corp", "description": "", "url": "https://github.com/acme", "repositories": map[string]any{"totalCount": 12}},
				{"login": "beta", "name": "", "description": "", "url": "https://github.com/beta", "repositories": map[string]any{"totalCount": 3}},
			},
		}}}})
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.Path)
		f.mu.Unlock()

		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprint(f.remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC).Unix()))
		w.Header().Set("X-RateLimit-Resource", "core")
		switch {
		case r.Header.Get("Authorization") != "Bearer ghp_valid":
			writeError(w, http.StatusUnauthorized, "Bad credentials")
		case f.remaining == 0:
			writeError(w, http.StatusForbidden, "API rate limit exceeded")
		default:
			mux.ServeHTTP(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": message})
}

func repo(name string, stars int, pushedAt time.Time) map[string]any {
	r := map[string]any{"name": name, "stargazers_count": stars, "language": "Go"}
	if !pushedAt.IsZero() {
		r["pushed_at"] = pushedAt.UTC().Format(time.RFC3339)
	}
	return r
}

// writeConfig stores a config pointing at server and returns its path.
func writeConfig(t *testing.T, serverURL string, token domain.Token, orgs ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := &config.Config{}
	cfg.SetToken(token)
	cfg.Defaults.Orgs = orgs
	cfg.API.BaseURL = serverURL + "/"
	require.NoError(t, config.Save(path, cfg))
	return path
}

func runCLI(t *testing.T, stdin io.Reader, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	t.Setenv(config.TokenEnv, "")
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, streams{in: stdin, out: &out, err: &errOut})
	return out.String(), errOut.String(), code
}

func TestRepos_PartialFailure(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["beta"] = []map[string]any{repo("site", 3, time.Now())}
	path := writeConfig(t, gh.URL, "ghp_valid")

	stdout, stderr, code := runCLI(t, nil, "--config", path, "repos", "--org", "acme", "--org", "beta")

	assert.Equal(t, exitNotFound, code)
	assert.Contains(t, stdout, "site")
	assert.Contains(t, stdout, "1 repository(ies) found.")
	assert.Contains(t, stderr, "organization not found: acme")
}

func TestRepos_PartialFailureJSON(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["beta"] = []map[string]any{repo("site", 3, time.Now())}
	path := writeConfig(t, gh.URL, "ghp_valid")

	stdout, stderr, code := runCLI(t, nil, "--config", path, "--json", "repos", "-o", "acme,beta")

	assert.Equal(t, exitNotFound, code)
	var repos []domain.Repository
	require.NoError(t, json.Unmarshal([]byte(stdout), &repos))
	require.Len(t, repos, 1)
	assert.Equal(t, "beta", repos[0].Org)

	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(stderr), &doc))
	assert.Equal(t, map[string]string{"error": "organization not found: acme", "kind": "not_found", "org": "acme"}, doc)
}

func TestRepos_SortAndDefaults(t *testing.T) {
	gh := newFakeGitHub(t)
	now := time.Now()
	gh.repos["acme"] = []map[string]any{
		repo("a", 10, now.Add(-48*time.Hour)),
		repo("b", 50, now.Add(-72*time.Hour)),
		repo("c", 5, now.Add(-24*time.Hour)),
	}
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	testCases := []struct {
		sort     string
		expected []string
	}{
		{sort: "stars", expected: []string{"b", "a", "c"}},
		{sort: "activity", expected: []string{"c", "a", "b"}},
		{sort: "staleness", expected: []string{"b", "a", "c"}},
		{sort: "name", expected: []string{"a", "b", "c"}},
	}
	for _, tc := range testCases {
		t.Run(tc.sort, func(t *testing.T) {
			stdout, _, code := runCLI(t, nil, "--config", path, "--json", "repos", "--sort", tc.sort)
			require.Equal(t, exitOK, code)

			var repos []domain.Repository
			require.NoError(t, json.Unmarshal([]byte(stdout), &repos))
			var got []string
			for _, r := range repos {
				got = append(got, r.Name)
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRepos_TableAgreesWithJSON(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["acme"] = []map[string]any{repo("api", 7, time.Now()), repo("web", 2, time.Time{})}
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	table, _, code := runCLI(t, nil, "--config", path, "repos", "--sort", "name")
	require.Equal(t, exitOK, code)
	jsonOut, _, code := runCLI(t, nil, "--config", path, "--json", "repos", "--sort", "name")
	require.Equal(t, exitOK, code)

	var repos []domain.Repository
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &repos))
	require.Len(t, repos, 2)
	for _, r := range repos {
		assert.Contains(t, table, r.Name)
	}
	assert.Less(t, strings.Index(table, "api"), strings.Index(table, "web"))

	var webRow string
	for _, l := range strings.Split(table, "\n") {
		if strings.HasPrefix(l, "acme  web") {
			webRow = l
		}
	}
	require.NotEmpty(t, webRow)
	assert.Contains(t, webRow, "never")

	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "web", raw[1]["name"])
	pushedAt, ok := raw[1]["pushed_at"]
	require.True(t, ok, "pushed_at is always present")
	assert.Nil(t, pushedAt)
	assert.NotNil(t, raw[0]["pushed_at"])
}

func TestStale_DaysBoundary(t *testing.T) {
	gh := newFakeGitHub(t)
	now := time.Now()
	gh.repos["acme"] = []map[string]any{
		repo("exactly-60", 1, now.Add(-60*24*time.Hour)),
		repo("only-59", 1, now.Add(-59*24*time.Hour)),
	}
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	stdout, _, code := runCLI(t, nil, "--config", path, "stale", "--days", "60")

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "exactly-60")
	assert.NotContains(t, stdout, "only-59")
	assert.Contains(t, stdout, "1 stale repository(ies) found.")
}

func TestIssues(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.remaining = 42
	gh.issues["acme"] = []map[string]any{
		{
			"number": 7, "title": "Crash on start", "user": map[string]any{"login": "octocat"},
			"labels":         []map[string]any{{"name": "bug"}},
			"repository_url": "https://api.github.com/repos/acme/api",
			"created_at":     "2026-10-01T00:00:00Z",
		},
		{
			"number": 8, "title": "Add feature", "pull_request": map[string]any{"url": "https://api.github.com/repos/acme/api/pulls/8"},
			"repository_url": "https://api.github.com/repos/acme/api",
		},
	}
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	stdout, stderr, code := runCLI(t, nil, "--config", path, "issues")

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Open Issues: acme")
	assert.Contains(t, stdout, "Crash on start")
	assert.Contains(t, stdout, "2026-10-01")
	assert.NotContains(t, stdout, "Add feature")
	assert.Contains(t, stdout, "1 open issue(s) found.")
	assert.Contains(t, stderr, "Only 42 API calls remaining")
}

func TestStats(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["acme"] = []map[string]any{repo("a", 10, time.Now()), repo("b", 50, time.Now()), repo("c", 5, time.Now())}
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	stdout, _, code := runCLI(t, nil, "--config", path, "--json", "stats")

	require.Equal(t, exitOK, code)
	var s domain.Stats
	require.NoError(t, json.Unmarshal([]byte(stdout), &s))
	assert.Equal(t, 3, s.TotalRepos)
	assert.Equal(t, 65, s.TotalStars)
	assert.Equal(t, map[string]int{"Go": 3}, s.Languages)
	assert.Equal(t, "b", s.MostStarred.Name)
}

func TestOverview(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["acme"] = []map[string]any{repo("fresh", 1, time.Now()), repo("old", 1, time.Now().Add(-400*24*time.Hour))}
	gh.issues["acme"] = []map[string]any{{"number": 1, "title": "Open question", "repository_url": "https://api.github.com/repos/acme/fresh"}}
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	stdout, _, code := runCLI(t, nil, "--config", path, "overview", "--days", "30")

	require.Equal(t, exitOK, code)
	for _, section := range []string{"Summary", "Top Languages", "Recently Active Repos (<30 days)", "Stale Repos (>=30 days)", "Recent Issues"} {
		assert.Contains(t, stdout, section)
	}
	assert.Contains(t, stdout, "Open question")
}

func TestOrgs_ListsAllWithVerboseQuota(t *testing.T) {
	gh := newFakeGitHub(t)
	path := writeConfig(t, gh.URL, "ghp_valid")

	stdout, stderr, code := runCLI(t, nil, "--config", path, "orgs", "-v")

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Acme Corp")
	assert.Contains(t, stdout, "https://github.com/beta")
	assert.Contains(t, stdout, "2 organization(s) found.")
	assert.Contains(t, stderr, "Rate limit: 4999/5000 remaining (resets at 13:00:00 UTC)")
	assert.NotContains(t, stderr, "ghp_valid", "the token must never reach the log")
}

func TestRepos_AllOrganizationsWhenNoneConfigured(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["acme"] = []map[string]any{repo("api", 1, time.Now())}
	gh.repos["beta"] = []map[string]any{repo("site", 1, time.Now())}
	path := writeConfig(t, gh.URL, "ghp_valid")

	stdout, _, code := runCLI(t, nil, "--config", path, "repos")

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "api")
	assert.Contains(t, stdout, "site")
	assert.Contains(t, gh.requests, "/graphql")
}

func TestErrors(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["acme"] = []map[string]any{}

	testCases := []struct {
		name         string
		config       func(t *testing.T) string
		args         []string
		expectCode   int
		expectStderr string
	}{
		{
			name:         "not authenticated",
			config:       func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.toml") },
			args:         []string{"repos"},
			expectCode:   exitAuth,
			expectStderr: "error: Not authenticated. Run `gitorg auth` first.",
		},
		{
			name:         "rejected token",
			config:       func(t *testing.T) string { return writeConfig(t, gh.URL, "ghp_revoked", "acme") },
			args:         []string{"orgs"},
			expectCode:   exitAuth,
			expectStderr: "gitorg auth",
		},
		{
			name: "malformed config",
			config: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "config.toml")
				require.NoError(t, os.WriteFile(path, []byte("[auth\n"), 0o600))
				return path
			},
			args:         []string{"repos"},
			expectCode:   exitConfig,
			expectStderr: "Configuration error",
		},
		{
			name:         "invalid sort key",
			config:       func(t *testing.T) string { return writeConfig(t, gh.URL, "ghp_valid", "acme") },
			args:         []string{"repos", "--sort", "forks"},
			expectCode:   exitUsage,
			expectStderr: "invalid sort key",
		},
		{
			name:         "unknown command",
			config:       func(t *testing.T) string { return writeConfig(t, gh.URL, "ghp_valid", "acme") },
			args:         []string{"branches"},
			expectCode:   exitUsage,
			expectStderr: "unknown command",
		},
		{
			name:         "negative days",
			config:       func(t *testing.T) string { return writeConfig(t, gh.URL, "ghp_valid", "acme") },
			args:         []string{"stale", "--days", "-1"},
			expectCode:   exitUsage,
			expectStderr: "--days",
		},
		{
			name:         "unreachable server",
			config:       func(t *testing.T) string { return writeConfig(t, "http://127.0.0.1:1", "ghp_valid", "acme") },
			args:         []string{"repos"},
			expectCode:   exitTransport,
			expectStderr: "network error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, code := runCLI(t, nil, append([]string{"--config", tc.config(t)}, tc.args...)...)
			assert.Equal(t, tc.expectCode, code)
			assert.Contains(t, stderr, tc.expectStderr)
			assert.Empty(t, stdout)
			if tc.expectCode == exitUsage {
				assert.Contains(t, stderr, "Run 'gitorg --help' for usage.")
			}
		})
	}
}

func TestErrors_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	stdout, stderr, code := runCLI(t, nil, "--config", path, "--json", "stats")

	assert.Equal(t, exitAuth, code)
	assert.Empty(t, stdout)
	assert.JSONEq(t, `{"error":"Not authenticated. Run `+"`gitorg auth`"+` first.","kind":"auth"}`, stderr)
}

func TestErrors_JSONUsage(t *testing.T) {
	gh := newFakeGitHub(t)
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	stdout, stderr, code := runCLI(t, nil, "--config", path, "--json", "repos", "--sort", "forks")

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stderr), &doc), "stderr must be a single JSON document: %q", stderr)
	assert.Equal(t, kindUsage, doc["kind"])
	assert.Contains(t, doc["error"], "forks")
	assert.NotContains(t, stderr, "--help")
}

func TestRateLimited(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.remaining = 0
	path := writeConfig(t, gh.URL, "ghp_valid", "acme")

	_, stderr, code := runCLI(t, nil, "--config", path, "repos")

	assert.Equal(t, exitRateLimit, code)
	assert.Contains(t, stderr, "Rate limited.")
}

func TestAuth(t *testing.T) {
	gh := newFakeGitHub(t)

	t.Run("flag token is validated and stored", func(t *testing.T) {
		path := writeConfig(t, gh.URL, "", "acme")

		stdout, _, code := runCLI(t, nil, "--config", path, "auth", "--token", "ghp_valid")

		require.Equal(t, exitOK, code)
		assert.Contains(t, stdout, "Authenticated as octocat (The Octocat)")
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, domain.Token("ghp_valid"), cfg.Auth.Token)
		assert.Equal(t, []string{"acme"}, cfg.Defaults.Orgs)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("prompted token from piped input", func(t *testing.T) {
		path := writeConfig(t, gh.URL, "")

		_, stderr, code := runCLI(t, strings.NewReader("  ghp_valid\n"), "--config", path, "auth")

		require.Equal(t, exitOK, code)
		assert.Contains(t, stderr, "Enter your GitHub personal access token")
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, domain.Token("ghp_valid"), cfg.Auth.Token)
	})

	t.Run("invalid token keeps the previous credential", func(t *testing.T) {
		path := writeConfig(t, gh.URL, "ghp_previous")

		_, stderr, code := runCLI(t, nil, "--config", path, "auth", "--token", "ghp_revoked")

		assert.Equal(t, exitAuth, code)
		assert.Contains(t, stderr, "gitorg auth")
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, domain.Token("ghp_previous"), cfg.Auth.Token)
	})

	t.Run("empty token is a usage error", func(t *testing.T) {
		path := writeConfig(t, gh.URL, "")

		_, _, code := runCLI(t, strings.NewReader("\n"), "--config", path, "auth")

		assert.Equal(t, exitUsage, code)
	})
}

func TestConfigFromXDG(t *testing.T) {
	gh := newFakeGitHub(t)
	gh.repos["acme"] = []map[string]any{repo("api", 1, time.Now())}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg := &config.Config{}
	cfg.SetToken("ghp_valid")
	cfg.Defaults.Orgs = []string{"acme"}
	cfg.API.BaseURL = gh.URL + "/"
	require.NoError(t, config.Save(filepath.Join(xdg, "gitorg", "config.toml"), cfg))

	stdout, _, code := runCLI(t, nil, "repos")

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "api")
}

func TestTokenFromEnvironment(t *testing.T) {
	gh := newFakeGitHub(t)
	path := writeConfig(t, gh.URL, "ghp_revoked")
	t.Setenv(config.TokenEnv, "ghp_valid")

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--config", path, "orgs"}, streams{out: &out, err: &errOut})

	require.Equal(t, exitOK, code, errOut.String())
	assert.Contains(t, out.String(), "Acme Corp")
}
