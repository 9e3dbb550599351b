package cmd

import (
	"context"
	"log/slog"

	"github.com/naka-gawa/gitorg/internal/gateway"
	"github.com/naka-gawa/gitorg/internal/logging"
	"github.com/naka-gawa/gitorg/internal/usecase"
)

// lowQuota is the remaining-call count below which fan-out commands warn first.
const lowQuota = 100

// collect resolves the organizations to query and fetches what want asks for.
func (a *app) collect(ctx context.Context, gw *gateway.GitHubGateway, flagOrgs []string, want usecase.Want) (*usecase.Snapshot, error) {
	aggregator := usecase.NewAggregator(gw, a.logger)
	orgs, err := aggregator.ResolveOrgs(ctx, flagOrgs, a.cfg.Defaults.Orgs)
	if err != nil {
		return nil, err
	}
	return aggregator.Collect(ctx, orgs, want)
}

// warnIfRateLimited checks the quota before a command that issues many calls.
// A failed check is only logged; the command itself reports real errors.
func (a *app) warnIfRateLimited(ctx context.Context, gw *gateway.GitHubGateway) {
	rate, err := gw.FetchRateLimit(ctx)
	if err != nil {
		logging.From(ctx).Debug("Rate limit check failed", slog.Any("error", err))
		return
	}
	if rate.Remaining < lowQuota {
		a.renderer.Warn("Only %d API calls remaining (resets at %s).", rate.Remaining, rate.Reset.UTC().Format("15:04:05 UTC"))
	}
}
