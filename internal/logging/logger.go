// Package logging builds the structured logger used on stderr.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/clog/hooks"
	"github.com/m-mizutani/masq"
	"github.com/naka-gawa/gitorg/internal/domain"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// New returns a logger writing coloured text to w. Verbose lowers the level to debug;
// otherwise only warnings and errors are written.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithType[domain.Token](masq.MaskWithSymbol('*', 8)),
	)

	handler := clog.New(
		clog.WithWriter(w),
		clog.WithLevel(level),
		clog.WithColorMap(&clog.ColorMap{
			Level: map[slog.Level]*color.Color{
				slog.LevelDebug: color.New(color.FgGreen, color.Bold),
				slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
				slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
				slog.LevelError: color.New(color.FgRed, color.Bold),
			},
			LevelDefault: color.New(color.FgBlue, color.Bold),
			Time:         color.New(color.FgWhite),
			Message:      color.New(color.FgHiWhite),
			AttrKey:      color.New(color.FgHiCyan),
			AttrValue:    color.New(color.FgHiWhite),
		}),
		clog.WithAttrHook(hooks.GoErr()),
		clog.WithReplaceAttr(filter),
	)

	return slog.New(handler)
}

type ctxLoggerKey struct{}

// With returns a new context carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger stored in ctx, or a logger that discards everything.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return discard
}
