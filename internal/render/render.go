// Package render writes views either as aligned text tables or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/naka-gawa/gitorg/internal/domain"
)

const dateLayout = "2006-01-02"

// Renderer writes views to Out and diagnostics to ErrOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	json   bool

	section *color.Color
	header  *color.Color
	bold    *color.Color
	errTag  *color.Color
	warnTag *color.Color
	okTag   *color.Color
}

// New creates a Renderer. jsonMode selects JSON output; colorMode enables ANSI
// colours in table mode.
func New(out, errOut io.Writer, jsonMode, colorMode bool) *Renderer {
	r := &Renderer{
		out:     out,
		errOut:  errOut,
		json:    jsonMode,
		section: color.New(color.FgCyan, color.Bold),
		header:  color.New(color.Bold),
		bold:    color.New(color.Bold),
		errTag:  color.New(color.FgRed, color.Bold),
		warnTag: color.New(color.FgYellow, color.Bold),
		okTag:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{r.section, r.header, r.bold, r.errTag, r.warnTag, r.okTag} {
		if colorMode && !jsonMode {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// JSON reports whether the renderer is in JSON mode.
func (r *Renderer) JSON() bool {
	return r.json
}

func (r *Renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) sectionHeader(title string) {
	fmt.Fprintf(r.out, "\n%s\n", r.section.Sprint(title))
	fmt.Fprintln(r.out, r.section.Sprint(strings.Repeat("─", len([]rune(title)))))
}

func (r *Renderer) footer(format string, args ...any) {
	fmt.Fprintf(r.out, "\n"+format+"\n", args...)
}

type errorDocument struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Org   string `json:"org,omitempty"`
}

// Error reports err on the error stream, as a JSON object in JSON mode.
func (r *Renderer) Error(err error) {
	if r.json {
		enc := json.NewEncoder(r.errOut)
		_ = enc.Encode(errorDocument{Error: err.Error(), Kind: domain.KindOf(err), Org: domain.OrgOf(err)})
		return
	}
	fmt.Fprintf(r.errOut, "%s %s\n", r.errTag.Sprint("error:"), err)
}

// Warn writes a warning line on the error stream.
func (r *Renderer) Warn(format string, args ...any) {
	fmt.Fprintf(r.errOut, "%s %s\n", r.warnTag.Sprint("warning:"), fmt.Sprintf(format, args...))
}

// Success writes a confirmation line. It goes to the error stream in JSON
// mode so that stdout stays parseable.
func (r *Renderer) Success(format string, args ...any) {
	w := r.out
	if r.json {
		w = r.errOut
	}
	fmt.Fprintf(w, "%s %s\n", r.okTag.Sprint("✓"), fmt.Sprintf(format, args...))
}

// RateLimit reports an API quota on the error stream.
func (r *Renderer) RateLimit(rate domain.RateLimit) {
	reset := "unknown"
	if !rate.Reset.IsZero() {
		reset = rate.Reset.UTC().Format("15:04:05 UTC")
	}
	fmt.Fprintf(r.errOut, "Rate limit: %d/%d remaining (resets at %s)\n", rate.Remaining, rate.Limit, reset)
}
