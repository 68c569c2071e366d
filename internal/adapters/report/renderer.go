// Package report renders build, collection and status summaries for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

// Renderer writes human-readable summaries to one writer.
type Renderer struct {
	w io.Writer

	title   lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	cached  lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
}

// NewRenderer creates a Renderer for w. A nil w writes to stdout.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}

	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile())

	return &Renderer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(style.Ember),
		ok:      r.NewStyle().Foreground(style.Green),
		failed:  r.NewStyle().Foreground(style.Red),
		cached:  r.NewStyle().Foreground(style.Ash).Faint(true),
		muted:   r.NewStyle().Foreground(style.Ash),
		warning: r.NewStyle().Foreground(style.Yellow),
	}
}

// Batch prints one line per reported target, the totals, and the captured output of every
// reported failure.
func (r *Renderer) Batch(report domain.BatchReport) {
	var b strings.Builder

	b.WriteString(r.title.Render("Build summary") + "\n")

	width := 0
	for _, t := range report.Targets {
		width = max(width, len(t.Name))
	}

	for _, t := range report.Targets {
		name := t.Name + strings.Repeat(" ", width-len(t.Name))
		dur := r.muted.Render(formatDuration(t.Duration))
		switch {
		case t.Failed():
			b.WriteString(r.failed.Render(style.Cross+" "+name+"  "+t.State.String()) + "  " + dur + "\n")
		case t.CacheHit:
			b.WriteString(r.cached.Render(style.Reuse+" "+name+"  "+t.CacheKey+" cached") + "  " + dur + "\n")
		default:
			b.WriteString(r.ok.Render(style.Check+" "+name+"  "+t.CacheKey) + "  " + dur + "\n")
		}
	}

	totals := fmt.Sprintf("%d linked, %d failed", report.Linked(), len(report.Failures))
	if report.TimedOut > 0 {
		totals += fmt.Sprintf(", %d timed out", report.TimedOut)
	}
	b.WriteString("\n" + totals + "\n")

	if report.Unreported > 0 {
		b.WriteString(r.warning.Render(fmt.Sprintf(
			"%s %d targets not reported after %d failures", style.Warning, report.Unreported, len(report.Failures),
		)) + "\n")
	}

	for _, f := range report.Failures {
		b.WriteString("\n" + r.failed.Render(fmt.Sprintf("── %s (%s, exit %d)", f.Name, f.State, exitCode(f))) + "\n")
		out := strings.TrimRight(f.FailureOutput(), "\n")
		if out == "" {
			out = "(no output)"
		}
		for _, line := range strings.Split(out, "\n") {
			b.WriteString("   " + line + "\n")
		}
	}

	_, _ = io.WriteString(r.w, b.String())
}

// GC prints the outcome of a link cache collection.
func (r *Renderer) GC(stats domain.GCStats, dryRun bool) {
	var b strings.Builder

	heading := "Link cache"
	verb := "Removed"
	if dryRun {
		heading += " (dry run)"
		verb = "Would remove"
	}
	b.WriteString(r.title.Render(heading) + "\n")

	for _, e := range stats.Removed {
		b.WriteString(r.muted.Render(fmt.Sprintf("- %s  %s", displayName(e), humanize.IBytes(uint64(e.SizeBytes)))) + "\n") //nolint:gosec // Sizes are non-negative
	}

	fmt.Fprintf(&b, "%s %d files (%s), kept %d files (%s)\n",
		verb,
		stats.FilesRemoved, humanize.IBytes(uint64(stats.BytesFreed)), //nolint:gosec // Sizes are non-negative
		stats.FilesKept, humanize.IBytes(uint64(stats.BytesKept)), //nolint:gosec // Sizes are non-negative
	)

	_, _ = io.WriteString(r.w, b.String())
}

// Status prints the state of the shared artifacts and the link cache.
func (r *Renderer) Status(s domain.StatusReport) {
	var b strings.Builder

	b.WriteString(r.title.Render("kiln status") + "\n")
	fmt.Fprintf(&b, "root       %s\nbuild dir  %s\ntargets    %d\ntracked    %d files\n\n",
		s.Root, s.BuildDir, s.Targets, s.Fingerprints)

	for _, a := range s.Artifacts {
		var state string
		switch {
		case !a.Exists:
			state = r.muted.Render("missing")
		case a.Valid:
			state = r.ok.Render(style.Check + " up to date")
		default:
			state = r.warning.Render(style.Warning + " needs check")
		}
		line := fmt.Sprintf("%-8s %s", a.Name, state)
		if a.Record != nil {
			line += r.muted.Render(fmt.Sprintf("  %d files", a.Record.FileCount))
		}
		b.WriteString(line + "\n")
	}

	c := s.Cache
	fmt.Fprintf(&b, "\nlink cache %d files (%s), %d evictable (%s)\n",
		c.FilesKept+c.FilesRemoved, humanize.IBytes(uint64(c.BytesKept+c.BytesFreed)), //nolint:gosec // Sizes are non-negative
		c.FilesRemoved, humanize.IBytes(uint64(c.BytesFreed)), //nolint:gosec // Sizes are non-negative
	)

	_, _ = io.WriteString(r.w, b.String())
}

func displayName(e domain.LinkCacheEntry) string {
	return e.Subject + "_" + e.CacheKey
}

func exitCode(r domain.TargetResult) int {
	if r.State == domain.StateLinkFailed {
		return r.Link.ExitCode
	}
	return r.Compile.ExitCode
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
