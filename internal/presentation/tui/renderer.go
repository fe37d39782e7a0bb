package tui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Printer writes markdown reports, styled when the output is a terminal.
type Printer struct {
	w      io.Writer
	render func(string) (string, error)
}

// NewPrinter returns a Printer for w. Styling is enabled only when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{w: w}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.render = NewRenderer()
	}
	return p
}

// Print renders markdown to the underlying writer.
func (p *Printer) Print(markdown string) error {
	out := markdown
	if p.render != nil {
		rendered, err := p.render(markdown)
		if err != nil {
			return err
		}
		out = rendered
	}
	_, err := io.WriteString(p.w, out)
	return err
}

// TurnMarkdown summarizes a processed turn.
func TurnMarkdown(res *runtime.TurnResult, diff *domain.SessionDiff) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Turn `%s`\n\n", res.TurnID)
	fmt.Fprintf(&b, "- **Decision:** %s\n", res.Decision.Describe())
	fmt.Fprintf(&b, "- **Position:** `%s`\n", res.Session.Position.Current())
	if res.Transition != nil {
		fmt.Fprintf(&b, "- **Transition:** `%s` -> `%s`\n", res.Transition.Condition, res.Transition.Destination)
	}
	if res.ForcePersist {
		b.WriteString("- **Persist:** forced\n")
	}

	if len(res.Ranked) > 0 {
		b.WriteString("\n")
		b.WriteString(RankingMarkdown(res.Ranked))
	}
	if diff != nil && !diff.IsEmpty() {
		b.WriteString("\n")
		b.WriteString(DiffMarkdown(diff))
	}
	return b.String()
}

// RankingMarkdown renders ranked triggers as a table.
func RankingMarkdown(ranked []domain.RankedTrigger) string {
	var b strings.Builder
	b.WriteString("## Triggers\n\n| # | Trigger | Goal | Score |\n|---|---|---|---|\n")
	for i, r := range ranked {
		fmt.Fprintf(&b, "| %d | %s | %s | %.3f |\n", i+1, r.ID, r.Goal, r.Score)
	}
	return b.String()
}

// DiffMarkdown renders the session changes of a turn.
func DiffMarkdown(d *domain.SessionDiff) string {
	var b strings.Builder
	b.WriteString("## Changes\n\n")
	if d.Position != nil {
		fmt.Fprintf(&b, "- position: `%s` (previous `%s`)\n", d.Position.Current(), d.Position.Previous())
	}
	if d.Topic != nil {
		fmt.Fprintf(&b, "- topic: `%s`\n", *d.Topic)
	}

	names := make([]string, 0, len(d.Slots))
	for name := range d.Slots {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if s := d.Slots[name]; s != nil {
			fmt.Fprintf(&b, "- slot `%s` = `%v`\n", name, s.Value)
		} else {
			fmt.Fprintf(&b, "- slot `%s` removed\n", name)
		}
	}

	if d.Contexts != nil {
		b.WriteString(ContextsMarkdown(d.Contexts))
	}
	return b.String()
}

// ContextsMarkdown lists contexts with their remaining turns.
func ContextsMarkdown(contexts []domain.NLUContext) string {
	var b strings.Builder
	for _, c := range contexts {
		if c.TTL == domain.ContextTTLNever {
			fmt.Fprintf(&b, "- context `%s` (never expires)\n", c.Context)
			continue
		}
		fmt.Fprintf(&b, "- context `%s` (%d turns)\n", c.Context, c.TTL)
	}
	return b.String()
}
