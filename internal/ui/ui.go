// Package ui renders compass output for humans. Everything is written to a
// single io.Writer so commands can keep stdout for machine-readable output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/compass/internal/ansi"
	"github.com/papapumpkin/compass/internal/curriculum"
	"github.com/papapumpkin/compass/internal/guidance"
	"github.com/papapumpkin/compass/internal/project"
)

// barWidth is the number of cells in a progress bar.
const barWidth = 20

// Printer writes styled output.
type Printer struct {
	w   io.Writer
	now func() time.Time
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter returns a Printer writing to w.
func NewWithWriter(w io.Writer) *Printer {
	return &Printer{w: w, now: time.Now}
}

// Error prints an error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", styleDanger.Bold(true).Render("error:"), msg)
}

// Success prints a completion message.
func (p *Printer) Success(msg string) {
	fmt.Fprintf(p.w, "%s %s\n", styleSuccess.Render(iconDone), msg)
}

// Info prints a muted informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, styleMuted.Render(msg))
}

// Clear wipes the terminal so the next render starts at the top.
func (p *Printer) Clear() {
	fmt.Fprint(p.w, ansi.ClearScreen+ansi.CursorHome)
}

// Diagnosis renders a full diagnosis: pathway, next actions, velocity,
// forecast and external blockers.
func (p *Printer) Diagnosis(name string, res *guidance.Result) {
	fmt.Fprintf(p.w, "%s  %s %d%%\n",
		styleTitle.Render(name),
		progressBar(res.Progress, barWidth),
		res.Progress)
	fmt.Fprintf(p.w, "%s %s\n\n",
		styleMuted.Render("current stage:"),
		styleCurrent.Render(res.CurrentStageTitle))

	fmt.Fprintln(p.w, styleHeading.Render("Pathway"))
	for _, s := range res.Pathway {
		icon, style := styleMuted.Render(iconWaiting), styleMuted
		switch {
		case s.Complete:
			icon, style = styleSuccess.Render(iconDone), styleSuccess
		case s.Current:
			icon, style = styleCurrent.Render(iconCurrent), styleCurrent
		}
		line := fmt.Sprintf("  %s %-28s %d/%d  %3d%%", icon, style.Render(s.Title), s.Completed, s.Required, s.Percent)
		if !s.Complete && s.RemainingDays != nil {
			line += styleMuted.Render(fmt.Sprintf("  ~%s", days(*s.RemainingDays)))
		}
		fmt.Fprintln(p.w, line)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, styleHeading.Render("Next actions"))
	if len(res.Actions) == 0 {
		fmt.Fprintln(p.w, styleMuted.Render("  (nothing left to do)"))
	}
	for i, a := range res.Actions {
		badge := priorityStyles[string(a.Priority)].Render(strings.ToUpper(string(a.Priority)))
		title := fmt.Sprintf("#%d %s", a.ItemID, a.Title)
		if a.Blocked {
			title = styleMuted.Render(title + " " + iconBlocked)
		}
		fmt.Fprintf(p.w, "  %d. [%s] %s %s\n", i+1, badge, title, styleMuted.Render("("+a.Estimate+")"))
		fmt.Fprintf(p.w, "     %s\n", a.Reason)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%s %s\n", styleHeading.Render("Velocity:"), p.velocity(res.Velocity, res.GeneratedAt))
	fmt.Fprintf(p.w, "%s %s\n", styleHeading.Render("Forecast:"), forecast(res.Forecast))

	if len(res.Blockers) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, styleWarning.Bold(true).Render("Blockers"))
		for _, b := range res.Blockers {
			fmt.Fprintf(p.w, "  %s #%d %s\n", styleWarning.Render(iconWarning), b.ItemID, b.Title)
			if b.Description != "" {
				fmt.Fprintf(p.w, "     %s\n", b.Description)
			}
			if b.Action != "" {
				fmt.Fprintf(p.w, "     %s %s\n", styleMuted.Render("action:"), b.Action)
			}
		}
	}
}

func (p *Printer) velocity(v guidance.Velocity, at time.Time) string {
	if v.LastCompletedAt == nil {
		return styleMuted.Render("no completions yet")
	}
	if at.IsZero() {
		at = p.now()
	}
	return fmt.Sprintf("%.1f items/week %s",
		v.ItemsPerWeek,
		styleMuted.Render("(last completion "+humanize.RelTime(*v.LastCompletedAt, at, "ago", "from now")+")"))
}

func forecast(f guidance.Projection) string {
	if f.Days == nil {
		return styleMuted.Render("unknown until the first completion")
	}
	if *f.Days == 0 {
		return styleSuccess.Render("complete")
	}
	return fmt.Sprintf("%s %s", days(*f.Days), styleMuted.Render("(around "+f.Date.Format("Jan 2, 2006")+")"))
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return humanize.Comma(int64(n)) + " days"
}

// progressBar renders percent as a bar of width cells.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return styleBarFilled.Render(strings.Repeat("█", filled)) +
		styleBarEmpty.Render(strings.Repeat("░", width-filled))
}

// ValidateResult reports the outcome of validating a curriculum directory.
// Warnings do not fail validation.
func (p *Printer) ValidateResult(dir string, itemCount int, errs []curriculum.ValidationError) {
	var hard, warn []curriculum.ValidationError
	for _, e := range errs {
		if e.IsWarning() {
			warn = append(warn, e)
		} else {
			hard = append(hard, e)
		}
	}

	if len(hard) == 0 {
		fmt.Fprintf(p.w, "%s %s: %d item(s), no errors\n",
			styleSuccess.Bold(true).Render(iconDone+" curriculum"), dir, itemCount)
	} else {
		fmt.Fprintf(p.w, "%s %s: %d error(s):\n",
			styleDanger.Bold(true).Render(iconFailed+" curriculum"), dir, len(hard))
		for _, e := range hard {
			fmt.Fprintf(p.w, "  %s %s\n", styleDanger.Render("•"), e.Error())
		}
	}
	for _, e := range warn {
		fmt.Fprintf(p.w, "  %s %s\n", styleWarning.Render(iconWarning), e.Error())
	}
}

// CurriculumShow lists stages and items with their prerequisites.
func (p *Printer) CurriculumShow(c *curriculum.Curriculum) {
	name := c.Name()
	if name == "" {
		name = "curriculum"
	}
	fmt.Fprintf(p.w, "%s %s\n", styleTitle.Render(name), styleMuted.Render("version "+c.Version()))
	g := c.Graph()
	for _, s := range c.Stages() {
		fmt.Fprintf(p.w, "\n%s\n", styleHeading.Render(fmt.Sprintf("%d. %s", s.Index+1, s.Title)))
		for _, it := range s.Items {
			line := fmt.Sprintf("  #%-3d %s", it.ID, it.Title)
			if deps := g.Prerequisites(it.ID); len(deps) > 0 {
				refs := make([]string, len(deps))
				for i, d := range deps {
					refs[i] = fmt.Sprintf("#%d", d.Target)
				}
				line += styleMuted.Render("  ← " + strings.Join(refs, ", "))
			}
			fmt.Fprintln(p.w, line)
		}
	}
	for _, r := range c.BlockerRules() {
		fmt.Fprintf(p.w, "\n%s %s: #%d after %d completion(s)\n",
			styleWarning.Render(iconWarning), r.Name, r.ItemID, r.MinCompleted)
	}
}

// ProjectList prints one line per project.
func (p *Printer) ProjectList(projects []project.Project) {
	if len(projects) == 0 {
		p.Info("no projects")
		return
	}
	for _, pr := range projects {
		fmt.Fprintf(p.w, "%s  %s  %s\n",
			styleMuted.Render(pr.ID),
			styleHeading.Render(pr.Name),
			styleMuted.Render("created "+humanize.RelTime(pr.CreatedAt, p.now(), "ago", "from now")))
	}
}

// ProjectShow lists a project's completion records and requirement
// overrides against the curriculum.
func (p *Printer) ProjectShow(snap project.Snapshot, c *curriculum.Curriculum) {
	fmt.Fprintf(p.w, "%s %s\n", styleTitle.Render(snap.Project.Name), styleMuted.Render(snap.Project.ID))

	fmt.Fprintln(p.w, styleHeading.Render("Completions"))
	if len(snap.Completions) == 0 {
		fmt.Fprintln(p.w, styleMuted.Render("  (none)"))
	}
	for _, comp := range snap.Completions {
		icon := styleMuted.Render(iconWaiting)
		if comp.Complete {
			icon = styleSuccess.Render(iconDone)
		}
		line := fmt.Sprintf("  %s #%-3d %s", icon, comp.ItemID, itemTitle(c, comp.ItemID))
		if comp.CompletedAt != nil {
			line += styleMuted.Render("  " + comp.CompletedAt.Format(time.DateOnly))
		}
		if !comp.Complete {
			line += styleMuted.Render("  (reopened)")
		}
		fmt.Fprintln(p.w, line)
	}

	if len(snap.Overrides) > 0 {
		fmt.Fprintln(p.w, styleHeading.Render("Overrides"))
		for _, id := range c.IDs() {
			required, ok := snap.Overrides[id]
			if !ok {
				continue
			}
			word := "optional"
			if required {
				word = "required"
			}
			fmt.Fprintf(p.w, "  #%-3d %s %s\n", id, itemTitle(c, id), styleMuted.Render(word))
		}
	}
}

func itemTitle(c *curriculum.Curriculum, id int) string {
	if it, ok := c.Item(id); ok {
		return it.Title
	}
	return styleMuted.Render("(not in curriculum)")
}

// Requirements lists global requirement defaults in item order.
func (p *Printer) Requirements(defaults map[int]bool, c *curriculum.Curriculum) {
	if len(defaults) == 0 {
		p.Info("no defaults: every item is required")
		return
	}
	for _, id := range c.IDs() {
		required, ok := defaults[id]
		if !ok {
			continue
		}
		word := styleWarning.Render("optional")
		if required {
			word = styleSuccess.Render("required")
		}
		fmt.Fprintf(p.w, "  #%-3d %s %s\n", id, itemTitle(c, id), word)
	}
}
