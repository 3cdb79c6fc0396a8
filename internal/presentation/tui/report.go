package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

// ReportMarkdown renders a validation result as markdown.
func ReportMarkdown(flow *domain.Flow, res validation.WorkflowValidationResult) string {
	var sb strings.Builder
	name := flow.Name
	if name == "" {
		name = flow.ID
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "- **Stage:** %s\n", res.Stage)
	fmt.Fprintf(&sb, "- **Valid:** %t\n", res.IsValid)
	fmt.Fprintf(&sb, "- **Can execute:** %t\n", res.CanExecute)
	fmt.Fprintf(&sb, "- **Nodes:** %d, **connections:** %d\n", len(flow.Nodes), len(flow.Connections))

	section := func(title string, sev validation.Severity) {
		var lines []string
		for _, is := range res.Issues {
			if is.Severity != sev {
				continue
			}
			line := fmt.Sprintf("- `%s` %s", is.Kind, is.Message)
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", title, strings.Join(lines, "\n"))
	}
	section("Errors", validation.SeverityError)
	section("Warnings", validation.SeverityWarning)
	return sb.String()
}

// StageLine is a one-line summary, coloured by stage when colour is enabled.
func StageLine(res validation.WorkflowValidationResult, profile termenv.Profile) string {
	text := fmt.Sprintf("stage: %s (%d errors, %d warnings)", res.Stage, len(res.Errors), len(res.Warnings))
	color := "#ef4444"
	switch res.Stage {
	case validation.StageReady:
		color = "#22c55e"
	case validation.StageConfigure:
		color = "#f59e0b"
	}
	return profile.String(text).Foreground(profile.Color(color)).Bold().String()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintReport writes the report to w. Terminals get glamour-rendered markdown
// and a coloured stage line; anything else gets the raw markdown.
func PrintReport(w io.Writer, flow *domain.Flow, res validation.WorkflowValidationResult) error {
	md := ReportMarkdown(flow, res)
	if !IsTerminal(w) {
		_, err := fmt.Fprintf(w, "%s\n%s\n", md, StageLine(res, termenv.Ascii))
		return err
	}
	out, err := NewRenderer()(md)
	if err != nil {
		out = md
	}
	_, err = fmt.Fprintf(w, "%s%s\n", out, StageLine(res, termenv.ColorProfile()))
	return err
}
