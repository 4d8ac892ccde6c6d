package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/alfredjeanlab/casos/internal/ui"
	"github.com/spf13/cobra"
)

// helpRule recolors every match of re in the help text.
type helpRule struct {
	re     *regexp.Regexp
	render func(groups []string) string
}

// wordsPattern matches any of words as a whole word.
func wordsPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}

// helpRules are applied in order. The layout rules come first; the casos
// vocabulary (statuses, verdicts, templates, modes) is colored the way the
// same values are colored in tables.
var helpRules = []helpRule{
	// Group and section headers: "Cases:", "Review:", "Flags:".
	{regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`), func(g []string) string {
		return ui.RenderAccent(g[1])
	}},
	// Command names in the command lists.
	{regexp.MustCompile(`(?m)^(  )(\S+)(  )`), func(g []string) string {
		return g[1] + ui.RenderCommand(g[2]) + g[3]
	}},
	// Flag value types: "--estado string", "--field stringArray".
	{regexp.MustCompile(`(--?\S+\s+)(stringArray|string|float|int|duration)\b`), func(g []string) string {
		return g[1] + ui.RenderMuted(g[2])
	}},
	{regexp.MustCompile(`\(default "[^"]*"\)`), func(g []string) string {
		return ui.RenderMuted(g[0])
	}},
	{wordsPattern(caseStatusWords()...), func(g []string) string {
		return ui.RenderStatus(model.CaseStatus(g[1]))
	}},
	{wordsPattern(string(model.ChecklistCumple), string(model.ChecklistNoCumple), string(model.ChecklistRevisionManual)), func(g []string) string {
		return ui.RenderChecklist(model.ChecklistStatus(g[1]))
	}},
	{wordsPattern(model.TemplateInstruccion.String(), model.TemplateImprocedente.String()), func(g []string) string {
		return ui.RenderAccent(g[1])
	}},
	{wordsPattern(model.ModeValidate.String(), model.ModeTest.String()), func(g []string) string {
		return ui.RenderMode(g[1])
	}},
}

func caseStatusWords() []string {
	return []string{
		model.StatusPendiente.String(),
		model.StatusEnRevision.String(),
		model.StatusResuelto.String(),
		model.StatusCerrado.String(),
	}
}

// colorizedHelpFunc renders cobra's usage text through colorizeHelpOutput
// when the terminal takes colors, and plain otherwise.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}

		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

// colorizeHelpOutput applies helpRules to plain help text. "Usage:" stays
// plain.
func colorizeHelpOutput(s string) string {
	for _, r := range helpRules {
		s = r.re.ReplaceAllStringFunc(s, func(match string) string {
			if match == "Usage:" {
				return match
			}
			return r.render(r.re.FindStringSubmatch(match))
		})
	}
	return s
}
