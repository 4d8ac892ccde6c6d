package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:     "context <case-id>",
	Short:   "Update the claimant and case data of a case",
	GroupID: "review",
	Long: `Update the unified context of a case.

Claimant fields are set with --field key=value (for example
--field email=ana@example.cl --field commune=Maipú). Case-level fields have
their own flags. --file sends a JSON object as-is and cannot be combined with
the other flags.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		updates, err := contextUpdatesFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx := context.Background()
		res, err := casosClient.UpdateUnifiedContext(ctx, caseID, updates)
		if err != nil {
			return fmt.Errorf("updating context of case %s: %w", caseID, err)
		}
		publishEvent(ctx, events.TopicContextUpdated, events.ContextUpdated{
			CaseID: caseID,
			Mode:   currentMode(),
			Fields: fieldNames(updates),
		})

		if jsonOutput {
			return printJSON(res)
		}
		fmt.Fprintln(stdout, res.Message)
		return nil
	},
}

// contextUpdatesFromFlags builds the request body. The result is always a
// JSON object.
func contextUpdatesFromFlags(cmd *cobra.Command) (map[string]any, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		for _, name := range []string{"field", "materia", "monto", "empresa", "fecha-ingreso"} {
			if cmd.Flags().Changed(name) {
				return nil, fmt.Errorf("--file cannot be combined with --%s", name)
			}
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		var updates map[string]any
		if err := json.Unmarshal(data, &updates); err != nil {
			return nil, fmt.Errorf("%s must hold a JSON object: %w", file, err)
		}
		if len(updates) == 0 {
			return nil, fmt.Errorf("%s holds no updates", file)
		}
		return updates, nil
	}

	var u model.ContextUpdate
	fields, _ := cmd.Flags().GetStringArray("field")
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q (want key=value)", f)
		}
		if u.UnifiedContext == nil {
			u.UnifiedContext = map[string]any{}
		}
		u.UnifiedContext[key] = value
	}
	if cmd.Flags().Changed("materia") {
		v, _ := cmd.Flags().GetString("materia")
		u.Materia = &v
	}
	if cmd.Flags().Changed("monto") {
		v, _ := cmd.Flags().GetFloat64("monto")
		u.MontoDisputa = &v
	}
	if cmd.Flags().Changed("empresa") {
		v, _ := cmd.Flags().GetString("empresa")
		u.Empresa = &v
	}
	if cmd.Flags().Changed("fecha-ingreso") {
		v, _ := cmd.Flags().GetString("fecha-ingreso")
		u.FechaIngreso = &v
	}

	updates, err := u.Fields()
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("nothing to update; pass --field, --materia, --monto, --empresa, --fecha-ingreso or --file")
	}
	return updates, nil
}

func fieldNames(updates map[string]any) []string {
	names := make([]string, 0, len(updates))
	for k := range updates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func addContextFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("field", nil, "unified_context field as key=value (repeatable)")
	cmd.Flags().String("materia", "", "case subject")
	cmd.Flags().Float64("monto", 0, "disputed amount")
	cmd.Flags().String("empresa", "", "utility company")
	cmd.Flags().String("fecha-ingreso", "", "filing date")
	cmd.Flags().String("file", "", "JSON object to send as-is")
}

func init() {
	addContextFlags(contextCmd)
}
