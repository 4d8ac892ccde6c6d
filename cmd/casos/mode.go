package main

import (
	"fmt"
	"strings"

	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/alfredjeanlab/casos/internal/ui"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:     "mode",
	Short:   "Show or set the mode sent with every request",
	GroupID: "system",
	Long: `Show or set the application mode.

Every request carries the mode. "validate" works on real cases; "test" works
on the backend's test data set. The mode is kept in the state file and read
again on every request.`,
	// Local file operation; no API client.
	PersistentPreRunE: localPreRun,
}

var modeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := stateStore.Mode()
		if mode == "" {
			mode = model.DefaultMode.String()
		}
		if jsonOutput {
			return printJSON(map[string]string{"mode": mode})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderMode(mode))
		return nil
	},
}

var modeSetCmd = &cobra.Command{
	Use:   "set <validate|test>",
	Short: "Set the mode for subsequent requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := model.Mode(strings.ToLower(strings.TrimSpace(args[0])))
		if !mode.IsValid() {
			return fmt.Errorf("invalid mode %q (must be validate or test)", args[0])
		}
		if err := stateStore.SetMode(mode.String()); err != nil {
			return fmt.Errorf("saving mode: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "mode set to %s\n", mode)
		return nil
	},
}

func init() {
	modeCmd.AddCommand(modeGetCmd)
	modeCmd.AddCommand(modeSetCmd)
}
