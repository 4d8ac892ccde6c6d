package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:     "close <case-id>",
	Short:   "Close a case with its final resolution",
	GroupID: "review",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		content, err := readContent(cmd, true)
		if err != nil {
			return err
		}

		ctx := context.Background()
		res, err := casosClient.CloseCase(ctx, caseID, content)
		if err != nil {
			return fmt.Errorf("closing case %s: %w", caseID, err)
		}
		publishEvent(ctx, events.TopicCaseClosed, events.CaseClosed{
			CaseID:           caseID,
			Mode:             currentMode(),
			Estado:           res.Estado,
			FechaCierre:      res.FechaCierre,
			ResolucionFileID: res.ResolucionFileID,
		})

		if jsonOutput {
			return printJSON(res)
		}
		fmt.Fprintf(stdout, "%s (%s, %s)\n", res.Message, res.Estado, res.FechaCierre)
		return nil
	},
}

func init() {
	addContentFlags(closeCmd)
}
