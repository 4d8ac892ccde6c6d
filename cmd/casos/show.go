package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <case-id>",
	Short:   "Show a case file",
	GroupID: "casos",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		exp, err := casosClient.GetCase(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting case %s: %w", id, err)
		}
		if jsonOutput {
			return printJSON(exp)
		}
		printExpediente(stdout, exp)
		return nil
	},
}
