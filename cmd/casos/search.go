package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Search cases by free text",
	GroupID: "casos",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		cases, err := casosClient.SearchCases(context.Background(), query)
		if err != nil {
			return fmt.Errorf("searching %q: %w", query, err)
		}
		return printCases(cases)
	},
}
