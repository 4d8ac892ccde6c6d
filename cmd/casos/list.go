package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List cases",
	GroupID: "casos",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := listRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		cases, err := casosClient.ListCases(context.Background(), req)
		if err != nil {
			return fmt.Errorf("listing cases: %w", err)
		}
		return printCases(cases)
	},
}

func listRequestFromFlags(cmd *cobra.Command) (*client.ListCasesRequest, error) {
	req := &client.ListCasesRequest{}
	req.Query, _ = cmd.Flags().GetString("query")
	req.CaseType, _ = cmd.Flags().GetString("tipo")
	req.Status, _ = cmd.Flags().GetString("estado")
	req.SortBy, _ = cmd.Flags().GetString("sort-by")
	req.SortOrder, _ = cmd.Flags().GetString("sort-order")
	req.Page, _ = cmd.Flags().GetInt("page")
	req.PageSize, _ = cmd.Flags().GetInt("page-size")
	if req.Page < 0 || req.PageSize < 0 {
		return nil, fmt.Errorf("--page and --page-size must not be negative")
	}
	return req, nil
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("query", "q", "", "free-text filter")
	cmd.Flags().String("tipo", "", "filter by case type (tipo_caso)")
	cmd.Flags().StringP("estado", "s", "", "filter by status (PENDIENTE, EN_REVISION, RESUELTO, CERRADO)")
	cmd.Flags().String("sort-by", "", "sort field")
	cmd.Flags().String("sort-order", "", "asc or desc (default asc, only with --sort-by)")
	cmd.Flags().Int("page", 0, "page number (default 1)")
	cmd.Flags().Int("page-size", 0, "page size (default 100)")
}

func init() {
	addListFlags(listCmd)
}
