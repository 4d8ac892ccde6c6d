package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/router"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Render the view bound to an application path",
	Long: `Render the view an application path is bound to, on the terminal.

  /                     case dashboard (query: q, tipo_caso, estado,
                        sort_by, sort_order, page, page_size)
  /caso/<id>            case detail

A full view-server URL is accepted as well.`,
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openPath(context.Background(), casosClient, args[0])
	},
}

func openPath(ctx context.Context, c client.CasosClient, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", raw, err)
	}
	m, ok := router.Resolve(u.EscapedPath())
	if !ok {
		return fmt.Errorf("no view for %q", raw)
	}

	switch m.View {
	case router.Dashboard:
		req, err := client.ParseListQuery(u.Query())
		if err != nil {
			return err
		}
		cases, err := c.ListCases(ctx, req)
		if err != nil {
			return fmt.Errorf("listing cases: %w", err)
		}
		return printCases(cases)
	case router.CasoDetalle:
		id := m.Param("id")
		exp, err := c.GetCase(ctx, id)
		if err != nil {
			return fmt.Errorf("getting case %s: %w", id, err)
		}
		if jsonOutput {
			return printJSON(exp)
		}
		printExpediente(stdout, exp)
		return nil
	}
	return fmt.Errorf("view %s cannot be rendered on the terminal", m.View)
}
