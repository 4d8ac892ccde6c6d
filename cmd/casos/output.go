package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/alfredjeanlab/casos/internal/ui"
)

// stdout is where command output goes; tests swap it.
var stdout io.Writer = os.Stdout

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(stdout, string(data))
	return nil
}

func formatMonto(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 0, 64)
}

func printCaseTable(w io.Writer, cases []model.CaseSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CASO\tESTADO\tCLIENTE\tRUT\tMATERIA\tMONTO\tINGRESO")
	for _, c := range cases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.CaseID,
			ui.RenderStatus(c.Status),
			ui.Truncate(c.ClientName, 30),
			c.RutClient,
			ui.Truncate(c.Materia, 40),
			formatMonto(c.MontoDisputa),
			c.FechaIngreso,
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d casos\n", len(cases))
}

func printCases(cases []model.CaseSummary) error {
	if jsonOutput {
		if cases == nil {
			cases = []model.CaseSummary{}
		}
		return printJSON(cases)
	}
	printCaseTable(stdout, cases)
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func printExpediente(w io.Writer, e *model.Expediente) {
	uc := e.UnifiedContext
	fmt.Fprintf(w, "Caso:        %s\n", e.CaseID())
	fmt.Fprintf(w, "Cliente:     %s (%s)\n", uc.ClientName, uc.RutClient)
	fmt.Fprintf(w, "NIS:         %s\n", uc.ServiceNIS)
	fmt.Fprintf(w, "Comuna:      %s\n", uc.Commune)
	if a := deref(uc.AddressStandard); a != "" {
		fmt.Fprintf(w, "Dirección:   %s\n", a)
	}
	if m := deref(e.Materia); m != "" {
		fmt.Fprintf(w, "Materia:     %s\n", m)
	}
	if e.MontoDisputa != nil {
		fmt.Fprintf(w, "Monto:       %s\n", formatMonto(*e.MontoDisputa))
	}
	if emp := deref(e.Empresa); emp != "" {
		fmt.Fprintf(w, "Empresa:     %s\n", emp)
	}
	if f := deref(e.FechaIngreso); f != "" {
		fmt.Fprintf(w, "Ingreso:     %s\n", f)
	}
	if t := e.CompilationMetadata.TipoCaso; t != "" {
		fmt.Fprintf(w, "Tipo:        %s\n", t)
	}

	for _, a := range e.Alertas {
		fmt.Fprintf(w, "%s %s\n", ui.RenderError("!"), a)
	}

	docs := e.DocumentInventory.All()
	if len(docs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Documentos:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, d := range docs {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.FileID, d.Type, d.DisplayName())
		}
		tw.Flush()
	}
	if missing := e.DocumentInventory.Level0Missing; len(missing) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Faltantes:")
		for _, m := range missing {
			fmt.Fprintf(w, "  %s %s\n", m.RequiredType, ui.RenderMuted(m.Description))
		}
	}

	if e.Checklist != nil {
		fmt.Fprintln(w)
		printChecklist(w, e.Checklist)
	}
}

func printChecklist(w io.Writer, c *model.Checklist) {
	fmt.Fprintf(w, "Checklist (%d pendientes):\n", c.Pending())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range c.Groups() {
		fmt.Fprintf(tw, "  %s\n", ui.RenderAccent(g.Name))
		for _, it := range g.Items {
			fmt.Fprintf(tw, "    %s\t%s\t%s\t%s\n", ui.Check(it.Validated), it.ID, ui.RenderChecklist(it.Status), it.Title)
		}
	}
	tw.Flush()
}
