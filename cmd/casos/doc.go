package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/spf13/cobra"
)

var docCmd = &cobra.Command{
	Use:     "doc",
	Short:   "Reclassify and preview case documents",
	GroupID: "review",
}

var docUpdateCmd = &cobra.Command{
	Use:   "update <case-id> <file-id>",
	Short: "Change the type or display name of a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, fileID := args[0], args[1]
		typ, _ := cmd.Flags().GetString("type")
		name, _ := cmd.Flags().GetString("name")

		docType := model.DocumentType(strings.ToUpper(strings.TrimSpace(typ)))
		if !docType.IsValid() {
			return fmt.Errorf("invalid document type %q (must be one of %s)", typ, strings.Join(documentTypeNames(), ", "))
		}

		ctx := context.Background()
		res, err := casosClient.UpdateDocument(ctx, caseID, fileID, docType, name)
		if err != nil {
			return fmt.Errorf("updating document %s of case %s: %w", fileID, caseID, err)
		}
		publishEvent(ctx, events.TopicDocumentUpdated, events.DocumentUpdated{
			CaseID:           caseID,
			Mode:             currentMode(),
			FileID:           fileID,
			Type:             docType,
			CustomName:       name,
			ChecklistUpdated: res.ChecklistUpdated,
		})

		if jsonOutput {
			return printJSON(res)
		}
		fmt.Fprintln(stdout, res.Message)
		if res.ChecklistUpdated && res.Checklist != nil {
			fmt.Fprintln(stdout)
			printChecklist(stdout, res.Checklist)
		}
		return nil
	},
}

var docPreviewCmd = &cobra.Command{
	Use:   "preview <case-id> <file-id>",
	Short: "Download a rendered preview of a document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, fileID := args[0], args[1]
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		f, err := casosClient.PreviewDocument(context.Background(), caseID, fileID, format)
		if err != nil {
			return fmt.Errorf("previewing document %s of case %s: %w", fileID, caseID, err)
		}
		path, err := savePreview(f, output, "documento")
		if err != nil {
			return err
		}
		if path != "" {
			fmt.Fprintf(stdout, "%s (%d bytes, %s)\n", path, len(f.Data), f.ContentType)
		}
		return nil
	},
}

func documentTypeNames() []string {
	names := make([]string, len(model.DocumentTypes))
	for i, t := range model.DocumentTypes {
		names[i] = t.String()
	}
	return names
}

func init() {
	docUpdateCmd.Flags().StringP("type", "t", "", "document type (required)")
	docUpdateCmd.Flags().String("name", "", "custom display name")
	_ = docUpdateCmd.MarkFlagRequired("type")

	docPreviewCmd.Flags().String("format", "pdf", "preview format")
	docPreviewCmd.Flags().StringP("output", "o", "", `output file ("-" for stdout)`)

	docCmd.AddCommand(docUpdateCmd)
	docCmd.AddCommand(docPreviewCmd)
}
