package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/spf13/cobra"
)

// stdin is read when a content flag is "-"; tests swap it.
var stdin io.Reader = os.Stdin

var resolutionCmd = &cobra.Command{
	Use:     "resolution",
	Short:   "Draft, preview and clean up case resolutions",
	GroupID: "review",
}

var resolutionGenerateCmd = &cobra.Command{
	Use:   "generate <case-id>",
	Short: "Generate a resolution draft from a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		tmpl, _ := cmd.Flags().GetString("template")
		templateType := model.TemplateType(strings.ToUpper(strings.TrimSpace(tmpl)))
		if !templateType.IsValid() {
			return fmt.Errorf("invalid template %q (must be %s or %s)", tmpl, model.TemplateInstruccion, model.TemplateImprocedente)
		}
		content, err := readContent(cmd, false)
		if err != nil {
			return err
		}

		ctx := context.Background()
		draft, err := casosClient.GenerateResolution(ctx, caseID, templateType, content)
		if err != nil {
			return fmt.Errorf("generating resolution for case %s: %w", caseID, err)
		}
		publishEvent(ctx, events.TopicResolutionGenerated, events.ResolutionGenerated{
			CaseID:       caseID,
			Mode:         currentMode(),
			TemplateType: templateType,
		})

		if jsonOutput {
			return printJSON(draft)
		}
		fmt.Fprintln(stdout, draft.Borrador)
		return nil
	},
}

var resolutionPreviewCmd = &cobra.Command{
	Use:   "preview <case-id>",
	Short: "Render resolution content as a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID := args[0]
		content, err := readContent(cmd, true)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		f, err := casosClient.PreviewResolutionPDF(context.Background(), caseID, content)
		if err != nil {
			return fmt.Errorf("previewing resolution for case %s: %w", caseID, err)
		}
		path, err := savePreview(f, output, "resolucion")
		if err != nil {
			return err
		}
		if path != "" {
			fmt.Fprintf(stdout, "%s (%d bytes)\n", path, len(f.Data))
		}
		return nil
	},
}

var resolutionCleanupCmd = &cobra.Command{
	Use:   "cleanup <case-id>",
	Short: "Delete the temporary PDF previews of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := casosClient.CleanupResolutionPreviews(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("cleaning up previews of case %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(res)
		}
		fmt.Fprintln(stdout, res.Message)
		return nil
	},
}

// readContent returns the resolution text from --content or --content-file
// ("-" reads stdin). When required is false, no content is allowed.
func readContent(cmd *cobra.Command, required bool) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	file, _ := cmd.Flags().GetString("content-file")
	if content != "" && file != "" {
		return "", fmt.Errorf("--content and --content-file are mutually exclusive")
	}
	if file != "" {
		var (
			data []byte
			err  error
		)
		if file == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return "", fmt.Errorf("reading content: %w", err)
		}
		content = string(data)
	}
	if required && strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("resolution content is required (--content or --content-file)")
	}
	return content, nil
}

func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().String("content", "", "resolution text")
	cmd.Flags().String("content-file", "", `file with the resolution text ("-" for stdin)`)
}

func init() {
	resolutionGenerateCmd.Flags().StringP("template", "t", model.TemplateInstruccion.String(), "template (INSTRUCCION or IMPROCEDENTE)")
	addContentFlags(resolutionGenerateCmd)

	addContentFlags(resolutionPreviewCmd)
	resolutionPreviewCmd.Flags().StringP("output", "o", "", `output file ("-" for stdout)`)

	resolutionCmd.AddCommand(resolutionGenerateCmd)
	resolutionCmd.AddCommand(resolutionPreviewCmd)
	resolutionCmd.AddCommand(resolutionCleanupCmd)
}
