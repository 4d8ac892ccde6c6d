package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/spf13/cobra"
)

var checklistCmd = &cobra.Command{
	Use:     "checklist",
	Short:   "Review the verification checklist of a case",
	GroupID: "review",
}

var checklistShowCmd = &cobra.Command{
	Use:   "show <case-id>",
	Short: "Show the checklist of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exp, err := casosClient.GetCase(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("getting case %s: %w", args[0], err)
		}
		if exp.Checklist == nil {
			return fmt.Errorf("case %s has no checklist", args[0])
		}
		if jsonOutput {
			return printJSON(exp.Checklist)
		}
		printChecklist(stdout, exp.Checklist)
		return nil
	},
}

var checklistValidateCmd = &cobra.Command{
	Use:   "validate <case-id> <item-id>",
	Short: "Mark a checklist item as validated by the reviewer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setChecklistItem(args[0], args[1], true)
	},
}

var checklistInvalidateCmd = &cobra.Command{
	Use:   "invalidate <case-id> <item-id>",
	Short: "Clear the reviewer validation of a checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setChecklistItem(args[0], args[1], false)
	},
}

func setChecklistItem(caseID, itemID string, validated bool) error {
	ctx := context.Background()
	res, err := casosClient.UpdateChecklistItem(ctx, caseID, itemID, validated)
	if err != nil {
		return fmt.Errorf("updating checklist item %s of case %s: %w", itemID, caseID, err)
	}
	publishEvent(ctx, events.TopicChecklistUpdated, events.ChecklistUpdated{
		CaseID:    caseID,
		Mode:      currentMode(),
		ItemID:    itemID,
		Validated: validated,
	})

	if jsonOutput {
		return printJSON(res)
	}
	fmt.Fprintln(stdout, res.Message)
	return nil
}

func init() {
	checklistCmd.AddCommand(checklistShowCmd)
	checklistCmd.AddCommand(checklistValidateCmd)
	checklistCmd.AddCommand(checklistInvalidateCmd)
}
