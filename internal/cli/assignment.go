package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/wire"
)

var assignmentCmd = &cobra.Command{
	Use:     "assignment",
	Aliases: []string{"as"},
	Short:   "Manage assignments (operator work on an order)",
	Long:    "Start, close, edit and inspect operator assignments",
}

var assignmentStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Open an assignment",
	Long: `Open an assignment of an operator on an order.

An operator may hold at most one open assignment per order.

Examples:
  atelier assignment start --operator 7 --order 3 --workstation 2 --article 11
  atelier assignment start --operator 7 --order 3 --workstation 2 --article 11 --at "2026-03-04 07:30"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		at, _ := cmd.Flags().GetString("at")
		startedAt, err := parseInstant(at, time.Now)
		if err != nil {
			return err
		}

		req := primary.StartAssignmentRequest{StartedAt: startedAt}
		req.OperatorID, _ = cmd.Flags().GetInt64("operator")
		req.OrderID, _ = cmd.Flags().GetInt64("order")
		req.WorkstationID, _ = cmd.Flags().GetInt64("workstation")
		req.ArticleID, _ = cmd.Flags().GetInt64("article")
		req.Comment, _ = cmd.Flags().GetString("comment")
		if cmd.Flags().Changed("week") {
			week, _ := cmd.Flags().GetInt64("week")
			req.WeekID = &week
		}

		return wire.AssignmentAdapter().Start(ctx, req)
	},
}

var assignmentCloseCmd = &cobra.Command{
	Use:   "close [assignment-id]",
	Short: "Close an assignment",
	Long: `Close an open assignment. The worked duration is computed against the
work calendar between the start and the end instant.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		id, err := parseID(args[0], "assignment")
		if err != nil {
			return err
		}
		at, _ := cmd.Flags().GetString("at")
		endedAt, err := parseInstant(at, time.Now)
		if err != nil {
			return err
		}

		req := primary.CloseAssignmentRequest{AssignmentID: id, EndedAt: endedAt}
		if cmd.Flags().Changed("quantity") {
			qty, _ := cmd.Flags().GetInt64("quantity")
			req.QuantityProduced = &qty
		}

		return wire.AssignmentAdapter().Close(ctx, req)
	},
}

var assignmentUpdateCmd = &cobra.Command{
	Use:   "update [assignment-id]",
	Short: "Edit quantity, overtime or comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		id, err := parseID(args[0], "assignment")
		if err != nil {
			return err
		}

		req := primary.UpdateAssignmentRequest{AssignmentID: id}
		if cmd.Flags().Changed("quantity") {
			qty, _ := cmd.Flags().GetInt64("quantity")
			req.QuantityProduced = &qty
		}
		if cmd.Flags().Changed("overtime") {
			raw, _ := cmd.Flags().GetString("overtime")
			hours, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid overtime %q: %w", raw, err)
			}
			req.OvertimeHours = &hours
		}
		if cmd.Flags().Changed("comment") {
			comment, _ := cmd.Flags().GetString("comment")
			req.Comment = &comment
		}

		return wire.AssignmentAdapter().Update(ctx, req)
	},
}

var assignmentShowCmd = &cobra.Command{
	Use:   "show [assignment-id]",
	Short: "Show assignment details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		id, err := parseID(args[0], "assignment")
		if err != nil {
			return err
		}

		_, err = wire.AssignmentAdapter().Show(ctx, id)
		return err
	},
}

var assignmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		var filters primary.AssignmentFilters
		filters.OperatorID, _ = cmd.Flags().GetInt64("operator")
		filters.OrderID, _ = cmd.Flags().GetInt64("order")
		filters.OpenOnly, _ = cmd.Flags().GetBool("open")
		filters.Limit, _ = cmd.Flags().GetInt("limit")

		return wire.AssignmentAdapter().List(ctx, filters)
	},
}

// AssignmentCmd returns the assignment command
func AssignmentCmd() *cobra.Command {
	assignmentStartCmd.Flags().Int64("operator", 0, "Operator ID")
	assignmentStartCmd.Flags().Int64("order", 0, "Order ID")
	assignmentStartCmd.Flags().Int64("workstation", 0, "Workstation ID")
	assignmentStartCmd.Flags().Int64("article", 0, "Article ID")
	assignmentStartCmd.Flags().Int64("week", 0, "Planning week ID")
	assignmentStartCmd.Flags().String("at", "now", "Start instant (YYYY-MM-DD HH:MM)")
	assignmentStartCmd.Flags().StringP("comment", "c", "", "Comment")
	for _, name := range []string{"operator", "order", "workstation", "article"} {
		_ = assignmentStartCmd.MarkFlagRequired(name)
	}

	assignmentCloseCmd.Flags().String("at", "now", "End instant (YYYY-MM-DD HH:MM)")
	assignmentCloseCmd.Flags().Int64P("quantity", "q", 0, "Quantity produced")

	assignmentUpdateCmd.Flags().Int64P("quantity", "q", 0, "Quantity produced")
	assignmentUpdateCmd.Flags().String("overtime", "", "Overtime hours, e.g. 1.5")
	assignmentUpdateCmd.Flags().StringP("comment", "c", "", "Comment")

	assignmentListCmd.Flags().Int64("operator", 0, "Filter by operator")
	assignmentListCmd.Flags().Int64("order", 0, "Filter by order")
	assignmentListCmd.Flags().Bool("open", false, "Only open assignments")
	assignmentListCmd.Flags().IntP("limit", "n", 0, "Maximum rows")

	assignmentCmd.AddCommand(assignmentStartCmd)
	assignmentCmd.AddCommand(assignmentCloseCmd)
	assignmentCmd.AddCommand(assignmentUpdateCmd)
	assignmentCmd.AddCommand(assignmentShowCmd)
	assignmentCmd.AddCommand(assignmentListCmd)

	return assignmentCmd
}
