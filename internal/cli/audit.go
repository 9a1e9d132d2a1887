package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/wire"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		var filters primary.AuditFilters
		filters.Table, _ = cmd.Flags().GetString("table")
		filters.RowID, _ = cmd.Flags().GetInt64("row")
		filters.Actor, _ = cmd.Flags().GetString("by")
		filters.Limit, _ = cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		return wire.AuditAdapter().List(ctx, filters, verbose)
	},
}

// AuditCmd returns the audit command
func AuditCmd() *cobra.Command {
	auditListCmd.Flags().String("table", "", "Filter by table (assignments, orders, weekly_plans, calendar_days, attendance)")
	auditListCmd.Flags().Int64("row", 0, "Filter by row ID")
	auditListCmd.Flags().String("by", "", "Filter by actor")
	auditListCmd.Flags().IntP("limit", "n", 50, "Maximum events")
	auditListCmd.Flags().BoolP("verbose", "v", false, "Print before and after images")

	auditCmd.AddCommand(auditListCmd)

	return auditCmd
}
