package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/atelier/internal/ports/primary"
)

// AuditAdapter translates CLI operations to AuditService calls.
type AuditAdapter struct {
	service primary.AuditService
	out     io.Writer
}

// NewAuditAdapter creates a new AuditAdapter with the given service.
func NewAuditAdapter(service primary.AuditService, out io.Writer) *AuditAdapter {
	return &AuditAdapter{
		service: service,
		out:     out,
	}
}

// List prints audit events, newest first. With verbose set the before and
// after images are printed too.
func (a *AuditAdapter) List(ctx context.Context, filters primary.AuditFilters, verbose bool) error {
	events, err := a.service.ListEvents(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list audit events: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(a.out, "No audit events found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-20s %-12s %-7s %-16s %s\n", "RECORDED", "ACTOR", "ACTION", "TABLE", "ROW")
	fmt.Fprintln(a.out, rule)
	for _, e := range events {
		fmt.Fprintf(a.out, "%-20s %-12s %-7s %-16s %d\n",
			e.RecordedAt.Format("2006-01-02 15:04:05"), e.Actor, e.Action, e.Table, e.RowID)
		if verbose {
			if len(e.Before) > 0 {
				fmt.Fprintf(a.out, "    before: %s\n", e.Before)
			}
			if len(e.After) > 0 {
				fmt.Fprintf(a.out, "    after:  %s\n", e.After)
			}
		}
	}
	fmt.Fprintln(a.out)
	return nil
}
