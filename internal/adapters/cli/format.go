package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/example/atelier/internal/ports/primary"
)

const instantFormat = "2006-01-02 15:04"

const rule = "────────────────────────────────────────────────────────────────"

func stateBadge(a *primary.Assignment) string {
	if a.State() == primary.AssignmentOpen {
		return color.New(color.FgGreen).Sprint("open  ")
	}
	return color.New(color.FgBlue).Sprint("closed")
}

func orderBadge(status string) string {
	if status == "terminated" {
		return color.New(color.FgBlue).Sprint(status)
	}
	return color.New(color.FgGreen).Sprint(status)
}

// formatSeconds renders a duration as hours and minutes, e.g. 8h05m.
func formatSeconds(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%dh%02dm", int64(d.Hours()), int64(d.Minutes())%60)
}

func formatOptional(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
