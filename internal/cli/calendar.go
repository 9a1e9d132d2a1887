package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/wire"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Manage the work calendar",
	Long:  "Maintain working days, shifts, overtime windows and breaks",
}

var calendarSetCmd = &cobra.Command{
	Use:   "set [date]",
	Short: "Insert or replace a calendar day",
	Long: `Insert or replace one calendar day.

Examples:
  atelier calendar set 2026-03-04 --shift 08:00-17:00 --break 12:00-13:00
  atelier calendar set 2026-03-05 --shift 08:00-17:00 --overtime 17:00-19:00
  atelier calendar set 2026-04-06 --holiday`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		date, err := calendar.ParseDate(args[0])
		if err != nil {
			return err
		}

		closed, _ := cmd.Flags().GetBool("closed")
		holiday, _ := cmd.Flags().GetBool("holiday")
		day := calendar.Day{Date: date, IsOpen: !closed && !holiday, IsHoliday: holiday}

		for flag, bounds := range map[string][2]**calendar.Clock{
			"shift":    {&day.ShiftStart, &day.ShiftEnd},
			"overtime": {&day.OvertimeStart, &day.OvertimeEnd},
			"break":    {&day.BreakStart, &day.BreakEnd},
		} {
			raw, _ := cmd.Flags().GetString(flag)
			start, end, err := parseClockRange(raw)
			if err != nil {
				return err
			}
			*bounds[0], *bounds[1] = start, end
		}

		return wire.CalendarAdapter().Set(ctx, day)
	},
}

var calendarShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List calendar days (default: current week)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		from, to := weekBounds(time.Now())

		if raw, _ := cmd.Flags().GetString("from"); raw != "" {
			d, err := calendar.ParseDate(raw)
			if err != nil {
				return err
			}
			from = d
		}
		if raw, _ := cmd.Flags().GetString("to"); raw != "" {
			d, err := calendar.ParseDate(raw)
			if err != nil {
				return err
			}
			to = d
		}

		return wire.CalendarAdapter().Show(ctx, from, to)
	},
}

var calendarDurationCmd = &cobra.Command{
	Use:   "duration [start] [end]",
	Short: "Preview the worked duration between two instants",
	Long: `Preview the calendar-aware duration between two instants.

Example:
  atelier calendar duration "2026-03-04 07:30" "2026-03-04 18:00"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		start, err := parseInstant(args[0], time.Now)
		if err != nil {
			return err
		}
		end, err := parseInstant(args[1], time.Now)
		if err != nil {
			return err
		}

		return wire.CalendarAdapter().Duration(ctx, start, end)
	},
}

// CalendarCmd returns the calendar command
func CalendarCmd() *cobra.Command {
	calendarSetCmd.Flags().Bool("closed", false, "Mark the day as not worked")
	calendarSetCmd.Flags().Bool("holiday", false, "Mark the day as a holiday")
	calendarSetCmd.Flags().String("shift", "", "Shift window HH:MM-HH:MM")
	calendarSetCmd.Flags().String("overtime", "", "Overtime window HH:MM-HH:MM")
	calendarSetCmd.Flags().String("break", "", "Break window HH:MM-HH:MM")

	calendarShowCmd.Flags().String("from", "", "First date (YYYY-MM-DD)")
	calendarShowCmd.Flags().String("to", "", "Last date (YYYY-MM-DD)")

	calendarCmd.AddCommand(calendarSetCmd)
	calendarCmd.AddCommand(calendarShowCmd)
	calendarCmd.AddCommand(calendarDurationCmd)

	return calendarCmd
}
