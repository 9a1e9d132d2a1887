package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ports/primary"
	"github.com/example/atelier/internal/wire"
)

var absenceCmd = &cobra.Command{
	Use:   "absence",
	Short: "Report attendance and close assignments of absent operators",
}

var absenceReportCmd = &cobra.Command{
	Use:   "report [operator-id] [date]",
	Short: "Record an attendance entry",
	Long: `Record an attendance entry for an operator. An absence closes every open
assignment of the operator as of the last worked instant before the absent
day. Each assignment is closed on its own; one failure does not undo the others.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		operatorID, err := parseID(args[0], "operator")
		if err != nil {
			return err
		}
		date, err := calendar.ParseDate(args[1])
		if err != nil {
			return err
		}
		present, _ := cmd.Flags().GetBool("present")
		reason, _ := cmd.Flags().GetString("reason")

		return wire.AbsenceAdapter().Report(ctx, primary.ReportAttendanceRequest{
			OperatorID: operatorID,
			Date:       date,
			Absent:     !present,
			Reason:     reason,
		})
	},
}

var absenceHandleCmd = &cobra.Command{
	Use:   "handle [attendance-id]",
	Short: "Re-run the absence cascade for an attendance record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		id, err := parseID(args[0], "attendance")
		if err != nil {
			return err
		}

		return wire.AbsenceAdapter().Handle(ctx, id)
	},
}

var absenceConsumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume attendance reports from the Redis absence stream",
	Long: `Run a consumer group reader on the configured absence stream until
interrupted. Requires redis.addr. When metrics.addr is set, Prometheus
metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		consumer, err := wire.AbsenceConsumer()
		if err != nil {
			return err
		}

		if addr := wire.Config().Metrics.Addr; addr != "" {
			srv := serveMetrics(addr, wire.Logger())
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		return consumer.Run(ctx)
	},
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// AbsenceCmd returns the absence command
func AbsenceCmd() *cobra.Command {
	absenceReportCmd.Flags().Bool("present", false, "Record presence instead of absence")
	absenceReportCmd.Flags().StringP("reason", "r", "", "Reason for the absence")

	absenceCmd.AddCommand(absenceReportCmd)
	absenceCmd.AddCommand(absenceHandleCmd)
	absenceCmd.AddCommand(absenceConsumeCmd)

	return absenceCmd
}
