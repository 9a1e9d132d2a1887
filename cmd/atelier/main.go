package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/atelier/internal/cli"
	"github.com/example/atelier/internal/version"
	"github.com/example/atelier/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "atelier",
		Short:   "Atelier - assignment lifecycle for the factory floor",
		Version: version.String(),
		Long: `Atelier tracks operator assignments on manufacturing orders, computes
worked time against the work calendar, terminates orders when packing reaches
their target and closes the assignments of absent operators.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("actor", "", "Actor recorded in the audit trail (default: config actor or $USER)")

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.AssignmentCmd())
	rootCmd.AddCommand(cli.OrderCmd())
	rootCmd.AddCommand(cli.CalendarCmd())
	rootCmd.AddCommand(cli.AbsenceCmd())
	rootCmd.AddCommand(cli.AuditCmd())

	err := rootCmd.Execute()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := wire.Shutdown(ctx); shutdownErr != nil {
		fmt.Fprintln(os.Stderr, shutdownErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
