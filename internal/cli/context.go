package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/atelier/internal/ctxutil"
	"github.com/example/atelier/internal/version"
	"github.com/example/atelier/internal/wire"
)

// commandContext returns the command's context carrying the acting user and
// the CLI as origin, both recorded in the audit trail.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	actor := ""
	if f := cmd.Flag("actor"); f != nil {
		actor = f.Value.String()
	}
	if actor == "" {
		actor = wire.Config().Actor
	}
	if actor == "" {
		actor = os.Getenv("USER")
	}
	if actor != "" {
		ctx = ctxutil.WithActorID(ctx, actor)
	}

	return ctxutil.WithOrigin(ctx, ctxutil.Origin{UserAgent: "atelier-cli/" + version.Short()})
}
