package ctxutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActor(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", ActorFromContext(ctx))
	assert.Equal(t, SystemActor, ActorOrSystem(ctx))

	ctx = WithActorID(ctx, "supervisor-2")
	assert.Equal(t, "supervisor-2", ActorFromContext(ctx))
	assert.Equal(t, "supervisor-2", ActorOrSystem(ctx))
}

func TestOrigin(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Origin{}, OriginFromContext(ctx))

	ctx = WithOrigin(ctx, Origin{IP: "10.0.0.4", UserAgent: "atelier-cli"})
	assert.Equal(t, "10.0.0.4", OriginFromContext(ctx).IP)
	assert.Equal(t, "atelier-cli", OriginFromContext(ctx).UserAgent)
}
