package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), &Config{ServiceName: "stockflow"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, span := Start(context.Background(), "unit")
	assert.NotNil(t, ctx)
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}
