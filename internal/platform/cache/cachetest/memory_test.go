package cachetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletePatternMatchesPrefix(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SetJSON(ctx, "bom:buildability:1", 3, time.Minute))
	require.NoError(t, m.SetJSON(ctx, "bom:buildability:2", 5, time.Minute))
	require.NoError(t, m.SetJSON(ctx, "products:low-stock:abc", []int{1}, time.Minute))

	require.NoError(t, m.DeletePattern(ctx, "bom:buildability:*"))
	assert.Equal(t, 1, m.Len())

	var v []int
	hit, err := m.GetJSON(ctx, "products:low-stock:abc", &v)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int{1}, v)
}
