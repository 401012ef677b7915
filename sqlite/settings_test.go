package sqlite

import (
	"context"
	"testing"

	"github.com/etnz/coinfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Overrides(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.SetOverride(ctx, "btc", 60000))
	require.NoError(t, s.SetOverride(ctx, "BTC", 65000))
	require.NoError(t, s.SetOverride(ctx, "dead", 0))
	assert.ErrorIs(t, s.SetOverride(ctx, "ETH", -1), coinfolio.ErrInvalid)

	got, err := s.Overrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BTC": 65000, "DEAD": 0}, got)

	require.NoError(t, s.ClearOverride(ctx, "dead"))
	got, err = s.Overrides(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"BTC": 65000}, got)
}

func TestStore_Targets(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	require.NoError(t, s.SetTarget(ctx, "eth", 40))
	require.NoError(t, s.SetTarget(ctx, "btc", 50))
	require.NoError(t, s.SetTarget(ctx, "BTC", 60))
	assert.ErrorIs(t, s.SetTarget(ctx, "SOL", 120), coinfolio.ErrInvalid)

	got, err := s.Targets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []coinfolio.TargetAllocation{{Symbol: "BTC", Percent: 60}, {Symbol: "ETH", Percent: 40}}, got)

	require.NoError(t, s.SetTarget(ctx, "ETH", 0))
	got, err = s.Targets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []coinfolio.TargetAllocation{{Symbol: "BTC", Percent: 60}}, got)
}
