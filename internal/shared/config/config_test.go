package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy_FromEnv(t *testing.T) {
	t.Setenv("POLICY_OPENING_MINIMUM", "75.50")
	t.Setenv("POLICY_INCREMENT_FLOOR", "5")
	t.Setenv("POLICY_INCREMENT_PERCENT", "8")

	cfg := Load()
	policy, err := cfg.DefaultPolicy()
	require.NoError(t, err)

	assert.True(t, policy.OpeningMinimum.Equal(decimal.RequireFromString("75.50")))
	assert.True(t, policy.IncrementFloor.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 8, policy.IncrementPercent)
	assert.Equal(t, int32(2), policy.MinorUnitPlaces)
}

func TestDefaultPolicy_InvalidValueSurfacesError(t *testing.T) {
	t.Setenv("POLICY_OPENING_MINIMUM", "not-a-number")

	cfg := Load()
	_, err := cfg.DefaultPolicy()
	assert.Error(t, err)
}
