package auction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolvePolicy_MissingFieldsFallToDefaults(t *testing.T) {
	defaults := PolicyConfig{
		OpeningMinimum:   decimal.NewFromInt(50),
		IncrementFloor:   decimal.NewFromInt(10),
		IncrementPercent: 10,
		MinorUnitPlaces:  2,
	}

	got := ResolvePolicy(defaults, nil, nil, nil, nil)
	assert.Equal(t, defaults, got)
}

func TestResolvePolicy_EventValuesOverrideDefaults(t *testing.T) {
	defaults := PolicyConfig{
		OpeningMinimum:   decimal.NewFromInt(50),
		IncrementFloor:   decimal.NewFromInt(10),
		IncrementPercent: 10,
		MinorUnitPlaces:  2,
	}

	opening := decimal.NewFromInt(200)
	percent := 5

	got := ResolvePolicy(defaults, &opening, nil, &percent, nil)

	assert.True(t, got.OpeningMinimum.Equal(decimal.NewFromInt(200)))
	assert.True(t, got.IncrementFloor.Equal(decimal.NewFromInt(10)), "campo ausente mantém o default")
	assert.Equal(t, 5, got.IncrementPercent)
	assert.Equal(t, int32(2), got.MinorUnitPlaces)
}
