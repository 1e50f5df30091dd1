package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fincast/models"
)

func TestPreferencesDefaults(t *testing.T) {
	ps := NewPreferencesService(nil)

	p := ps.Get("client-1")
	assert.Equal(t, "metric", p.UnitSystem)
	assert.Equal(t, models.AlgorithmV2, p.Algorithm)
}

func TestCycleUnitsDeterministicWithWrap(t *testing.T) {
	ps := NewPreferencesService(nil)

	// metric -> imperial -> nautical -> metric
	assert.Equal(t, "imperial", ps.CycleUnits("c").UnitSystem)
	assert.Equal(t, "nautical", ps.CycleUnits("c").UnitSystem)
	assert.Equal(t, "metric", ps.CycleUnits("c").UnitSystem)
	assert.Equal(t, "imperial", ps.CycleUnits("c").UnitSystem)
}

func TestNextUnitSystem(t *testing.T) {
	assert.Equal(t, "imperial", NextUnitSystem("metric"))
	assert.Equal(t, "nautical", NextUnitSystem("imperial"))
	assert.Equal(t, "metric", NextUnitSystem("nautical"))
	assert.Equal(t, "metric", NextUnitSystem("furlongs"))
}

func TestPutPreferencesValidation(t *testing.T) {
	ps := NewPreferencesService(nil)

	_, err := ps.Put("c", &models.Preferences{UnitSystem: "cubits"})
	assert.Error(t, err)

	_, err = ps.Put("c", &models.Preferences{Algorithm: "v9"})
	assert.Error(t, err)

	updated, err := ps.Put("c", &models.Preferences{UnitSystem: "imperial", Algorithm: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "imperial", updated.UnitSystem)
	assert.Equal(t, models.AlgorithmV1, updated.Algorithm)
}

func TestPutPreferencesPartialUpdateKeepsFields(t *testing.T) {
	ps := NewPreferencesService(nil)

	_, err := ps.Put("c", &models.Preferences{
		UnitSystem:    "nautical",
		Algorithm:     "v1",
		ReportWidgets: []string{"wind", "tides"},
	})
	require.NoError(t, err)

	// Empty unit system and nil widgets keep the stored values
	updated, err := ps.Put("c", &models.Preferences{Algorithm: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "nautical", updated.UnitSystem)
	assert.Equal(t, []string{"wind", "tides"}, updated.ReportWidgets)
	assert.Equal(t, models.AlgorithmV2, updated.Algorithm)
}
