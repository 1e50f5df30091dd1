package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStationRepo(t *testing.T) *StationRepository {
	t.Helper()

	repo, err := NewStationRepository(filepath.Join(t.TempDir(), "stations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestStationRepositorySeedsCatalog(t *testing.T) {
	repo := newTestStationRepo(t)

	stations, err := repo.Nearby(49.28, -123.12, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(stations), 10, "fresh database is seeded")
}

func TestNearestFindsSeattleStation(t *testing.T) {
	repo := newTestStationRepo(t)

	station, err := repo.Nearest(47.60, -122.34)
	require.NoError(t, err)
	assert.Equal(t, "9447130", station.ID)
	assert.Equal(t, "Seattle", station.Name)
	assert.Less(t, station.DistanceKm, 10.0)
}

func TestNearbySortedByDistance(t *testing.T) {
	repo := newTestStationRepo(t)

	stations, err := repo.Nearby(49.28, -123.12, 5)
	require.NoError(t, err)
	require.Len(t, stations, 5)

	for i := 1; i < len(stations); i++ {
		assert.LessOrEqual(t, stations[i-1].DistanceKm, stations[i].DistanceKm)
	}
}

func TestGetByID(t *testing.T) {
	repo := newTestStationRepo(t)

	station, err := repo.GetByID("9447130")
	require.NoError(t, err)
	assert.Equal(t, "Seattle", station.Name)

	_, err = repo.GetByID("0000000")
	assert.Error(t, err)
}

func TestHaversineKm(t *testing.T) {
	// Vancouver to Seattle is roughly 190 km
	d := haversineKm(49.2827, -123.1207, 47.6062, -122.3321)
	assert.InDelta(t, 190, d, 15)

	assert.InDelta(t, 0, haversineKm(49, -123, 49, -123), 0.001)
}
