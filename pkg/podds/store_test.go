package podds_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/podds/pkg/podds"
)

func openTestStore(t *testing.T) *podds.TrainingStore {
	t.Helper()
	store, err := podds.OpenTrainingStore(filepath.Join(t.TempDir(), "training.db"))
	require.NoError(t, err, "Failed to open training store")
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTrainingStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	row := podds.TrainingRow{
		League:    "premier_league",
		Season:    "2025-2026",
		Features:  map[string]float64{"lambda_home": 1.6, "lambda_away": 1.1, "home_form": 0.7},
		HomeGoals: 2,
		AwayGoals: 1,
	}
	require.NoError(t, store.Insert(row), "Failed to insert training row")

	rows, err := store.Rows("premier_league", "2025-2026")
	require.NoError(t, err, "Failed to read training rows")
	require.Len(t, rows, 1)
	assert.Equal(t, row.League, rows[0].League)
	assert.Equal(t, row.Season, rows[0].Season)
	assert.Equal(t, row.HomeGoals, rows[0].HomeGoals)
	assert.Equal(t, row.AwayGoals, rows[0].AwayGoals)
	assert.Equal(t, row.Features, rows[0].Features)
}

func TestTrainingStoreFiltersByLeagueAndSeason(t *testing.T) {
	store := openTestStore(t)

	insert := func(league, season string) {
		require.NoError(t, store.Insert(podds.TrainingRow{
			League:   league,
			Season:   season,
			Features: map[string]float64{"lambda_home": 1.0, "lambda_away": 1.0},
		}))
	}
	insert("premier_league", "2024-2025")
	insert("premier_league", "2025-2026")
	insert("serie_a", "2025-2026")

	all, err := store.Rows("premier_league", "")
	require.NoError(t, err)
	assert.Len(t, all, 2, "empty season loads every season for the league")

	one, err := store.Rows("premier_league", "2025-2026")
	require.NoError(t, err)
	assert.Len(t, one, 1)

	none, err := store.Rows("bundesliga", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTrainingDataLabels(t *testing.T) {
	store := openTestStore(t)

	scores := [][2]int{{3, 0}, {1, 1}, {0, 2}}
	for _, s := range scores {
		require.NoError(t, store.Insert(podds.TrainingRow{
			League:    "premier_league",
			Season:    "2025-2026",
			Features:  map[string]float64{"lambda_home": 1.5},
			HomeGoals: s[0],
			AwayGoals: s[1],
		}))
	}

	features, labels, err := store.TrainingData("premier_league", "")
	require.NoError(t, err, "Failed to load training data")
	require.Len(t, features, 3)
	assert.ElementsMatch(t, []int{0, 1, 2}, labels, "labels follow the home/draw/away class order")
}

func TestResultClass(t *testing.T) {
	assert.Equal(t, 0, podds.TrainingRow{HomeGoals: 2, AwayGoals: 0}.ResultClass())
	assert.Equal(t, 1, podds.TrainingRow{HomeGoals: 1, AwayGoals: 1}.ResultClass())
	assert.Equal(t, 2, podds.TrainingRow{HomeGoals: 0, AwayGoals: 3}.ResultClass())
}
