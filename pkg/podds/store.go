package podds

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/richard-senior/podds/internal/logger"
)

// TrainingRow is one historical match as the offline trainers see it: the
// named features that were available before kickoff plus the final score.
type TrainingRow struct {
	League    string
	Season    string
	Features  map[string]float64
	HomeGoals int
	AwayGoals int
}

// ResultClass returns the row's label as an index into SecondaryClasses.
func (r TrainingRow) ResultClass() int {
	switch {
	case r.HomeGoals > r.AwayGoals:
		return 0
	case r.HomeGoals == r.AwayGoals:
		return 1
	default:
		return 2
	}
}

// TrainingStore reads and writes historical feature rows in sqlite. Training
// is offline and single-threaded; the request path never touches this.
type TrainingStore struct {
	db *sql.DB
}

// OpenTrainingStore opens (creating if needed) the sqlite database at path
// and ensures the schema exists.
func OpenTrainingStore(path string) (*TrainingStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open training database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping training database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS training_rows (
		league TEXT NOT NULL,
		season TEXT NOT NULL,
		features TEXT NOT NULL,
		home_goals INTEGER NOT NULL,
		away_goals INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create training schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_training_rows_league_season
		ON training_rows(league, season)`); err != nil {
		logger.Warn("failed to create training index", err)
	}

	logger.Info("training database ready", path)
	return &TrainingStore{db: db}, nil
}

// Close releases the database handle.
func (s *TrainingStore) Close() error {
	return s.db.Close()
}

// Insert persists one training row. Features are stored as a JSON document
// so new features never need schema migrations.
func (s *TrainingStore) Insert(row TrainingRow) error {
	features, err := json.Marshal(row.Features)
	if err != nil {
		return fmt.Errorf("failed to encode features: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO training_rows (league, season, features, home_goals, away_goals) VALUES (?, ?, ?, ?, ?)`,
		row.League, row.Season, string(features), row.HomeGoals, row.AwayGoals,
	)
	if err != nil {
		return fmt.Errorf("failed to insert training row: %w", err)
	}
	return nil
}

// Rows loads the training rows for a league. An empty season loads every
// season.
func (s *TrainingStore) Rows(league, season string) ([]TrainingRow, error) {
	query := `SELECT league, season, features, home_goals, away_goals FROM training_rows WHERE league = ?`
	args := []any{league}
	if season != "" {
		query += ` AND season = ?`
		args = append(args, season)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query training rows: %w", err)
	}
	defer rows.Close()

	var out []TrainingRow
	for rows.Next() {
		var row TrainingRow
		var features string
		if err := rows.Scan(&row.League, &row.Season, &features, &row.HomeGoals, &row.AwayGoals); err != nil {
			return nil, fmt.Errorf("failed to scan training row: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &row.Features); err != nil {
			return nil, fmt.Errorf("failed to decode features: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training rows: %w", err)
	}
	return out, nil
}

// TrainingData loads a league's rows in the shape the trainers take:
// feature maps plus 1X2 class labels in SecondaryClasses order.
func (s *TrainingStore) TrainingData(league, season string) ([]map[string]float64, []int, error) {
	rows, err := s.Rows(league, season)
	if err != nil {
		return nil, nil, err
	}
	features := make([]map[string]float64, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		features[i] = row.Features
		labels[i] = row.ResultClass()
	}
	return features, labels, nil
}
