// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists curation runs in SQLite and writes the run
// artifacts (CSV tables, expert groups, statistics) to an output directory.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ppi-curator/internal/pipeline"
	"github.com/pdiddy/ppi-curator/pkg/types"
)

// DefaultDBFile is the database file name used when no path is configured.
const DefaultDBFile = "ppi-curator.db"

// ErrNoRuns is returned by LatestRun on an empty store.
var ErrNoRuns = errors.New("no stored runs")

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and its schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			data_dir TEXT,
			config TEXT,
			statistics TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS proteins (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			protein_id TEXT NOT NULL,
			protein_name TEXT,
			protein_size INTEGER,
			annotation TEXT,
			species_id INTEGER,
			length_score REAL,
			annotation_score REAL,
			name_score REAL,
			species_score REAL,
			quality_score REAL,
			PRIMARY KEY (run_id, protein_id)
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			protein1 TEXT NOT NULL,
			protein2 TEXT NOT NULL,
			evidence TEXT,
			combined_score REAL NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_protein1 ON interactions(run_id, protein1)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_protein2 ON interactions(run_id, protein2)`,
		`CREATE TABLE IF NOT EXISTS expert_groups (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			group_position INTEGER NOT NULL,
			group_name TEXT NOT NULL,
			protein_id TEXT NOT NULL,
			PRIMARY KEY (run_id, group_name, protein_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunInfo identifies a stored run.
type RunInfo struct {
	ID        string
	CreatedAt time.Time
	DataDir   string
}

// SaveRun stores res and cfg under a new run id and returns it.
func (s *Store) SaveRun(ctx context.Context, cfg types.CurateConfig, res *pipeline.Result) (string, error) {
	id := uuid.NewString()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	statsJSON, err := json.Marshal(res.Stats)
	if err != nil {
		return "", fmt.Errorf("marshaling statistics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, data_dir, config, statistics) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano), cfg.DataDir, string(cfgJSON), string(statsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	if err := insertProteins(ctx, tx, id, res.Proteins); err != nil {
		return "", err
	}
	if err := insertInteractions(ctx, tx, id, res.Interactions); err != nil {
		return "", err
	}
	if err := insertGroups(ctx, tx, id, res.Groups); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

func insertProteins(ctx context.Context, tx *sql.Tx, runID string, proteins []types.ProteinRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO proteins (run_id, position, protein_id, protein_name, protein_size, annotation, species_id,
			length_score, annotation_score, name_score, species_score, quality_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing protein insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range proteins {
		q := p.Scores
		_, err := stmt.ExecContext(ctx, runID, i, p.ID, p.Name, p.Size, p.Annotation, p.SpeciesID,
			q.Length, q.Annotation, q.Name, q.Species, q.Overall)
		if err != nil {
			return fmt.Errorf("inserting protein %s: %w", p.ID, err)
		}
	}
	return nil
}

func insertInteractions(ctx context.Context, tx *sql.Tx, runID string, interactions []types.InteractionRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO interactions (run_id, position, protein1, protein2, evidence, combined_score)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing interaction insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range interactions {
		var evidence sql.NullString
		if rec.Detailed() {
			data, _ := json.Marshal(rec.Evidence)
			evidence = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, i, rec.Protein1, rec.Protein2, evidence, rec.Combined); err != nil {
			return fmt.Errorf("inserting interaction %s-%s: %w", rec.Protein1, rec.Protein2, err)
		}
	}
	return nil
}

func insertGroups(ctx context.Context, tx *sql.Tx, runID string, groups []types.ExpertGroup) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expert_groups (run_id, group_position, group_name, protein_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing group insert: %w", err)
	}
	defer stmt.Close()

	for i, g := range groups {
		for _, p := range g.Proteins {
			if _, err := stmt.ExecContext(ctx, runID, i, g.Name, p); err != nil {
				return fmt.Errorf("inserting group %s member %s: %w", g.Name, p, err)
			}
		}
	}
	return nil
}

// ListRuns returns every stored run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, data_dir FROM runs ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var created string
		var dataDir sql.NullString
		if err := rows.Scan(&r.ID, &created, &dataDir); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		r.DataDir = dataDir.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently saved run.
func (s *Store) LatestRun(ctx context.Context) (RunInfo, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return RunInfo{}, err
	}
	if len(runs) == 0 {
		return RunInfo{}, ErrNoRuns
	}
	return runs[0], nil
}

// LoadRun reads a stored run back into a pipeline result.
func (s *Store) LoadRun(ctx context.Context, runID string) (*pipeline.Result, error) {
	var statsJSON sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT statistics FROM runs WHERE id = ?`, runID).Scan(&statsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}

	res := &pipeline.Result{Stats: &pipeline.Statistics{}}
	if statsJSON.Valid {
		if err := json.Unmarshal([]byte(statsJSON.String), res.Stats); err != nil {
			return nil, fmt.Errorf("decoding statistics of run %s: %w", runID, err)
		}
	}
	if res.Proteins, err = s.loadProteins(ctx, runID); err != nil {
		return nil, err
	}
	if res.Interactions, err = s.loadInteractions(ctx, runID); err != nil {
		return nil, err
	}
	if res.Groups, err = s.LoadGroups(ctx, runID); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) loadProteins(ctx context.Context, runID string) ([]types.ProteinRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT protein_id, protein_name, protein_size, annotation, species_id,
			length_score, annotation_score, name_score, species_score, quality_score
		 FROM proteins WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying proteins: %w", err)
	}
	defer rows.Close()

	var out []types.ProteinRecord
	for rows.Next() {
		var p types.ProteinRecord
		q := &p.Scores
		if err := rows.Scan(&p.ID, &p.Name, &p.Size, &p.Annotation, &p.SpeciesID,
			&q.Length, &q.Annotation, &q.Name, &q.Species, &q.Overall); err != nil {
			return nil, fmt.Errorf("scanning protein: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) loadInteractions(ctx context.Context, runID string) ([]types.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT protein1, protein2, evidence, combined_score FROM interactions WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var out []types.InteractionRecord
	for rows.Next() {
		var rec types.InteractionRecord
		var evidence sql.NullString
		if err := rows.Scan(&rec.Protein1, &rec.Protein2, &evidence, &rec.Combined); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		if evidence.Valid {
			if err := json.Unmarshal([]byte(evidence.String), &rec.Evidence); err != nil {
				return nil, fmt.Errorf("decoding evidence of %s-%s: %w", rec.Protein1, rec.Protein2, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LoadGroups returns the expert groups of a run in their stored order.
func (s *Store) LoadGroups(ctx context.Context, runID string) ([]types.ExpertGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_position, group_name, protein_id FROM expert_groups
		 WHERE run_id = ? ORDER BY group_position, protein_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying expert groups: %w", err)
	}
	defer rows.Close()

	var out []types.ExpertGroup
	last := -1
	for rows.Next() {
		var pos int
		var name, protein string
		if err := rows.Scan(&pos, &name, &protein); err != nil {
			return nil, fmt.Errorf("scanning expert group: %w", err)
		}
		if pos != last {
			out = append(out, types.ExpertGroup{Name: name})
			last = pos
		}
		g := &out[len(out)-1]
		g.Proteins = append(g.Proteins, protein)
	}
	return out, rows.Err()
}
