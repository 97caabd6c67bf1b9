// Package manifest records dataset builds in a SQLite database: one row per
// run and one row per session the run consumed.
package manifest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/steering.dataset/internal/dataset"
	"github.com/banshee-data/steering.dataset/internal/timeutil"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("manifest: run not found")

var clock timeutil.Clock = timeutil.RealClock{}

// SetClock replaces the time source for run timestamps. Passing nil
// restores the real clock.
func SetClock(c timeutil.Clock) {
	if c == nil {
		c = timeutil.RealClock{}
	}
	clock = c
}

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one invocation of a dataset variant.
type Run struct {
	RunID        string          `json:"run_id"`
	Variant      string          `json:"variant"`
	ColorMode    string          `json:"color_mode"`
	Training     bool            `json:"training"`
	DataDir      string          `json:"data_dir"`
	TargetHeight int             `json:"target_height"`
	TargetWidth  int             `json:"target_width"`
	CountPolicy  string          `json:"count_policy"`
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
	Examples     int             `json:"examples"`
	LabelMean    float64         `json:"label_mean"`
	LabelStdDev  float64         `json:"label_stddev"`
	LabelMin     float64         `json:"label_min"`
	LabelMax     float64         `json:"label_max"`
	ConfigJSON   json.RawMessage `json:"config_json,omitempty"`
	StartedAt    int64           `json:"started_at"`
	FinishedAt   int64           `json:"finished_at"`

	Sessions []SessionRecord `json:"sessions,omitempty"`
}

// SessionRecord is one session pass within a run. A flip-augmented run has
// two records per epoch, mirrored first.
type SessionRecord struct {
	Ordinal       int    `json:"ordinal"`
	Epoch         int    `json:"epoch"`
	Mirror        bool   `json:"mirror"`
	ColorMode     string `json:"color_mode"`
	ProbedFrames  int    `json:"probed_frames"`
	DecodedFrames int    `json:"decoded_frames"`
	LabelRows     int    `json:"label_rows"`
	Examples      int    `json:"examples"`
}

// NewRun starts a run record for v.
func NewRun(v dataset.Variant, dataDir string, cfg dataset.Config) *Run {
	return &Run{
		RunID:        uuid.New().String(),
		Variant:      v.String(),
		ColorMode:    v.ColorMode().String(),
		Training:     v.Training(),
		DataDir:      dataDir,
		TargetHeight: cfg.TargetHeight,
		TargetWidth:  cfg.TargetWidth,
		CountPolicy:  cfg.CountPolicy.String(),
		StartedAt:    clock.Now().UnixNano(),
	}
}

// Finish stamps the run with the build outcome. A nil ds with a non-nil
// err marks the run failed.
func (r *Run) Finish(ds *dataset.Dataset, err error) {
	r.FinishedAt = clock.Now().UnixNano()
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusOK
	if ds == nil {
		return
	}
	sum := ds.Summary()
	r.Examples = ds.Len()
	r.LabelMean, r.LabelStdDev = sum.Mean, sum.StdDev
	r.LabelMin, r.LabelMax = sum.Min, sum.Max
	r.Sessions = make([]SessionRecord, len(ds.Sessions))
	for i, s := range ds.Sessions {
		r.Sessions[i] = SessionRecord{
			Ordinal:       i,
			Epoch:         s.Epoch,
			Mirror:        s.Mirror,
			ColorMode:     s.ColorMode.String(),
			ProbedFrames:  s.ProbedFrames,
			DecodedFrames: s.DecodedFrames,
			LabelRows:     s.LabelRows,
			Examples:      s.Examples,
		}
	}
}

// Store persists runs.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the manifest database at path and
// migrates it to the latest schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// foreign_keys is per connection; a single connection keeps it applied.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA foreign_keys = ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenUnmigrated opens path without touching the schema, for the
// migrate subcommands.
func OpenUnmigrated(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// InsertRun writes run and its sessions in one transaction. An empty RunID
// is filled with a new UUID.
func (s *Store) InsertRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt == 0 {
		run.StartedAt = clock.Now().UnixNano()
	}
	var cfg interface{}
	if len(run.ConfigJSON) > 0 {
		cfg = string(run.ConfigJSON)
	}
	var errText interface{}
	if run.Error != "" {
		errText = run.Error
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO build_runs (
			run_id, variant, color_mode, training, data_dir,
			target_height, target_width, count_policy, status, error,
			examples, label_mean, label_stddev, label_min, label_max,
			config_json, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Variant, run.ColorMode, run.Training, run.DataDir,
		run.TargetHeight, run.TargetWidth, run.CountPolicy, run.Status, errText,
		run.Examples, run.LabelMean, run.LabelStdDev, run.LabelMin, run.LabelMax,
		cfg, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}

	for _, rec := range run.Sessions {
		_, err = tx.Exec(`
			INSERT INTO build_sessions (
				run_id, ordinal, epoch, mirror, color_mode,
				probed_frames, decoded_frames, label_rows, examples
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, rec.Ordinal, rec.Epoch, rec.Mirror, rec.ColorMode,
			rec.ProbedFrames, rec.DecodedFrames, rec.LabelRows, rec.Examples,
		)
		if err != nil {
			return fmt.Errorf("insert session %d of run %s: %w", rec.Ordinal, run.RunID, err)
		}
	}
	return tx.Commit()
}

const runColumns = `
	run_id, variant, color_mode, training, data_dir,
	target_height, target_width, count_policy, status, error,
	examples, label_mean, label_stddev, label_min, label_max,
	config_json, started_at, finished_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var errText, cfg sql.NullString
	var finished sql.NullInt64
	err := row.Scan(
		&r.RunID, &r.Variant, &r.ColorMode, &r.Training, &r.DataDir,
		&r.TargetHeight, &r.TargetWidth, &r.CountPolicy, &r.Status, &errText,
		&r.Examples, &r.LabelMean, &r.LabelStdDev, &r.LabelMin, &r.LabelMax,
		&cfg, &r.StartedAt, &finished,
	)
	if err != nil {
		return nil, err
	}
	r.Error = errText.String
	r.FinishedAt = finished.Int64
	if cfg.Valid {
		r.ConfigJSON = json.RawMessage(cfg.String)
	}
	return &r, nil
}

// GetRun returns a run with its sessions.
func (s *Store) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM build_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.Sessions, err = s.SessionsForRun(runID)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRuns returns the most recent runs first, without sessions. A
// non-positive limit returns every run.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM build_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// SessionsForRun returns the session records of runID in ordinal order.
func (s *Store) SessionsForRun(runID string) ([]SessionRecord, error) {
	rows, err := s.db.Query(`
		SELECT ordinal, epoch, mirror, color_mode,
		       probed_frames, decoded_frames, label_rows, examples
		FROM build_sessions
		WHERE run_id = ?
		ORDER BY ordinal`, runID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(
			&rec.Ordinal, &rec.Epoch, &rec.Mirror, &rec.ColorMode,
			&rec.ProbedFrames, &rec.DecodedFrames, &rec.LabelRows, &rec.Examples,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and, through the foreign key, its sessions.
func (s *Store) DeleteRun(runID string) error {
	res, err := s.db.Exec(`DELETE FROM build_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
