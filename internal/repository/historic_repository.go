package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go-motion-inspector/pkg/models"
)

const historicSchema = `
CREATE TABLE IF NOT EXISTS motion_historic (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	motion_id INTEGER NOT NULL,
	path TEXT NOT NULL,
	name TEXT NOT NULL,
	taken_at INTEGER NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	square_x INTEGER NOT NULL,
	square_y INTEGER NOT NULL,
	diffs TEXT NOT NULL,
	diff_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_motion_historic_taken ON motion_historic(taken_at);
`

// DefaultHistoricLimit caps List when no limit is given
const DefaultHistoricLimit = 100

type sqliteHistoricRepository struct {
	db *sql.DB
}

// NewSQLiteHistoricRepository opens (and creates) the historic database at path
func NewSQLiteHistoricRepository(path string) (HistoricRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open historic database: %w", err)
	}
	// A single connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(historicSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create historic schema: %w", err)
	}
	return &sqliteHistoricRepository{db: db}, nil
}

func (r *sqliteHistoricRepository) Add(ctx context.Context, item models.HistoricItem) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO motion_historic (motion_id, path, name, taken_at, width, height, square_x, square_y, diffs, diff_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.MotionID, item.Path, item.Name, item.TakenAt.UnixMilli(),
		item.Width, item.Height, item.SquareX, item.SquareY, item.Diffs, item.DiffCount,
	)
	if err != nil {
		return 0, fmt.Errorf("insert historic item: %w", err)
	}
	return res.LastInsertId()
}

func (r *sqliteHistoricRepository) List(ctx context.Context, limit int) ([]models.HistoricItem, error) {
	if limit <= 0 {
		limit = DefaultHistoricLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, motion_id, path, name, taken_at, width, height, square_x, square_y, diffs, diff_count
		 FROM motion_historic ORDER BY taken_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query historic: %w", err)
	}
	defer rows.Close()

	items := make([]models.HistoricItem, 0)
	for rows.Next() {
		var item models.HistoricItem
		var takenAt int64
		if err := rows.Scan(&item.ID, &item.MotionID, &item.Path, &item.Name, &takenAt,
			&item.Width, &item.Height, &item.SquareX, &item.SquareY, &item.Diffs, &item.DiffCount); err != nil {
			return nil, fmt.Errorf("scan historic: %w", err)
		}
		item.TakenAt = time.UnixMilli(takenAt)
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *sqliteHistoricRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM motion_historic`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count historic: %w", err)
	}
	return n, nil
}

func (r *sqliteHistoricRepository) Close() error {
	return r.db.Close()
}
