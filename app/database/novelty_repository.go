package database

import (
	"context"
	"fmt"
)

// NoveltyRepo persists the novelty cache snapshot.
type NoveltyRepo struct {
	db *DB
}

func NewNoveltyRepository(db *DB) *NoveltyRepo {
	return &NoveltyRepo{db: db}
}

func (r *NoveltyRepo) LoadKeys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, `SELECT key FROM novelty_keys ORDER BY key`); err != nil {
		return nil, fmt.Errorf("failed to load novelty keys: %w", err)
	}
	return keys, nil
}

// ReplaceKeys swaps the stored set for keys in one transaction.
func (r *NoveltyRepo) ReplaceKeys(ctx context.Context, keys []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM novelty_keys`); err != nil {
		return fmt.Errorf("failed to clear novelty keys: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT OR IGNORE INTO novelty_keys (key) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range keys {
		if _, err := stmt.ExecContext(ctx, key); err != nil {
			return fmt.Errorf("failed to insert novelty key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit novelty keys: %w", err)
	}
	return nil
}
