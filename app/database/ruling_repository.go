package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

type RulingRepo struct {
	db *DB
}

func NewRulingRepository(db *DB) *RulingRepo {
	return &RulingRepo{db: db}
}

type rulingRow struct {
	Key         string `db:"key"`
	Number      string `db:"number"`
	Year        string `db:"year"`
	Panel       string `db:"panel"`
	Rapporteur  string `db:"rapporteur"`
	SessionDate string `db:"session_date"`
	Title       string `db:"title"`
	Summary     string `db:"summary"`
	URL         string `db:"url"`
	Themes      string `db:"themes"`
	Subthemes   string `db:"subthemes"`
	Relevance   int    `db:"relevance"`
	Impact      int    `db:"impact"`
	Innovation  int    `db:"innovation"`
}

const rulingColumns = `key, number, year, panel, rapporteur, session_date, title, summary, url,
	themes, subthemes, relevance, impact, innovation`

// UpsertRulings stores the latest fetch window. position keeps upstream order
// within one fetch.
func (r *RulingRepo) UpsertRulings(ctx context.Context, rulings []ruling.Ruling, fetchedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO rulings (`+rulingColumns+`, position, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			number = excluded.number,
			year = excluded.year,
			panel = excluded.panel,
			rapporteur = excluded.rapporteur,
			session_date = excluded.session_date,
			title = excluded.title,
			summary = excluded.summary,
			url = excluded.url,
			themes = excluded.themes,
			subthemes = excluded.subthemes,
			relevance = excluded.relevance,
			impact = excluded.impact,
			innovation = excluded.innovation,
			position = excluded.position,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	fetched := formatTime(fetchedAt)
	for i, item := range rulings {
		themes, err := encodeList(item.Themes)
		if err != nil {
			return err
		}
		subthemes, err := encodeList(item.Subthemes)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			item.Key, item.Number, item.Year, item.Panel, item.Rapporteur, item.SessionDate,
			item.Title, item.Summary, item.URL, themes, subthemes,
			item.Relevance, item.Impact, item.Innovation, i, fetched)
		if err != nil {
			return fmt.Errorf("failed to upsert ruling %s: %w", item.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rulings: %w", err)
	}
	return nil
}

func (r *RulingRepo) GetRuling(ctx context.Context, key string) (*ruling.Ruling, error) {
	var row rulingRow
	err := r.db.GetContext(ctx, &row, `SELECT `+rulingColumns+` FROM rulings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ruling: %w", err)
	}

	result, err := row.toRuling()
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRulings returns the most recently fetched rulings first, in upstream
// order within a fetch. limit <= 0 returns everything.
func (r *RulingRepo) ListRulings(ctx context.Context, limit int) ([]ruling.Ruling, error) {
	query := `SELECT ` + rulingColumns + ` FROM rulings ORDER BY fetched_at DESC, position ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []rulingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list rulings: %w", err)
	}

	result := make([]ruling.Ruling, 0, len(rows))
	for _, row := range rows {
		item, err := row.toRuling()
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *RulingRepo) GetRulingCount(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM rulings`); err != nil {
		return 0, fmt.Errorf("failed to count rulings: %w", err)
	}
	return count, nil
}

func (row rulingRow) toRuling() (ruling.Ruling, error) {
	themes, err := decodeList(row.Themes)
	if err != nil {
		return ruling.Ruling{}, err
	}
	subthemes, err := decodeList(row.Subthemes)
	if err != nil {
		return ruling.Ruling{}, err
	}

	return ruling.Ruling{
		Key:         row.Key,
		Number:      row.Number,
		Year:        row.Year,
		Panel:       row.Panel,
		Rapporteur:  row.Rapporteur,
		SessionDate: row.SessionDate,
		Title:       row.Title,
		Summary:     row.Summary,
		URL:         row.URL,
		Themes:      themes,
		Subthemes:   subthemes,
		Relevance:   row.Relevance,
		Impact:      row.Impact,
		Innovation:  row.Innovation,
	}, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(data string) ([]string, error) {
	values := []string{}
	if data == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return values, nil
}
