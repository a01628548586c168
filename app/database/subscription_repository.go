package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/juris-comb/app/alert"
)

type SubscriptionRepo struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

type subscriptionRow struct {
	ID        string         `db:"id"`
	OwnerID   string         `db:"owner_id"`
	Contact   string         `db:"contact"`
	Themes    string         `db:"themes"`
	Subthemes string         `db:"subthemes"`
	Keywords  string         `db:"keywords"`
	Frequency string         `db:"frequency"`
	Active    bool           `db:"active"`
	CreatedAt string         `db:"created_at"`
	LastRunAt sql.NullString `db:"last_run_at"`
}

const subscriptionColumns = `id, owner_id, contact, themes, subthemes, keywords, frequency, active, created_at, last_run_at`

func (r *SubscriptionRepo) CreateSubscription(ctx context.Context, sub alert.Subscription) error {
	row, err := toSubscriptionRow(sub)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (:id, :owner_id, :contact, :themes, :subthemes, :keywords, :frequency, :active, :created_at, :last_run_at)
	`, row)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) GetSubscription(ctx context.Context, id string) (*alert.Subscription, error) {
	var row subscriptionRow
	err := r.db.GetContext(ctx, &row, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	sub, err := row.toSubscription()
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepo) ListSubscriptionsByOwner(ctx context.Context, ownerID string) ([]alert.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
}

// ListActiveSubscriptions orders by creation so recipient grouping is stable
// across cycles.
func (r *SubscriptionRepo) ListActiveSubscriptions(ctx context.Context) ([]alert.Subscription, error) {
	return r.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE active = 1 ORDER BY created_at, id`)
}

func (r *SubscriptionRepo) UpdateSubscription(ctx context.Context, sub alert.Subscription) error {
	row, err := toSubscriptionRow(sub)
	if err != nil {
		return err
	}

	result, err := r.db.NamedExecContext(ctx, `
		UPDATE subscriptions
		SET contact = :contact, themes = :themes, subthemes = :subthemes, keywords = :keywords,
			frequency = :frequency, active = :active
		WHERE id = :id
	`, row)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return alert.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepo) DeleteSubscription(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *SubscriptionRepo) MarkSubscriptionsRun(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlxIn(`UPDATE subscriptions SET last_run_at = ? WHERE id IN (?)`, formatTime(at), ids)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark subscriptions run: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) list(ctx context.Context, query string, args ...interface{}) ([]alert.Subscription, error) {
	var rows []subscriptionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	// A row that fails to decode is returned with LoadErr set so one corrupt
	// record cannot hide the others.
	subs := make([]alert.Subscription, 0, len(rows))
	for _, row := range rows {
		sub, err := row.toSubscription()
		if err != nil {
			slog.Warn("Subscription row could not be decoded", "id", row.ID, "error", err)
			sub.LoadErr = err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func toSubscriptionRow(sub alert.Subscription) (subscriptionRow, error) {
	themes, err := encodeList(sub.Filter.Themes)
	if err != nil {
		return subscriptionRow{}, err
	}
	subthemes, err := encodeList(sub.Filter.Subthemes)
	if err != nil {
		return subscriptionRow{}, err
	}
	keywords, err := encodeList(sub.Filter.Keywords)
	if err != nil {
		return subscriptionRow{}, err
	}

	row := subscriptionRow{
		ID:        sub.ID,
		OwnerID:   sub.OwnerID,
		Contact:   sub.Contact,
		Themes:    themes,
		Subthemes: subthemes,
		Keywords:  keywords,
		Frequency: string(sub.Frequency),
		Active:    sub.Active,
		CreatedAt: formatTime(sub.CreatedAt),
	}
	if sub.LastRunAt != nil {
		row.LastRunAt = sql.NullString{String: formatTime(*sub.LastRunAt), Valid: true}
	}
	return row, nil
}

func (row subscriptionRow) toSubscription() (alert.Subscription, error) {
	var (
		sub alert.Subscription
		err error
	)

	sub.ID = row.ID
	sub.OwnerID = row.OwnerID
	sub.Contact = row.Contact
	sub.Frequency = alert.Frequency(row.Frequency)
	sub.Active = row.Active

	if sub.Filter.Themes, err = decodeList(row.Themes); err != nil {
		return sub, err
	}
	if sub.Filter.Subthemes, err = decodeList(row.Subthemes); err != nil {
		return sub, err
	}
	if sub.Filter.Keywords, err = decodeList(row.Keywords); err != nil {
		return sub, err
	}

	if sub.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return sub, err
	}
	if row.LastRunAt.Valid && strings.TrimSpace(row.LastRunAt.String) != "" {
		lastRun, err := parseTime(row.LastRunAt.String)
		if err != nil {
			return sub, err
		}
		sub.LastRunAt = &lastRun
	}

	return sub, nil
}
