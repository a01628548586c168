package alert

import (
	"cmp"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateSubscription(ctx context.Context, sub Subscription) error
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	ListSubscriptionsByOwner(ctx context.Context, ownerID string) ([]Subscription, error)
	ListActiveSubscriptions(ctx context.Context) ([]Subscription, error)
	UpdateSubscription(ctx context.Context, sub Subscription) error
	DeleteSubscription(ctx context.Context, id string) (bool, error)
	MarkSubscriptionsRun(ctx context.Context, ids []string, at time.Time) error
}

type NewSubscription struct {
	OwnerID   string    `json:"owner_id"`
	Contact   string    `json:"contact"`
	Filter    Filter    `json:"filter"`
	Frequency Frequency `json:"frequency"`
}

// Patch holds the fields a subscriber may change. Nil fields are left alone;
// identity, owner and timestamps are never writable.
type Patch struct {
	Contact   *string    `json:"contact"`
	Filter    *Filter    `json:"filter"`
	Frequency *Frequency `json:"frequency"`
	Active    *bool      `json:"active"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, req NewSubscription) (*Subscription, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrInvalidSubscription)
	}

	contact, err := normalizeContact(req.Contact)
	if err != nil {
		return nil, err
	}

	frequency := cmp.Or(req.Frequency, FrequencyDaily)
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidSubscription, frequency)
	}

	if err := req.Filter.Validate(); err != nil {
		return nil, err
	}

	sub := Subscription{
		ID:        uuid.NewString(),
		OwnerID:   strings.TrimSpace(req.OwnerID),
		Contact:   contact,
		Filter:    req.Filter,
		Frequency: frequency,
		Active:    true,
		CreatedAt: s.now(),
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	return &sub, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Subscription, error) {
	subs, err := s.repo.ListSubscriptionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *Service) Active(ctx context.Context) ([]Subscription, error) {
	subs, err := s.repo.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscriptions: %w", err)
	}
	return subs, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Subscription, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Contact != nil {
		contact, err := normalizeContact(*patch.Contact)
		if err != nil {
			return nil, err
		}
		sub.Contact = contact
	}
	if patch.Filter != nil {
		if err := patch.Filter.Validate(); err != nil {
			return nil, err
		}
		sub.Filter = *patch.Filter
	}
	if patch.Frequency != nil {
		if !patch.Frequency.Valid() {
			return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidSubscription, *patch.Frequency)
		}
		sub.Frequency = *patch.Frequency
	}
	if patch.Active != nil {
		sub.Active = *patch.Active
	}

	if err := s.repo.UpdateSubscription(ctx, *sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	return sub, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteSubscription(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MarkRun(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.MarkSubscriptionsRun(ctx, ids, s.now()); err != nil {
		return fmt.Errorf("failed to mark subscriptions run: %w", err)
	}
	return nil
}

func normalizeContact(contact string) (string, error) {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return "", fmt.Errorf("%w: contact is required", ErrInvalidSubscription)
	}

	addr, err := mail.ParseAddress(contact)
	if err != nil {
		return "", fmt.Errorf("%w: invalid contact %q", ErrInvalidSubscription, contact)
	}
	return strings.ToLower(addr.Address), nil
}
