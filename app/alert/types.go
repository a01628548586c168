package alert

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidFilter       = errors.New("invalid subscription filter")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrNotFound            = errors.New("subscription not found")
)

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	default:
		return false
	}
}

// Filter axes are OR-ed together. An empty axis adds nothing, so a filter
// with every axis empty matches no ruling at all.
type Filter struct {
	Themes    []string `json:"themes"`
	Subthemes []string `json:"subthemes"`
	Keywords  []string `json:"keywords"`
}

func (f Filter) IsEmpty() bool {
	return len(f.Themes) == 0 && len(f.Subthemes) == 0 && len(f.Keywords) == 0
}

func (f Filter) Validate() error {
	axes := map[string][]string{
		"themes":    f.Themes,
		"subthemes": f.Subthemes,
		"keywords":  f.Keywords,
	}

	for axis, values := range axes {
		for i, v := range values {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%w: blank entry in %s at index %d", ErrInvalidFilter, axis, i)
			}
		}
	}
	return nil
}

type Subscription struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Contact   string     `json:"contact"`
	Filter    Filter     `json:"filter"`
	Frequency Frequency  `json:"frequency"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	LastRunAt *time.Time `json:"last_run_at"`

	// LoadErr is set by the store when the record could not be read back
	// intact. The matcher skips such subscriptions.
	LoadErr error `json:"-"`
}
