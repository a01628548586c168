package delivery

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

// Transport sends one recipient's digest. A returned error is a delivery
// failure for that recipient only.
type Transport interface {
	Deliver(ctx context.Context, contact string, rulings []ruling.Ruling) error
}

var (
	_ Transport = (*EmailTransport)(nil)
	_ Transport = (*LogTransport)(nil)
)

// LogTransport writes digests to the log instead of sending them. It is
// used when no SMTP host is configured.
type LogTransport struct{}

func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

func (t *LogTransport) Deliver(ctx context.Context, contact string, rulings []ruling.Ruling) error {
	references := make([]string, 0, len(rulings))
	for _, r := range rulings {
		references = append(references, r.Reference())
	}

	slog.Info("Alert digest",
		"contact", contact,
		"rulings", len(rulings),
		"references", references)

	return nil
}
