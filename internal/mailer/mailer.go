// AngelaMos | 2026
// mailer.go

package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/carterperez-dev/taskboard/internal/core"
)

var ErrUnavailable = errors.New("mail delivery unavailable")

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Transport performs the actual delivery. SMTP integration lives outside
// this service; LogTransport writes the message to the structured log.
type Transport interface {
	Deliver(ctx context.Context, from string, msg Message) error
}

type LogTransport struct {
	Logger *slog.Logger
}

func (t LogTransport) Deliver(ctx context.Context, from string, msg Message) error {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "outgoing mail",
		"from", from,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

type Service struct {
	from      string
	transport Transport
	breaker   *gobreaker.CircuitBreaker
}

func New(from string, transport Transport, logger *slog.Logger) *Service {
	return &Service{
		from:      from,
		transport: transport,
		breaker:   core.NewBreaker("mailer", 30*time.Second, logger),
	}
}

func (s *Service) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("send mail: empty recipient: %w", core.ErrInvalidInput)
	}

	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.transport.Deliver(ctx, s.from, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("send mail: %w", ErrUnavailable)
	}
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

var _ Mailer = (*Service)(nil)
