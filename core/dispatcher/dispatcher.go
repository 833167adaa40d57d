package dispatcher

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/motdlink/core/player"
)

// Dispatcher routes framed messages from inbound transport connections to
// player sessions. One Dispatcher serves any number of connections; run
// Serve on one worker per connection.
type Dispatcher struct {
	players *player.Manager
	log     *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// New creates a dispatcher over the player dictionary.
func New(players *player.Manager, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		players: players,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Serve consumes the connection until it terminates. It returns nil on a
// clean end of stream or context cancellation; transport-level failures are
// returned to the caller. Serving is single-threaded per connection, which
// gives each claimed session strictly sequential request turns.
func (d *Dispatcher) Serve(ctx context.Context, t Transport) error {
	c := &conn{
		id:  uuid.New(),
		d:   d,
		t:   t,
		log: d.log,
	}
	return c.run(ctx)
}
