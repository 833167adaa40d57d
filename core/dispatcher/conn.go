package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/motdlink/core/logger"
	"github.com/dmitrymomot/motdlink/core/page"
	"github.com/dmitrymomot/motdlink/core/player"
	"github.com/dmitrymomot/motdlink/core/registry"
	"github.com/dmitrymomot/motdlink/core/session"
)

// conn is the per-connection state machine:
// Unidentified -> Identified -> (optional) LiveBound -> Terminated.
type conn struct {
	id  uuid.UUID
	d   *Dispatcher
	t   Transport
	log *slog.Logger
	ctx context.Context

	once      sync.Once
	player    *player.Player
	sess      *session.Session
	claimGen  uint64
	liveBound bool
}

func (c *conn) run(ctx context.Context) error {
	c.ctx = ctx

	stop := context.AfterFunc(ctx, func() {
		_ = c.t.Close()
	})
	defer stop()
	defer c.terminate()

	for {
		data, err := c.t.Receive()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !c.handle(data) {
			return nil
		}
	}
}

// terminate tears the connection down exactly once. Both the live teardown
// and the session release are guarded by this connection's claim generation,
// so a newer connection that re-claimed the session keeps its session and
// its own live binding.
func (c *conn) terminate() {
	c.once.Do(func() {
		if c.liveBound && c.player != nil && c.sess != nil {
			c.player.CloseLive(c.sess.ID(), c.claimGen, page.ReasonTransmissionEnd)
			c.liveBound = false
		}
		if c.player != nil && c.sess != nil {
			c.player.Release(c.sess.ID(), c.claimGen)
		}
		_ = c.t.Close()

		c.log.Debug("connection terminated",
			logger.Component("dispatcher"),
			logger.Conn(c.id.String()),
		)
	})
}

// handle processes one framed message and reports whether the connection
// stays open.
func (c *conn) handle(data []byte) bool {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return c.protocolError("unparseable message", err)
	}

	switch msg.Action {
	case actionSetIdentity:
		return c.handleSetIdentity(msg)
	case actionSwitch:
		return c.handleSwitch(msg)
	case actionCustomData:
		return c.handleCustomData(msg)
	default:
		return c.protocolError("unknown action", nil)
	}
}

// protocolError terminates the connection. Before identification the
// termination is silent; afterwards it is logged with context.
func (c *conn) protocolError(msg string, err error) bool {
	if c.player != nil {
		c.log.Warn("protocol error",
			logger.Component("dispatcher"),
			logger.Conn(c.id.String()),
			logger.Player(c.player.Identity()),
			slog.String("detail", msg),
			logger.Error(err),
		)
	}
	return false
}

func (c *conn) handleSetIdentity(msg message) bool {
	if c.player != nil {
		return c.protocolError("duplicate set-identity", nil)
	}
	if msg.Identity == "" || msg.SessionID == 0 {
		return c.protocolError("set-identity missing required fields", nil)
	}

	p, err := c.d.players.Get(msg.Identity)
	if err != nil {
		c.sendStatus(StatusUnknownIdentity)
		return false
	}

	s, gen, err := p.ClaimForTransmission(msg.SessionID)
	if err != nil {
		c.sendStatus(StatusSessionClosed)
		return false
	}

	c.player = p
	c.sess = s
	c.claimGen = gen

	if msg.Live {
		if err := s.ActivateLive(c.sendLive, c.stopLive); err != nil {
			if errors.Is(err, session.ErrClosed) {
				c.sendStatus(StatusSessionClosed)
			} else {
				c.sendStatus(StatusLiveNotPermitted)
			}
			return false
		}
		c.liveBound = true
	}

	// Secret rotation aborts identification atomically: a client that
	// cannot persist its new secret must not proceed half-identified.
	if msg.NewSecret != nil {
		if !p.RotateSecret(c.ctx, []byte(*msg.NewSecret)) {
			c.sendStatus(StatusSecretRejected)
			return false
		}
	}

	c.log.Info("connection identified",
		logger.Component("dispatcher"),
		logger.Conn(c.id.String()),
		logger.Player(p.Identity()),
		logger.Session(s.ID()),
		slog.Bool("live", c.liveBound),
	)

	c.sendStatus(StatusOK)
	return true
}

func (c *conn) handleSwitch(msg message) bool {
	if c.player == nil {
		return c.protocolError("switch before identification", nil)
	}
	if msg.NewPageID == "" {
		return c.protocolError("switch missing new_page_id", nil)
	}

	err := c.sess.RequestSwitch(msg.NewPageID)
	switch {
	case err == nil:
		c.sendStatus(StatusOK)
		return true
	case errors.Is(err, session.ErrClosed):
		c.sendStatus(StatusSessionClosed)
		return false
	case errors.Is(err, registry.ErrUnknownPage), errors.Is(err, registry.ErrUnknownApplication):
		// Soft error: the session's active page is unchanged.
		c.sendStatus(StatusUnknownPage)
		return true
	case errors.Is(err, session.ErrSwitchRefused):
		c.sendStatus(StatusSwitchRefused)
		return true
	default:
		// Callback failure during identification-time switching logic
		// terminates the governing connection.
		c.sendStatus(StatusSwitchCallbackFailed)
		return false
	}
}

func (c *conn) handleCustomData(msg message) bool {
	if c.player == nil {
		return c.protocolError("custom-data before identification", nil)
	}

	data, ok := decodePayload(msg.Data)
	if !ok {
		return c.protocolError("custom-data missing payload", nil)
	}

	if c.liveBound {
		err := c.sess.HandleLivePush(data)
		switch {
		case err == nil:
			return true
		case errors.Is(err, session.ErrPageCallback):
			// Logged at the session boundary; the live channel stays open.
			return true
		default:
			c.sendStatus(StatusSessionClosed)
			return false
		}
	}

	answer, err := c.sess.HandleRequest(data)
	switch {
	case errors.Is(err, session.ErrPageCallback):
		// The session survives; the client may retry on this connection.
		c.sendStatus(StatusPageCallbackFailed)
		return true
	case err != nil:
		c.sendStatus(StatusSessionClosed)
		return false
	}

	if answer == nil {
		answer = page.Payload{}
	}

	body, err := json.Marshal(dataEnvelope{Status: StatusOK, Data: answer})
	if err != nil {
		c.log.Error("answer not serializable",
			logger.Component("dispatcher"),
			logger.Conn(c.id.String()),
			logger.Player(c.player.Identity()),
			logger.Session(c.sess.ID()),
			logger.Error(err),
		)
		c.sendStatus(StatusInvalidResponse)
		return false
	}

	if err := c.t.Send(body); err != nil {
		return false
	}
	return true
}

// sendLive relays one page-originated push outbound. A write failure closes
// the transport; the receive loop then tears down the live binding with
// ReasonTransmissionEnd.
func (c *conn) sendLive(data page.Payload) error {
	body, err := json.Marshal(dataEnvelope{Status: StatusOK, Data: data})
	if err != nil {
		c.log.Error("push payload not serializable",
			logger.Component("dispatcher"),
			logger.Conn(c.id.String()),
			logger.Error(err),
		)
		return err
	}

	if err := c.t.Send(body); err != nil {
		c.log.Warn("push write failed",
			logger.Component("dispatcher"),
			logger.Conn(c.id.String()),
			logger.Error(err),
		)
		_ = c.t.Close()
		return err
	}
	return nil
}

// stopLive ends the live transmission at the page's request. The status
// message is best-effort; closing the transport unwinds the receive loop
// which performs the actual teardown.
func (c *conn) stopLive() {
	c.sendStatus(StatusLiveStopped)
	_ = c.t.Close()
}

func (c *conn) sendStatus(s Status) {
	body, err := json.Marshal(statusEnvelope{Status: s})
	if err != nil {
		return
	}
	if err := c.t.Send(body); err != nil {
		c.log.Debug("status write failed",
			logger.Component("dispatcher"),
			logger.Conn(c.id.String()),
			logger.Error(err),
		)
	}
}
