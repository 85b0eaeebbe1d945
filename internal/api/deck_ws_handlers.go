// Package api provides the WebSocket transport for live deck sessions.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/driftwood-collective/driftdeck/internal/deck"
	"github.com/driftwood-collective/driftdeck/internal/middleware"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins from configuration before exposing publicly
		return true
	},
}

// Message types accepted from deck session clients.
const (
	MsgFrame    = "frame"
	MsgRelease  = "release"
	MsgTap      = "tap"
	MsgScroll   = "scroll"
	MsgCollapse = "collapse"
	MsgRefresh  = "refresh"
	MsgSnapshot = "snapshot"
)

// deckClientMessage is one gesture or control message from the client.
type deckClientMessage struct {
	Type   string  `json:"type"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	VX     float64 `json:"vx"`
	X      float64 `json:"x"`
	Offset float64 `json:"offset"`
}

// deckServerMessage is the state pushed back after every client message.
type deckServerMessage struct {
	Type     string        `json:"type"`
	Decision string        `json:"decision,omitempty"`
	Snapshot deck.Snapshot `json:"snapshot"`
}

// DeckSessionConfig carries per-session engine tuning.
type DeckSessionConfig struct {
	LowWaterMark      int
	SettleDelay       time.Duration
	VelocityThreshold float64
	ViewportWidth     float64
}

// DeckSessionHandlers holds shared dependencies for live deck sessions.
// Each WebSocket connection gets its own engine and exclusion registry;
// the stores behind them are shared.
type DeckSessionHandlers struct {
	viewedStore viewed.Store
	fetcher     deck.Fetcher
	committer   deck.Committer
	metrics     *deck.Metrics
	cfg         DeckSessionConfig
	logger      *slog.Logger
}

// NewDeckSessionHandlers creates a new DeckSessionHandlers instance.
func NewDeckSessionHandlers(
	viewedStore viewed.Store,
	fetcher deck.Fetcher,
	committer deck.Committer,
	metrics *deck.Metrics,
	cfg DeckSessionConfig,
	logger *slog.Logger,
) *DeckSessionHandlers {
	return &DeckSessionHandlers{
		viewedStore: viewedStore,
		fetcher:     fetcher,
		committer:   committer,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
	}
}

// Session handles GET /deck/ws.
//
// The connection is upgraded to a WebSocket and a fresh deck engine is
// mounted for the authenticated user. The client streams gesture messages;
// every message is answered with a full deck snapshot, so the client never
// has to reconstruct state from deltas.
func (h *DeckSessionHandlers) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		ctx = middleware.SetErrorCode(ctx, ErrCodeAuthFailed)
		WriteError(w, ctx, http.StatusUnauthorized, ErrCodeAuthFailed, "Authentication required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upgrade websocket connection",
			"error", err,
			"user_id", userID,
		)
		return
	}
	defer conn.Close()

	registry := viewed.NewRegistry(userID, h.viewedStore, h.logger)
	engine := deck.NewEngine(userID, h.fetcher, registry, h.committer,
		deck.WithLowWaterMark(h.cfg.LowWaterMark),
		deck.WithSettleDelay(h.cfg.SettleDelay),
		deck.WithViewportWidth(h.cfg.ViewportWidth),
		deck.WithVelocityThreshold(h.cfg.VelocityThreshold),
		deck.WithMetrics(h.metrics),
	)
	engine.Mount(ctx)

	requestID := middleware.GetRequestID(ctx)
	h.logger.InfoContext(ctx, "deck session started",
		"user_id", userID,
		"request_id", requestID,
	)

	if err := conn.WriteJSON(deckServerMessage{Type: MsgSnapshot, Snapshot: engine.Snapshot()}); err != nil {
		h.logger.WarnContext(ctx, "failed to write initial snapshot", "error", err, "user_id", userID)
		return
	}

	for {
		var msg deckClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WarnContext(ctx, "deck session read error", "error", err, "user_id", userID)
			}
			break
		}

		var decision deck.Decision
		switch msg.Type {
		case MsgFrame:
			engine.ApplyFrame(msg.DX, msg.DY)
		case MsgRelease:
			decision = engine.Release(msg.DX, msg.VX)
		case MsgTap:
			engine.Tap(msg.X)
		case MsgScroll:
			engine.Scroll(msg.Offset)
		case MsgCollapse:
			engine.Collapse()
		case MsgRefresh:
			engine.Refresh(ctx)
		case MsgSnapshot:
			// Snapshot-only round trip; nothing to apply.
		default:
			h.logger.DebugContext(ctx, "ignoring unknown deck message", "type", msg.Type, "user_id", userID)
			continue
		}

		out := deckServerMessage{Type: MsgSnapshot, Snapshot: engine.Snapshot()}
		if decision != deck.DecisionNone {
			out.Decision = decision.String()
		}
		if err := conn.WriteJSON(out); err != nil {
			h.logger.WarnContext(ctx, "failed to write deck snapshot", "error", err, "user_id", userID)
			break
		}
	}

	h.logger.InfoContext(ctx, "deck session ended", "user_id", userID)
}
