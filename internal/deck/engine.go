package deck

import (
	"context"
	"sync"
	"time"

	"github.com/driftwood-collective/driftdeck/internal/event"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

// State is the lifecycle state of the swipe deck.
type State int

// Deck states.
const (
	// StateEmpty: queue length 0, nothing loading. Initial state.
	StateEmpty State = iota

	// StateLoading: initial or refresh fetch in flight, queue unusable.
	StateLoading

	// StateReady: queue length >= 1, top card interactive.
	StateReady

	// StateCommitting: a decision was made on the top card; the exit
	// animation is in flight and the next card is not yet interactive.
	StateCommitting

	// StateExhausted: a fetch returned zero new candidates while the
	// queue was empty. Only an explicit refresh leaves this state.
	StateExhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateCommitting:
		return "committing"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Engine tuning defaults.
const (
	// DefaultLowWaterMark is the queue length below which a background
	// refill is triggered.
	DefaultLowWaterMark = 3

	// DefaultSettleDelay is how long a committed card stays in the deck
	// so the exit animation is perceptible before the next card becomes
	// interactive.
	DefaultSettleDelay = 200 * time.Millisecond

	// DefaultViewportWidth is the gesture surface width assumed when the
	// shell does not report one.
	DefaultViewportWidth = 400.0

	// backgroundFetchTimeout bounds a refill fetch detached from any
	// request lifetime.
	backgroundFetchTimeout = 15 * time.Second
)

// Fetcher supplies candidate batches. Implementations must return an empty
// slice on failure rather than an error (see source.SafeSource).
type Fetcher interface {
	FetchCandidates(ctx context.Context, exclude []string, limit int) []event.RawEventRecord
}

// Committer persists a decision without blocking the caller.
type Committer interface {
	CommitAsync(userID, eventID string, action viewed.Action)
}

// Snapshot is a point-in-time view of the deck for a rendering shell.
type Snapshot struct {
	State      string                `json:"state"`
	QueueLen   int                   `json:"queue_len"`
	Top        *event.CandidateEvent `json:"top,omitempty"`
	Next       *event.CandidateEvent `json:"next,omitempty"`
	Gesture    GestureState          `json:"gesture"`
	Expanded   bool                  `json:"expanded"`
	ImageIndex int                   `json:"image_index"`
}

// Engine is the swipe-deck state machine for a single user session. It
// owns the card queue, interprets gestures, commits decisions, and refills
// the queue from its fetcher while never re-offering a decided event.
//
// All mutation happens under one mutex; asynchronous fetch results are
// applied as messages so interleaved callbacks never race. The
// fetch-in-flight flag is the sole mutual exclusion for refills, and a
// generation counter discards results from fetches that predate a refresh.
type Engine struct {
	mu sync.Mutex

	userID    string
	fetcher   Fetcher
	registry  *viewed.Registry
	committer Committer
	interp    Interpreter
	metrics   *Metrics

	state          State
	deck           *Deck
	gesture        GestureState
	expanded       bool
	imageIndex     int
	pendingRemoval bool

	fetchInFlight bool
	generation    uint64

	lowWater    int
	settleDelay time.Duration

	// Injection points for tests: after schedules the settle callback,
	// spawn launches background refills.
	after func(time.Duration, func())
	spawn func(func())
}

// Option configures an Engine.
type Option func(*Engine)

// WithLowWaterMark overrides the refill threshold.
func WithLowWaterMark(n int) Option {
	return func(e *Engine) { e.lowWater = n }
}

// WithSettleDelay overrides the post-commit settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) { e.settleDelay = d }
}

// WithViewportWidth sets the gesture surface width. The velocity
// threshold is left untouched, so this composes with
// WithVelocityThreshold in either order.
func WithViewportWidth(w float64) Option {
	return func(e *Engine) { e.interp.ViewportWidth = w }
}

// WithVelocityThreshold overrides the commit speed threshold.
func WithVelocityThreshold(v float64) Option {
	return func(e *Engine) { e.interp.VelocityThreshold = v }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithScheduler replaces the settle timer and refill goroutine launcher.
// Tests use synchronous implementations to make the machine deterministic.
func WithScheduler(after func(time.Duration, func()), spawn func(func())) Option {
	return func(e *Engine) {
		e.after = after
		e.spawn = spawn
	}
}

// NewEngine creates a deck engine for one user session.
func NewEngine(userID string, fetcher Fetcher, registry *viewed.Registry, committer Committer, opts ...Option) *Engine {
	e := &Engine{
		userID:      userID,
		fetcher:     fetcher,
		registry:    registry,
		committer:   committer,
		interp:      NewInterpreter(DefaultViewportWidth),
		state:       StateEmpty,
		deck:        NewDeck(),
		gesture:     NeutralGesture(),
		lowWater:    DefaultLowWaterMark,
		settleDelay: DefaultSettleDelay,
		after:       func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
		spawn:       func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mount performs the initial load: merge the remote viewed set into the
// registry, then fetch the first batch. No-op unless the deck is Empty.
func (e *Engine) Mount(ctx context.Context) {
	e.mu.Lock()
	if e.state != StateEmpty {
		e.mu.Unlock()
		return
	}
	e.state = StateLoading
	e.fetchInFlight = true
	gen := e.generation
	need := e.lowWater
	e.mu.Unlock()

	e.registry.Load(ctx)
	e.fill(ctx, gen, need)
}

// Refresh discards the queue and all card sub-state, bumps the generation
// so in-flight fetch results are ignored when they land, and reloads from
// scratch. Allowed from any state.
func (e *Engine) Refresh(ctx context.Context) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.deck.Clear()
	e.gesture = NeutralGesture()
	e.expanded = false
	e.imageIndex = 0
	e.pendingRemoval = false
	e.state = StateLoading
	e.fetchInFlight = true
	need := e.lowWater
	if e.metrics != nil {
		e.metrics.SetDepth(0)
	}
	e.mu.Unlock()

	e.registry.Load(ctx)
	e.fill(ctx, gen, need)
}

// fill fetches up to need candidates excluding the full accumulated viewed
// set and applies the batch.
func (e *Engine) fill(ctx context.Context, gen uint64, need int) {
	records := e.fetcher.FetchCandidates(ctx, e.registry.ExcludedIDs(), need)
	e.applyBatch(gen, records)
}

// applyBatch folds fetched records into the deck. Results from a stale
// generation are dropped wholesale: the refresh that outdated them already
// started its own fetch.
func (e *Engine) applyBatch(gen uint64, records []event.RawEventRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		if e.metrics != nil {
			e.metrics.IncStaleBatches()
		}
		return
	}

	added := 0
	for _, rec := range records {
		if e.registry.Contains(rec.ID) || e.deck.Contains(rec.ID) {
			continue
		}
		if e.deck.Push(event.MapToDisplay(rec)) {
			added++
		}
	}
	e.fetchInFlight = false

	// Resolve state. While a commit's settle is still pending the machine
	// stays in Committing regardless of what arrived.
	if !e.pendingRemoval {
		if e.deck.Len() > 0 {
			if e.state == StateLoading || e.state == StateCommitting {
				e.state = StateReady
			}
		} else if added == 0 && (e.state == StateLoading || e.state == StateCommitting) {
			e.state = StateExhausted
			if e.metrics != nil {
				e.metrics.IncExhausted()
			}
		}
	}

	if e.metrics != nil {
		e.metrics.SetDepth(e.deck.Len())
	}
}

// ApplyFrame feeds one drag displacement sample to the interpreter and
// returns the resulting presentation values. Frames are ignored while the
// card is expanded or the deck is not Ready; the last state is returned
// unchanged.
func (e *Engine) ApplyFrame(dx, dy float64) GestureState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady || e.expanded {
		return e.gesture
	}
	e.gesture = e.interp.Track(dx, dy)
	return e.gesture
}

// Release evaluates a pointer release and, on a threshold crossing,
// commits the decision: the recorder and registry are invoked immediately
// while the exit animation plays, and the card is removed after the settle
// delay. A non-commit release resets the card to neutral.
func (e *Engine) Release(dx, vx float64) Decision {
	e.mu.Lock()

	if e.state != StateReady || e.expanded {
		e.mu.Unlock()
		return DecisionNone
	}

	decision := e.interp.Evaluate(dx, vx)
	if decision == DecisionNone {
		e.gesture = NeutralGesture()
		e.mu.Unlock()
		return DecisionNone
	}

	top, ok := e.deck.Top()
	if !ok {
		e.mu.Unlock()
		return DecisionNone
	}

	dir := 1.0
	action := viewed.ActionSaved
	if decision == DecisionPass {
		dir = -1.0
		action = viewed.ActionPassed
	}

	e.state = StateCommitting
	e.pendingRemoval = true
	e.gesture = GestureState{
		TranslateX: dir * e.interp.ViewportWidth * 1.5,
		Rotation:   dir * 30,
		Opacity:    0,
		Scale:      0.8,
	}

	// Decision recording is decoupled from animation timing: a slow write
	// must never delay card removal.
	e.registry.MarkLocal(top.ID, action)
	e.committer.CommitAsync(e.userID, top.ID, action)

	gen := e.generation
	e.mu.Unlock()

	e.after(e.settleDelay, func() { e.settle(gen) })
	return decision
}

// settle removes the committed card once the exit animation has been
// perceptible, resets the transient sub-state, and triggers a background
// refill when the queue is below the low-water mark.
func (e *Engine) settle(gen uint64) {
	e.mu.Lock()

	if gen != e.generation || e.state != StateCommitting {
		// A refresh superseded this commit; its card is already gone.
		e.mu.Unlock()
		return
	}

	e.deck.RemoveTop()
	e.pendingRemoval = false
	e.gesture = NeutralGesture()
	e.imageIndex = 0

	if e.deck.Len() > 0 {
		e.state = StateReady
	}
	// An emptied deck stays in Committing until the refill below resolves
	// it to Ready or Exhausted.

	need := e.lowWater - e.deck.Len()
	launch := need > 0 && !e.fetchInFlight
	if launch {
		e.fetchInFlight = true
	}
	if e.metrics != nil {
		e.metrics.SetDepth(e.deck.Len())
	}
	e.mu.Unlock()

	if launch {
		if e.metrics != nil {
			e.metrics.IncRefills()
		}
		e.spawn(func() {
			ctx, cancel := context.WithTimeout(context.Background(), backgroundFetchTimeout)
			defer cancel()
			e.fill(ctx, gen, need)
		})
	}
}

// Tap handles a tap at horizontal position x on the top card: the outer
// 10% zones cycle the image list, the center expands the card into its
// detail sub-state.
func (e *Engine) Tap(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return
	}

	top, ok := e.deck.Top()
	if !ok {
		return
	}

	leftZone := e.interp.ViewportWidth * EdgeZoneFraction
	rightZone := e.interp.ViewportWidth * (1 - EdgeZoneFraction)

	switch {
	case x < leftZone:
		if n := len(top.Images); n > 0 {
			e.imageIndex = (e.imageIndex - 1 + n) % n
		}
	case x > rightZone:
		if n := len(top.Images); n > 0 {
			e.imageIndex = (e.imageIndex + 1) % n
		}
	default:
		e.expanded = true
	}
}

// Scroll reports the card content's vertical scroll offset. Scrolling past
// the threshold expands the card, which gates gesture interpretation off.
func (e *Engine) Scroll(offset float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady || e.expanded {
		return
	}
	if offset > ExpandScrollThreshold {
		e.expanded = true
	}
}

// Collapse leaves the expanded detail sub-state, re-enabling gestures.
func (e *Engine) Collapse() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expanded = false
}

// State returns the current machine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Len returns the current queue length.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deck.Len()
}

// Top returns the top card, if any.
func (e *Engine) Top() (event.CandidateEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deck.Top()
}

// Expanded reports whether the top card is in its detail sub-state.
func (e *Engine) Expanded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expanded
}

// ImageIndex returns the top card's current image index.
func (e *Engine) ImageIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.imageIndex
}

// Snapshot returns a point-in-time view for a rendering shell.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		State:      e.state.String(),
		QueueLen:   e.deck.Len(),
		Gesture:    e.gesture,
		Expanded:   e.expanded,
		ImageIndex: e.imageIndex,
	}
	if top, ok := e.deck.Top(); ok {
		snap.Top = &top
	}
	if next, ok := e.deck.Next(); ok {
		snap.Next = &next
	}
	return snap
}
