// Package engine owns the crash-game round lifecycle: the state machine,
// the multiplier curve, the per-tick crash decision, active-wager tracking
// and settlement. Collaborators observe it through the event bus and the
// read-only query surface; the only inbound entry points are PlaceBet,
// CashOut, RemovePlayer and ForceCrash.
package engine

import (
	"crash_backend/internal/bus"
	"crash_backend/internal/config"
	"crash_backend/internal/model"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// Command rejections. Expected, non-fatal, always returned as values.
var (
	ErrBetsClosed       = errors.New("bets are closed for the current round")
	ErrInvalidAmount    = errors.New("bet amount must be a positive finite number")
	ErrThresholdTooLow  = errors.New("auto cash out threshold is below the minimum")
	ErrNotFlying        = errors.New("round is not flying")
	ErrNoActiveBet      = errors.New("no active bet for this player")
	ErrAlreadyCashedOut = errors.New("already cashed out")
	ErrAlreadyRunning   = errors.New("engine already running")
)

// wager is the engine-owned record of one player's bet in the current round.
// It never holds connection state; notifications flow out via events only.
type wager struct {
	playerID    string
	amount      float64
	autoCashOut float64 // 0 when not requested
	settled     bool
	payout      float64
	multiplier  float64 // cash-out multiplier when settled
}

type statsCounters struct {
	totalRounds   int64
	totalWagered  float64
	totalPaidOut  float64
	sumFinalMults float64
}

// Engine is the single authoritative owner of round state. All mutations,
// timer-driven or command-driven, are serialized by one mutex; events are
// published only after the mutex is released.
type Engine struct {
	cfg   config.EngineConfig
	bus   *bus.Bus
	clock Clock
	rng   RandomSource

	mu         sync.Mutex
	running    bool
	timerGen   uint64
	state      model.RoundState
	roundID    int64
	startedAt  time.Time
	multiplier float64
	lastEmit   time.Time
	wagers     map[string]*wager
	history    *history
	stats      statsCounters
}

// Option overrides an engine collaborator, mainly for tests.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithRandomSource(r RandomSource) Option {
	return func(e *Engine) { e.rng = r }
}

// New validates the configuration and builds a stopped engine.
func New(cfg config.EngineConfig, b *bus.Bus, opts ...Option) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		bus:        b,
		clock:      SystemClock(),
		rng:        DefaultRNG(),
		state:      model.RoundWaiting,
		multiplier: 1.0,
		wagers:     make(map[string]*wager),
		history:    newHistory(cfg.HistorySize()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func validateConfig(cfg config.EngineConfig) error {
	switch {
	case cfg.WaitTimeMin() <= 0 || cfg.WaitTimeMax() < cfg.WaitTimeMin():
		return fmt.Errorf("wait time range [%v, %v] is not positive and monotonic",
			cfg.WaitTimeMin(), cfg.WaitTimeMax())
	case cfg.Countdown() <= 0:
		return fmt.Errorf("countdown %v must be positive", cfg.Countdown())
	case cfg.TickInterval() <= 0:
		return fmt.Errorf("tick interval %v must be positive", cfg.TickInterval())
	case cfg.UpdateInterval() < 0:
		return fmt.Errorf("update interval %v must not be negative", cfg.UpdateInterval())
	case cfg.MaxFlightTime() <= cfg.TickInterval():
		return fmt.Errorf("max flight time %v must exceed the tick interval", cfg.MaxFlightTime())
	case cfg.CrashedDelay() <= 0:
		return fmt.Errorf("crashed delay %v must be positive", cfg.CrashedDelay())
	case cfg.GrowthRate() <= 0:
		return fmt.Errorf("growth rate %v must be positive", cfg.GrowthRate())
	case cfg.MultiplierCap() <= 1.0:
		return fmt.Errorf("multiplier cap %v must exceed 1.0", cfg.MultiplierCap())
	case cfg.GracePeriod() < 0:
		return fmt.Errorf("grace period %v must not be negative", cfg.GracePeriod())
	case cfg.CrashTimeWeight() < 0 || cfg.CrashMultiplierWeight() < 0:
		return errors.New("crash weights must not be negative")
	case cfg.MaxCrashChance() <= 0 || cfg.MaxCrashChance() > 1:
		return fmt.Errorf("max crash chance %v must be in (0, 1]", cfg.MaxCrashChance())
	case cfg.HistorySize() <= 0:
		return fmt.Errorf("history size %d must be positive", cfg.HistorySize())
	case cfg.MinAutoCashOut() < 1.0:
		return fmt.Errorf("min auto cash out %v must be at least 1.0", cfg.MinAutoCashOut())
	}
	return nil
}

// Start enters the waiting phase. The engine then self-schedules forever
// until Stop.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.running = true
	events := e.enterWaitingLocked()
	e.mu.Unlock()

	e.publish(events)
	return nil
}

// Stop halts ticking and invalidates all pending timers. An in-flight round
// is abandoned without settlement.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.timerGen++
	e.mu.Unlock()
}

// --- state transitions -----------------------------------------------------

// bumpTimerLocked invalidates every previously scheduled callback and
// returns the generation new timers must carry.
func (e *Engine) bumpTimerLocked() uint64 {
	e.timerGen++
	return e.timerGen
}

func (e *Engine) staleLocked(gen uint64) bool {
	return !e.running || gen != e.timerGen
}

func (e *Engine) enterWaitingLocked() []model.Event {
	e.state = model.RoundWaiting

	span := e.cfg.WaitTimeMax() - e.cfg.WaitTimeMin()
	wait := e.cfg.WaitTimeMin() + time.Duration(e.rng.Float64()*float64(span))

	gen := e.bumpTimerLocked()
	e.clock.AfterFunc(wait, func() { e.onWaitElapsed(gen) })

	return []model.Event{model.StateChangedEvent{
		State:   model.RoundWaiting,
		RoundID: e.roundID,
		Wait:    wait,
	}}
}

func (e *Engine) onWaitElapsed(gen uint64) {
	e.mu.Lock()
	if e.staleLocked(gen) {
		e.mu.Unlock()
		return
	}
	events := e.enterStartingLocked()
	e.mu.Unlock()

	e.publish(events)
}

func (e *Engine) enterStartingLocked() []model.Event {
	e.state = model.RoundStarting

	// Wagers placed while waiting carry into the round; any stale settlement
	// marker from a previous cycle is reset.
	for _, w := range e.wagers {
		w.settled = false
		w.payout = 0
		w.multiplier = 0
	}

	countdown := e.cfg.Countdown()
	gen := e.bumpTimerLocked()
	e.clock.AfterFunc(countdown, func() { e.onCountdownElapsed(gen) })

	return []model.Event{model.StateChangedEvent{
		State:     model.RoundStarting,
		RoundID:   e.roundID,
		Countdown: countdown,
	}}
}

func (e *Engine) onCountdownElapsed(gen uint64) {
	e.mu.Lock()
	if e.staleLocked(gen) {
		e.mu.Unlock()
		return
	}
	events := e.enterFlyingLocked()
	e.mu.Unlock()

	e.publish(events)
}

func (e *Engine) enterFlyingLocked() []model.Event {
	e.state = model.RoundFlying
	e.roundID++
	e.multiplier = 1.0
	e.startedAt = e.clock.Now()
	e.lastEmit = e.startedAt

	gen := e.bumpTimerLocked()
	e.clock.AfterFunc(e.cfg.TickInterval(), func() { e.onTick(gen) })

	return []model.Event{
		model.StateChangedEvent{
			State:      model.RoundFlying,
			RoundID:    e.roundID,
			Multiplier: 1.0,
			Elapsed:    0,
		},
		model.MultiplierUpdateEvent{
			RoundID:    e.roundID,
			Multiplier: 1.0,
			Elapsed:    0,
			Timestamp:  e.startedAt,
			GrowthRate: e.cfg.GrowthRate(),
		},
	}
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	if e.staleLocked(gen) {
		e.mu.Unlock()
		return
	}
	events := e.tickLocked()
	if e.state == model.RoundFlying {
		e.clock.AfterFunc(e.cfg.TickInterval(), func() { e.onTick(gen) })
	}
	e.mu.Unlock()

	e.publish(events)
}

// tickLocked advances one flight tick: recompute the multiplier, evaluate
// the crash decision, then maybe emit a throttled update and sweep auto
// cash-outs.
func (e *Engine) tickLocked() []model.Event {
	now := e.clock.Now()
	elapsed := now.Sub(e.startedAt)

	m := Multiplier(e.cfg.GrowthRate(), elapsed, e.cfg.MultiplierCap())
	if m < e.multiplier {
		panic(fmt.Sprintf("multiplier decreased: %v -> %v", e.multiplier, m))
	}
	e.multiplier = m

	// Crash decision first: a crash tick publishes the final multiplier
	// through the crash transition, never a throttled update on top of it.
	chance := CrashChance(e.crashParams(), elapsed, m)
	if e.rng.Float64() < chance || elapsed >= e.cfg.MaxFlightTime() {
		return e.enterCrashedLocked("crashed", now, elapsed)
	}

	var events []model.Event

	// Time-based throttle: broadcast at most once per update interval.
	emitNow := now.Sub(e.lastEmit) >= e.cfg.UpdateInterval()
	if emitNow {
		e.lastEmit = now
		events = append(events, model.MultiplierUpdateEvent{
			RoundID:    e.roundID,
			Multiplier: m,
			Elapsed:    elapsed,
			Timestamp:  now,
			GrowthRate: e.cfg.GrowthRate(),
		})
	}

	events = append(events, e.sweepAutoCashOutsLocked(m)...)

	if emitNow {
		events = append(events, model.StateChangedEvent{
			State:      model.RoundFlying,
			RoundID:    e.roundID,
			Multiplier: m,
			Elapsed:    elapsed,
		})
	}
	return events
}

func (e *Engine) crashParams() CrashParams {
	return CrashParams{
		GracePeriod:      e.cfg.GracePeriod(),
		TimeWeight:       e.cfg.CrashTimeWeight(),
		MultiplierWeight: e.cfg.CrashMultiplierWeight(),
		MaxChance:        e.cfg.MaxCrashChance(),
	}
}

// sweepAutoCashOutsLocked settles every unsettled wager whose threshold the
// multiplier has reached. Sorted order keeps event emission deterministic.
func (e *Engine) sweepAutoCashOutsLocked(m float64) []model.Event {
	var due []string
	for id, w := range e.wagers {
		if !w.settled && w.autoCashOut > 0 && m >= w.autoCashOut {
			due = append(due, id)
		}
	}
	sort.Strings(due)

	var events []model.Event
	for _, id := range due {
		w := e.wagers[id]
		w.settled = true
		w.multiplier = m
		w.payout = w.amount * m
		e.stats.totalPaidOut += w.payout

		events = append(events, model.AutoCashedOutEvent{
			RoundID:    e.roundID,
			PlayerID:   w.playerID,
			BetAmount:  w.amount,
			Multiplier: m,
			Payout:     w.payout,
		})
	}
	return events
}

// enterCrashedLocked ends the flight: final snapshot, history, settlement
// record, wager reset, display delay.
func (e *Engine) enterCrashedLocked(reason string, now time.Time, elapsed time.Duration) []model.Event {
	e.state = model.RoundCrashed
	final := e.multiplier

	events := []model.Event{model.MultiplierUpdateEvent{
		RoundID:    e.roundID,
		Multiplier: final,
		Elapsed:    elapsed,
		Timestamp:  now,
		GrowthRate: e.cfg.GrowthRate(),
	}}

	e.history.Push(final)
	e.stats.totalRounds++
	e.stats.sumFinalMults += final

	participants := make([]model.WagerOutcome, 0, len(e.wagers))
	losers := make([]model.WagerOutcome, 0)
	ids := make([]string, 0, len(e.wagers))
	for id := range e.wagers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		w := e.wagers[id]
		outcome := model.WagerOutcome{
			PlayerID:   w.playerID,
			BetAmount:  w.amount,
			Settled:    w.settled,
			Payout:     w.payout,
			Multiplier: w.multiplier,
		}
		participants = append(participants, outcome)
		if !w.settled {
			losers = append(losers, outcome)
		}
	}

	// Settlement record built; the wager set is now cleared atomically.
	e.wagers = make(map[string]*wager)

	events = append(events,
		model.RoundSettledEvent{
			RoundID:         e.roundID,
			FinalMultiplier: final,
			Reason:          reason,
			CrashedAt:       now,
			Losers:          losers,
			Participants:    participants,
		},
		model.StateChangedEvent{
			State:      model.RoundCrashed,
			RoundID:    e.roundID,
			Multiplier: final,
			Elapsed:    elapsed,
		},
	)

	gen := e.bumpTimerLocked()
	e.clock.AfterFunc(e.cfg.CrashedDelay(), func() { e.onCrashedDelayElapsed(gen) })

	return events
}

func (e *Engine) onCrashedDelayElapsed(gen uint64) {
	e.mu.Lock()
	if e.staleLocked(gen) {
		e.mu.Unlock()
		return
	}
	events := e.enterWaitingLocked()
	e.mu.Unlock()

	e.publish(events)
}

func (e *Engine) publish(events []model.Event) {
	for _, ev := range events {
		e.bus.Publish(ev)
	}
}

// --- commands --------------------------------------------------------------

// PlaceBet registers (or overwrites) the player's wager for the upcoming
// round. Returns the amount of a replaced wager so callers can refund it.
// Only valid while waiting or starting.
func (e *Engine) PlaceBet(playerID string, amount, autoCashOut float64) (replaced float64, err error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if autoCashOut != 0 && autoCashOut < e.cfg.MinAutoCashOut() {
		return 0, ErrThresholdTooLow
	}
	if e.state != model.RoundWaiting && e.state != model.RoundStarting {
		return 0, ErrBetsClosed
	}

	if prev, ok := e.wagers[playerID]; ok {
		replaced = prev.amount
		e.stats.totalWagered -= prev.amount
	}
	e.wagers[playerID] = &wager{
		playerID:    playerID,
		amount:      amount,
		autoCashOut: autoCashOut,
	}
	e.stats.totalWagered += amount

	return replaced, nil
}

// CashOut settles the player's wager at the multiplier of the call instant,
// recomputed through the growth curve. Fails with a distinct reason when the
// round is not flying, the player holds no wager, or the wager is settled.
func (e *Engine) CashOut(playerID string) (model.CashOutResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != model.RoundFlying {
		return model.CashOutResult{}, ErrNotFlying
	}
	w, ok := e.wagers[playerID]
	if !ok {
		return model.CashOutResult{}, ErrNoActiveBet
	}
	if w.settled {
		return model.CashOutResult{}, ErrAlreadyCashedOut
	}

	elapsed := e.clock.Now().Sub(e.startedAt)
	m := Multiplier(e.cfg.GrowthRate(), elapsed, e.cfg.MultiplierCap())
	if m > e.multiplier {
		e.multiplier = m
	} else {
		m = e.multiplier
	}

	w.settled = true
	w.multiplier = m
	w.payout = w.amount * m
	e.stats.totalPaidOut += w.payout

	return model.CashOutResult{
		RoundID:    e.roundID,
		Multiplier: m,
		Payout:     w.payout,
	}, nil
}

// RemovePlayer drops all wager bookkeeping for the player in the current
// round. Used on disconnect; never errors.
func (e *Engine) RemovePlayer(playerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, ok := e.wagers[playerID]
	if !ok {
		return
	}
	// A wager withdrawn before the flight never played; in flight, leaving
	// forfeits it and the amount stays counted as wagered.
	if !w.settled && e.state != model.RoundFlying {
		e.stats.totalWagered -= w.amount
	}
	delete(e.wagers, playerID)
}

// ForceCrash immediately ends a flying round at the multiplier of the call
// instant, tagging the settlement with the given reason. Authorization is the
// caller's concern.
func (e *Engine) ForceCrash(reason string) error {
	e.mu.Lock()
	if e.state != model.RoundFlying {
		e.mu.Unlock()
		return ErrNotFlying
	}

	now := e.clock.Now()
	elapsed := now.Sub(e.startedAt)
	m := Multiplier(e.cfg.GrowthRate(), elapsed, e.cfg.MultiplierCap())
	if m > e.multiplier {
		e.multiplier = m
	}
	events := e.enterCrashedLocked(reason, now, elapsed)
	e.mu.Unlock()

	e.publish(events)
	return nil
}

// --- query surface ---------------------------------------------------------

// ActiveWager reports the player's current wager, if any.
func (e *Engine) ActiveWager(playerID string) (amount float64, settled bool, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, found := e.wagers[playerID]
	if !found {
		return 0, false, false
	}
	return w.amount, w.settled, true
}

// Snapshot returns a consistent view of the current round.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := model.Snapshot{
		State:        e.state,
		RoundID:      e.roundID,
		Multiplier:   e.multiplier,
		ActiveWagers: len(e.wagers),
	}
	if e.state == model.RoundFlying {
		snap.Elapsed = e.clock.Now().Sub(e.startedAt)
	}
	return snap
}

// History lists past final multipliers, newest first.
func (e *Engine) History() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.List()
}

// Stats returns running aggregates over all completed rounds.
func (e *Engine) Stats() model.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := model.Stats{
		TotalRounds:  e.stats.totalRounds,
		TotalWagered: e.stats.totalWagered,
		TotalPaidOut: e.stats.totalPaidOut,
		ActiveWagers: len(e.wagers),
	}
	if e.stats.totalRounds > 0 {
		s.AverageMultiplier = e.stats.sumFinalMults / float64(e.stats.totalRounds)
	}
	return s
}
