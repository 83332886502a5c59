package game

import (
	"context"
	"crash_backend/internal/bus"
	"crash_backend/internal/config/env"
	"crash_backend/internal/engine"
	"crash_backend/internal/model"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

// fakeTxManager runs the unit of work directly; rollback semantics are the
// real manager's concern, not this package's.
type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	mu         sync.Mutex
	balances   map[int]float64
	failUpdate bool

	// onGetBalance, when set, runs once during the next GetBalance call,
	// outside the repo lock. Lets a test interleave work mid-transaction.
	onGetBalance func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{balances: map[int]float64{}}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) (int, error) {
	return 0, errors.New("not used")
}

func (r *fakeUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return nil, errors.New("not used")
}

func (r *fakeUserRepo) GetBalance(ctx context.Context, id int) (float64, error) {
	r.mu.Lock()
	b, ok := r.balances[id]
	hook := r.onGetBalance
	r.onGetBalance = nil
	r.mu.Unlock()

	if !ok {
		return 0, errors.New("user not found")
	}
	if hook != nil {
		hook()
	}
	return b, nil
}

func (r *fakeUserRepo) UpdateBalance(ctx context.Context, id int, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return errors.New("update refused")
	}
	r.balances[id] = amount
	return nil
}

func (r *fakeUserRepo) balance(id int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[id]
}

type fakeRoundRepo struct {
	mu      sync.Mutex
	records []*model.RoundRecord
}

func (r *fakeRoundRepo) SaveRound(ctx context.Context, record *model.RoundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRoundRepo) LastFinalMultipliers(ctx context.Context, limit int) ([]float64, error) {
	return nil, nil
}

// fakeClock mirrors the engine's virtual-time driver: Advance fires due
// timers in order, releasing its mutex around each callback.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []fakeTimer
}

type fakeTimer struct {
	due time.Time
	f   func()
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = append(c.timers, fakeTimer{due: c.now.Add(d), f: f})
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		idx := -1
		for i, t := range c.timers {
			if t.due.After(target) {
				continue
			}
			if idx == -1 || t.due.Before(c.timers[idx].due) {
				idx = i
			}
		}
		if idx == -1 {
			c.now = target
			c.mu.Unlock()
			return
		}
		t := c.timers[idx]
		c.timers = append(c.timers[:idx], c.timers[idx+1:]...)
		if t.due.After(c.now) {
			c.now = t.due
		}
		c.mu.Unlock()
		t.f()
	}
}

type steadyRNG struct{ v float64 }

func (s steadyRNG) Float64() float64 { return s.v }

type gameRig struct {
	svc       *serv
	eng       *engine.Engine
	clock     *fakeClock
	userRepo  *fakeUserRepo
	roundRepo *fakeRoundRepo
}

func newGameRig(t *testing.T) *gameRig {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
engine:
  wait_time_min: 1s
  wait_time_max: 1s
  countdown: 1s
  tick_interval: 100ms
  update_interval: 0s
  max_flight_time: 10s
  crashed_delay: 1s
  grace_period: 0s
  growth_rate: 0.1
  multiplier_cap: 100
  crash_time_weight: 0.002
  crash_multiplier_weight: 0.004
  max_crash_chance: 0.5
  history_size: 5
  min_auto_cash_out: 1.01
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := env.NewEngineConfigFromYAML(cfgPath)
	if err != nil {
		t.Fatalf("engine config: %v", err)
	}

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	b := bus.New()
	eng, err := engine.New(cfg, b,
		engine.WithClock(clock),
		engine.WithRandomSource(steadyRNG{v: 0.99}),
	)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	if err := eng.Start(); err != nil {
		t.Fatalf("engine.Start: %v", err)
	}
	t.Cleanup(eng.Stop)

	userRepo := newFakeUserRepo()
	roundRepo := &fakeRoundRepo{}
	svc := NewGameService(eng, b, userRepo, roundRepo, fakeTxManager{}).(*serv)

	return &gameRig{
		svc:       svc,
		eng:       eng,
		clock:     clock,
		userRepo:  userRepo,
		roundRepo: roundRepo,
	}
}

// fly walks the started engine from waiting into the flying phase.
func (r *gameRig) fly() {
	r.clock.Advance(time.Second) // wait
	r.clock.Advance(time.Second) // countdown
}

func TestPlaceBetDebitsBalance(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[1] = 100

	ack, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 30})
	if err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}
	if ack.Balance != 70 {
		t.Fatalf("ack balance = %v, want 70", ack.Balance)
	}
	if ack.Replaced != 0 {
		t.Fatalf("ack replaced = %v, want 0", ack.Replaced)
	}
	if got := rig.userRepo.balance(1); got != 70 {
		t.Fatalf("stored balance = %v, want 70", got)
	}

	amount, settled, ok := rig.eng.ActiveWager("1")
	if !ok || settled || amount != 30 {
		t.Fatalf("engine wager: amount=%v settled=%v ok=%v", amount, settled, ok)
	}
}

func TestPlaceBetInsufficientBalance(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[1] = 10

	_, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 30})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}

	if _, _, ok := rig.eng.ActiveWager("1"); ok {
		t.Fatal("rejected bet left a wager in the engine")
	}
	if got := rig.userRepo.balance(1); got != 10 {
		t.Fatalf("balance changed to %v on a rejected bet", got)
	}
}

func TestPlaceBetReplacementRefundsFirst(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[1] = 100

	if _, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 60}); err != nil {
		t.Fatalf("first bet: %v", err)
	}

	// 40 on hand plus the 60 refund covers the new 70 stake.
	ack, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 70})
	if err != nil {
		t.Fatalf("replacement bet: %v", err)
	}
	if ack.Replaced != 60 {
		t.Fatalf("replaced = %v, want 60", ack.Replaced)
	}
	if ack.Balance != 30 {
		t.Fatalf("balance = %v, want 30", ack.Balance)
	}

	amount, _, ok := rig.eng.ActiveWager("1")
	if !ok || amount != 70 {
		t.Fatalf("engine wager after replacement: amount=%v ok=%v", amount, ok)
	}
}

func TestPlaceBetRejectsConcurrentReplacement(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[1] = 100

	if _, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 60}); err != nil {
		t.Fatalf("first bet: %v", err)
	}

	// A competing request swaps the wager after the funds check counted the
	// 60 refund; the stale refund must not be spent.
	rig.userRepo.onGetBalance = func() {
		if _, err := rig.eng.PlaceBet("1", 25, 0); err != nil {
			t.Errorf("competing bet: %v", err)
		}
	}

	_, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 70})
	if !errors.Is(err, ErrBetConflict) {
		t.Fatalf("got %v, want ErrBetConflict", err)
	}
	if _, _, ok := rig.eng.ActiveWager("1"); ok {
		t.Fatal("conflicted wager left in the engine")
	}
	if got := rig.userRepo.balance(1); got != 40 {
		t.Fatalf("balance = %v, want the 40 left after the first bet", got)
	}
}

func TestPlaceBetRollsBackOnStorageFailure(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[1] = 100
	rig.userRepo.failUpdate = true

	if _, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 30}); err == nil {
		t.Fatal("expected an error from the failed balance update")
	}
	if _, _, ok := rig.eng.ActiveWager("1"); ok {
		t.Fatal("failed debit left a wager in the engine")
	}
}

func TestCashOutCreditsPayout(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[1] = 100

	if _, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 10}); err != nil {
		t.Fatalf("bet: %v", err)
	}
	rig.fly()
	rig.clock.Advance(500 * time.Millisecond)

	ack, err := rig.svc.CashOut(context.Background(), 1)
	if err != nil {
		t.Fatalf("CashOut: %v", err)
	}
	if ack.Multiplier < 1.0 {
		t.Fatalf("multiplier = %v, want at least 1.0", ack.Multiplier)
	}
	if ack.Payout != 10*ack.Multiplier {
		t.Fatalf("payout = %v, want %v", ack.Payout, 10*ack.Multiplier)
	}
	if want := 90 + ack.Payout; ack.Balance != want {
		t.Fatalf("balance = %v, want %v", ack.Balance, want)
	}
	if got := rig.userRepo.balance(1); got != ack.Balance {
		t.Fatalf("stored balance = %v, ack %v", got, ack.Balance)
	}

	// The engine refuses a second settlement.
	if _, err := rig.svc.CashOut(context.Background(), 1); !errors.Is(err, engine.ErrAlreadyCashedOut) {
		t.Fatalf("second cash out: got %v, want ErrAlreadyCashedOut", err)
	}
}

func TestAutoCashOutCredit(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[7] = 50

	rig.svc.creditAutoCashOut(model.AutoCashedOutEvent{
		RoundID:    1,
		PlayerID:   "7",
		BetAmount:  10,
		Multiplier: 2.0,
		Payout:     20,
	})

	if got := rig.userRepo.balance(7); got != 70 {
		t.Fatalf("balance after auto credit = %v, want 70", got)
	}
}

func TestPersistRound(t *testing.T) {
	rig := newGameRig(t)

	rig.svc.persistRound(model.RoundSettledEvent{
		RoundID:         3,
		FinalMultiplier: 2.5,
		Reason:          "crashed",
		Participants: []model.WagerOutcome{
			{PlayerID: "1", BetAmount: 10},
		},
	})

	rig.roundRepo.mu.Lock()
	defer rig.roundRepo.mu.Unlock()
	if len(rig.roundRepo.records) != 1 {
		t.Fatalf("got %d persisted rounds, want 1", len(rig.roundRepo.records))
	}
	rec := rig.roundRepo.records[0]
	if rec.RoundID != 3 || rec.FinalMultiplier != 2.5 || len(rec.Outcomes) != 1 {
		t.Fatalf("persisted record = %+v", rec)
	}
}

func TestDisconnectDropsWager(t *testing.T) {
	rig := newGameRig(t)
	rig.userRepo.balances[1] = 100

	if _, err := rig.svc.PlaceBet(context.Background(), 1, model.BetRequest{Amount: 30}); err != nil {
		t.Fatalf("bet: %v", err)
	}
	rig.svc.Disconnect(1)

	if _, _, ok := rig.eng.ActiveWager("1"); ok {
		t.Fatal("wager survived the disconnect")
	}
}
