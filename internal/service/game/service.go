package game

import (
	"crash_backend/internal/bus"
	"crash_backend/internal/engine"
	"crash_backend/internal/model"
	"crash_backend/internal/repository"
	"crash_backend/internal/service"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type serv struct {
	eng       *engine.Engine
	userRepo  repository.UserRepository
	roundRepo repository.RoundRepository
	txManager trm.Manager
}

// NewGameService wires the engine to bookkeeping and subscribes the
// settlement handlers on the event bus.
func NewGameService(
	eng *engine.Engine,
	b *bus.Bus,
	userRepo repository.UserRepository,
	roundRepo repository.RoundRepository,
	txManager trm.Manager,
) service.GameService {
	s := &serv{
		eng:       eng,
		userRepo:  userRepo,
		roundRepo: roundRepo,
		txManager: txManager,
	}

	b.Subscribe(model.EventAutoCashedOut, s.onAutoCashedOut)
	b.Subscribe(model.EventRoundSettled, s.onRoundSettled)

	return s
}

// Disconnect drops the player's wager bookkeeping for the current round.
func (s *serv) Disconnect(userID int) {
	s.eng.RemovePlayer(playerID(userID))
}

// ForceCrash ends a flying round; authorization happens at the API layer.
func (s *serv) ForceCrash(reason string) error {
	return s.eng.ForceCrash(reason)
}

func (s *serv) Snapshot() model.Snapshot {
	return s.eng.Snapshot()
}

func (s *serv) History() []float64 {
	return s.eng.History()
}

func (s *serv) Stats() model.Stats {
	return s.eng.Stats()
}
