package game

import (
	dto "crash_backend/internal/api/dto/game"
	"crash_backend/internal/converter"
	"crash_backend/internal/engine"
	"crash_backend/internal/middleware"
	"crash_backend/internal/service"
	gameserv "crash_backend/internal/service/game"
	"crash_backend/pkg/req"
	"crash_backend/pkg/resp"
	"errors"
	"net/http"
)

type HandlerDeps struct {
	Serv service.GameService
}

type Handler struct {
	serv service.GameService
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{serv: deps.Serv}
}

// Bet places a wager for the authenticated player.
func (h *Handler) Bet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	payload, err := req.Decode[dto.BetRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}

	ack, err := h.serv.PlaceBet(r.Context(), userID, converter.ToBetRequest(payload))
	if err != nil {
		writeCommandError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBetResponse(*ack))
}

// CashOut settles the authenticated player's wager at the current multiplier.
func (h *Handler) CashOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ack, err := h.serv.CashOut(r.Context(), userID)
	if err != nil {
		writeCommandError(w, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToCashOutResponse(*ack))
}

// State returns a consistent snapshot of the current round.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStateResponse(h.serv.Snapshot()))
}

// History returns past final multipliers, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, dto.HistoryResponse{
		Multipliers: h.serv.History(),
	})
}

// Stats returns running aggregates over completed rounds.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStatsResponse(h.serv.Stats()))
}

// writeCommandError maps engine rejections onto HTTP statuses, keeping the
// reason string intact for the client.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrThresholdTooLow):
		resp.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrBetsClosed),
		errors.Is(err, engine.ErrNotFlying),
		errors.Is(err, engine.ErrNoActiveBet),
		errors.Is(err, engine.ErrAlreadyCashedOut),
		errors.Is(err, gameserv.ErrInsufficientBalance),
		errors.Is(err, gameserv.ErrBetConflict):
		resp.WriteError(w, http.StatusConflict, err.Error())
	default:
		resp.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
