package admin

import (
	dto "crash_backend/internal/api/dto/game"
	"crash_backend/internal/engine"
	"crash_backend/internal/service"
	"crash_backend/pkg/req"
	"crash_backend/pkg/resp"
	"errors"
	"io"
	"log"
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

// Crash forces the flying round to end immediately. The route is gated by
// the admin token middleware; the engine itself does no authorization.
func (h *Handler) Crash(w http.ResponseWriter, r *http.Request) {
	// An empty body is fine; the reason just defaults.
	payload, err := req.Decode[dto.CrashRequest](r.Body)
	if err != nil && !errors.Is(err, io.EOF) {
		resp.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if payload.Reason == "" {
		payload.Reason = "admin_override"
	}

	if err := h.serv.ForceCrash(payload.Reason); err != nil {
		if errors.Is(err, engine.ErrNotFlying) {
			resp.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		resp.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("admin: round force-crashed (%s)", payload.Reason)
	w.WriteHeader(http.StatusNoContent)
}
