package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"svw.info/sheep/internal/domain"
	"svw.info/sheep/internal/usecase"
)

type Handler struct {
	UC *usecase.Service
}

func New(uc *usecase.Service) *Handler { return &Handler{UC: uc} }

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/game", h.handleGame)
	mux.HandleFunc("/api/game/state", h.handleState)
	mux.HandleFunc("/api/game/select", h.handleSelect)
	mux.HandleFunc("/api/game/restart", h.handleRestart)
	mux.HandleFunc("/api/game/hint", h.handleHint)
	mux.HandleFunc("/api/game/solve", h.handleSolve)
	mux.HandleFunc("/api/games", h.handleList)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps use case errors to HTTP codes.
func statusFor(err error) int {
	if errors.Is(err, usecase.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
}

// ---- New / End ----

type newReq struct {
	Seed int64 `json:"seed,omitempty"`
}
type gameResp struct {
	ID    string           `json:"id,omitempty"`
	State *domain.Snapshot `json:"state,omitempty"`
	Error string           `json:"error,omitempty"`
}

func (h *Handler) handleGame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	switch r.Method {
	case http.MethodPost:
		h.handleNew(w, r)
	case http.MethodDelete:
		h.handleEnd(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleNew(w http.ResponseWriter, r *http.Request) {
	var req newReq
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, gameResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	snap, err := h.UC.NewGame(r.Context(), req.Seed)
	if err != nil {
		writeJSON(w, statusFor(err), gameResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, gameResp{ID: snap.ID, State: &snap})
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, gameResp{Error: "missing id"})
		return
	}
	if err := h.UC.End(r.Context(), id); err != nil {
		writeJSON(w, statusFor(err), gameResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, gameResp{ID: id})
}

// ---- State ----

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, gameResp{Error: "missing id"})
		return
	}
	snap, err := h.UC.State(r.Context(), id)
	if err != nil {
		writeJSON(w, statusFor(err), gameResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, gameResp{ID: id, State: &snap})
}

// ---- Select ----

type selectReq struct {
	ID     string `json:"id"`
	TileID int    `json:"tileId"`
}
type selectResp struct {
	Outcome    domain.Outcome   `json:"outcome"`
	Eliminated bool             `json:"eliminated"`
	State      *domain.Snapshot `json:"state,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req selectReq
	if err := decode(r, &req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, selectResp{Error: "invalid JSON or missing id"})
		return
	}
	out, snap, err := h.UC.Select(r.Context(), req.ID, req.TileID)
	if err != nil {
		writeJSON(w, statusFor(err), selectResp{Outcome: out, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, selectResp{
		Outcome:    out,
		Eliminated: out == domain.OutcomeEliminated,
		State:      &snap,
	})
}

// ---- Restart ----

type restartReq struct {
	ID   string `json:"id"`
	Seed int64  `json:"seed,omitempty"`
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req restartReq
	if err := decode(r, &req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, gameResp{Error: "invalid JSON or missing id"})
		return
	}
	snap, err := h.UC.Restart(r.Context(), req.ID, req.Seed)
	if err != nil {
		writeJSON(w, statusFor(err), gameResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, gameResp{ID: req.ID, State: &snap})
}

// ---- Hint ----

type hintReq struct {
	ID string `json:"id"`
}
type hintResp struct {
	Found bool         `json:"found"`
	Hint  *domain.Hint `json:"hint,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req hintReq
	if err := decode(r, &req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, hintResp{Error: "invalid JSON or missing id"})
		return
	}
	hh, ok, err := h.UC.Hint(r.Context(), req.ID)
	if err != nil {
		writeJSON(w, statusFor(err), hintResp{Error: err.Error()})
		return
	}
	resp := hintResp{Found: ok}
	if ok {
		resp.Hint = &hh
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- Solve ----

type solveResp struct {
	domain.Solution
	Error string `json:"error,omitempty"`
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req hintReq
	if err := decode(r, &req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, solveResp{Error: "invalid JSON or missing id"})
		return
	}
	res, err := h.UC.Solve(r.Context(), req.ID)
	if err != nil {
		writeJSON(w, statusFor(err), solveResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, solveResp{Solution: res})
}

// ---- List ----

type listResp struct {
	Games []domain.GameMeta `json:"games"`
	Error string            `json:"error,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	gs, err := h.UC.List(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), listResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, listResp{Games: gs})
}
