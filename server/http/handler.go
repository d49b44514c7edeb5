package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/w-h-a/ragchat"
)

// Source hands out the current RAGChat. *ragchat.Loader satisfies it.
type Source interface {
	Get(ctx context.Context) (*ragchat.RAGChat, error)
	Reset() error
}

type handler struct {
	source Source
}

type sessionRequest struct {
	Id string `json:"id"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type askRequest struct {
	Query  string `json:"query"`
	DryRun bool   `json:"dry_run"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	n, err := chat.Refresh(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to refresh", "error", err)
		writeError(w, http.StatusBadGateway, "error retrieving data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"collection": chat.Collection(), "count": n})
}

func (h *handler) collection(w http.ResponseWriter, r *http.Request) {
	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	n, err := chat.Count(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to count", "error", err)
		writeError(w, http.StatusBadGateway, "error retrieving data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"collection": chat.Collection(), "count": n})
}

func (h *handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	if req.DryRun {
		prompt, err := chat.Prompt(r.Context(), req.Query)
		if errors.Is(err, ragchat.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": chat.Answer(r.Context(), req.Query)})
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	id, err := chat.CreateSession(r.Context(), req.Id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"ids": chat.ListSessionIds(r.Context())})
}

func (h *handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	chat.DeleteSession(r.Context(), mux.Vars(r)["id"])

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	turns, err := chat.History(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, ragchat.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string][]ragchat.Turn{"turns": turns})
}

func (h *handler) message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	answer, err := chat.Chat(r.Context(), mux.Vars(r)["id"], strings.TrimSpace(req.Text))
	if errors.Is(err, ragchat.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (h *handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	chat, ok := h.chat(w, r)
	if !ok {
		return
	}

	err := chat.ClearHistory(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, ragchat.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.source.Reset(); err != nil {
		slog.WarnContext(r.Context(), "failed to release pipeline", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) (*ragchat.RAGChat, bool) {
	chat, err := h.source.Get(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to build pipeline", "error", err)
		writeError(w, http.StatusServiceUnavailable, "pipeline unavailable")
		return nil, false
	}
	return chat, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// NewHandler routes the chat API onto source.
func NewHandler(source Source) http.Handler {
	h := &handler{source: source}

	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/refresh", h.refresh).Methods(http.MethodPost)
	api.HandleFunc("/reset", h.reset).Methods(http.MethodPost)
	api.HandleFunc("/ask", h.ask).Methods(http.MethodPost)
	api.HandleFunc("/collection", h.collection).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.createSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.deleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/messages", h.history).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/messages", h.message).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/messages", h.clearHistory).Methods(http.MethodDelete)

	return r
}
