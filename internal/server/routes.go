package server

// #region imports
import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// #endregion

// #region turn

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
		// Attachment is accepted and ignored; the engine decides on text
		// alone.
		Attachment json.RawMessage `json:"attachment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := s.engine.ProcessTurn(r.Context(), req.Text, req.Voice)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// #endregion

// #region state

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics":           snap.Metrics,
		"phase":             snap.Phase,
		"voice_preferences": snap.Prefs,
		"last_voice":        snap.LastVoice,
		"trust_seal":        snap.Metrics.TrustSeal(),
	})
}

func (s *Server) handlePhase(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"phase": s.engine.CurrentPhase(),
	})
}

// #endregion

// #region voice

func (s *Server) handleVoiceFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Voice     string `json:"voice"`
		Direction int    `json:"direction"` // +1 or -1
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Voice == "" {
		writeError(w, http.StatusBadRequest, "voice required")
		return
	}

	mult, err := s.engine.AdjustVoicePreference(req.Voice, req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"voice":      req.Voice,
		"multiplier": mult,
	})
}

func (s *Server) handleVoiceOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Voice string `json:"voice"` // empty clears the override
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.engine.SetVoiceOverride(req.Voice); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// #endregion

// #region ritual

func (s *Server) handleRitualPending(w http.ResponseWriter, r *http.Request) {
	pending := s.engine.PendingRitual()
	if pending == nil {
		writeJSON(w, http.StatusOK, map[string]any{"pending": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": true,
		"ritual":  pending,
	})
}

func (s *Server) handleRitualConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if !req.Accept {
		if err := s.engine.DeferRitual(); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deferred"})
		return
	}

	executed, err := s.engine.ConfirmRitual(r.Context())
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "executed",
		"ritual": executed.Ritual,
		"phase":  s.engine.CurrentPhase(),
	})
}

// #endregion

// #region eval

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "responseID")
	res, err := s.engine.Eval(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "eval not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// #endregion

// #region health

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"phase":   s.engine.CurrentPhase(),
	})
}

// #endregion

// #region helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// #endregion
