package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iskra-project/spark-engine/internal/engine"
	"github.com/iskra-project/spark-engine/internal/generate"
	"github.com/iskra-project/spark-engine/internal/phase"
	"github.com/iskra-project/spark-engine/internal/playbook"
	"github.com/iskra-project/spark-engine/internal/store"
)

func newTestServer(t *testing.T, seed *store.Snapshot) *Server {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "spark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if seed != nil {
		require.NoError(t, st.SaveSnapshot(*seed))
	}

	e, err := engine.New(zap.NewNop().Sugar(), st, &generate.Mock{}, engine.Options{
		Thresholds: playbook.DefaultThresholds(),
	})
	require.NoError(t, err)
	return New(e, "test")
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	fields := map[string]json.RawMessage{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	}
	return rec, fields
}

func str(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec, fields := doJSON(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", str(t, fields["status"]))
	require.NotEmpty(t, fields["phase"])
}

func TestTurnEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rec, fields := doJSON(t, s, http.MethodPost, "/api/turn", map[string]string{
		"text": "everything hurts and nothing makes sense anymore",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, str(t, fields["turn_id"]))
	require.NotEmpty(t, str(t, fields["voice"]))
	require.NotEmpty(t, str(t, fields["phase"]))
	require.Contains(t, fields, "decision")
	require.Contains(t, fields, "metrics")
}

func TestTurnEndpointBadJSON(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/turn", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStateEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rec, fields := doJSON(t, s, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, fields, "metrics")
	require.Contains(t, fields, "voice_preferences")

	var seal float64
	require.NoError(t, json.Unmarshal(fields["trust_seal"], &seal))
	require.GreaterOrEqual(t, seal, 0.0)
	require.LessOrEqual(t, seal, 1.0)
}

func TestVoiceFeedback(t *testing.T) {
	s := newTestServer(t, nil)
	rec, fields := doJSON(t, s, http.MethodPost, "/api/voice/feedback", map[string]any{
		"voice": "KAIN", "direction": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var mult float64
	require.NoError(t, json.Unmarshal(fields["multiplier"], &mult))
	require.InDelta(t, 1.2, mult, 1e-9)

	rec, _ = doJSON(t, s, http.MethodPost, "/api/voice/feedback", map[string]any{
		"voice": "NOBODY", "direction": 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVoiceOverride(t *testing.T) {
	s := newTestServer(t, nil)
	rec, _ := doJSON(t, s, http.MethodPost, "/api/voice/override", map[string]string{"voice": "PINO"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, fields := doJSON(t, s, http.MethodPost, "/api/turn", map[string]string{"text": "hello there friend"})
	require.Equal(t, "PINO", str(t, fields["voice"]))

	rec, _ = doJSON(t, s, http.MethodPost, "/api/voice/override", map[string]string{"voice": "NOBODY"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRitualConfirmFlow(t *testing.T) {
	seed := store.DefaultSnapshot()
	seed.Metrics.Drift = 0.7
	seed.Metrics.Trust = 0.4
	seed.Metrics.Normalize()
	seed.Phase = phase.Classify(seed.Metrics)

	s := newTestServer(t, &seed)

	// No trigger yet.
	rec, _ := doJSON(t, s, http.MethodPost, "/api/ritual/confirm", map[string]bool{"accept": true})
	require.Equal(t, http.StatusConflict, rec.Code)

	_, fields := doJSON(t, s, http.MethodPost, "/api/turn", map[string]string{"text": "ok"})
	var trigger struct {
		ShouldTrigger bool   `json:"should_trigger"`
		Ritual        string `json:"ritual"`
	}
	require.NoError(t, json.Unmarshal(fields["ritual"], &trigger))
	require.True(t, trigger.ShouldTrigger)
	require.Equal(t, "PHOENIX", trigger.Ritual)

	rec, fields = doJSON(t, s, http.MethodGet, "/api/ritual/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending bool
	require.NoError(t, json.Unmarshal(fields["pending"], &pending))
	require.True(t, pending)

	rec, fields = doJSON(t, s, http.MethodPost, "/api/ritual/confirm", map[string]bool{"accept": true})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "executed", str(t, fields["status"]))
	require.Equal(t, string(phase.Transition), str(t, fields["phase"]))
}

func TestRitualDefer(t *testing.T) {
	seed := store.DefaultSnapshot()
	seed.Metrics.Drift = 0.7
	seed.Metrics.Trust = 0.4
	seed.Metrics.Normalize()
	seed.Phase = phase.Classify(seed.Metrics)

	s := newTestServer(t, &seed)
	doJSON(t, s, http.MethodPost, "/api/turn", map[string]string{"text": "ok"})

	rec, fields := doJSON(t, s, http.MethodPost, "/api/ritual/confirm", map[string]bool{"accept": false})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "deferred", str(t, fields["status"]))
}

func TestEvalEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	_, fields := doJSON(t, s, http.MethodPost, "/api/turn", map[string]string{"text": "hello there friend"})
	id := str(t, fields["turn_id"])

	rec, evalFields := doJSON(t, s, http.MethodGet, "/api/eval/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, str(t, evalFields["grade"]))

	rec, _ = doJSON(t, s, http.MethodGet, "/api/eval/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
