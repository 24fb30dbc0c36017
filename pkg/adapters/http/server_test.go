package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/internal/metrics"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, *StreamManager) {
	t.Helper()
	streams := NewStreamManager(nil)
	svc := heartaxis.New(heartaxis.WithPublisher(streams))
	return NewHandler(svc, WithStreams(streams)), streams
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCalculate(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "POST", "/calculate", `{"use_sums":true,"inputs":{"sumI":3,"sumIII":3}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var out domain.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.InDelta(t, 60.0, out.Angle, 1e-9)
	assert.Equal(t, "60.0°", out.Display)
	assert.False(t, out.FormInvalid)

	w = do(t, h, "POST", "/calculate", `{"use_sums":true,"inputs":{"sumI":0,"sumIII":0}}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ERROR", body["display"])
	assert.NotContains(t, body, "angle")
	assert.Equal(t, []any{"allValueIsZero"}, body["rules"])

	w = do(t, h, "POST", "/calculate", `{"use_sums":true,"inputs":{"sumII":1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidate(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "POST", "/validate", `{"use_sums":false,"inputs":{"r1":"abc","qs1":0,"r3":70,"qs3":null}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var res domain.ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []domain.Rule{domain.RuleInvalidNumber}, res.FieldRules(domain.FieldR1))
	assert.Equal(t, []domain.Rule{domain.RuleInvalidMaximum}, res.FieldRules(domain.FieldR3))
	assert.Equal(t, []domain.Rule{domain.RuleInvalidNumber, domain.RuleRequired}, res.FieldRules(domain.FieldQS3))
}

func TestSessionEndpoints(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "POST", "/sessions/p1?use_sums=false", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[heartaxis.Result](t, w)
	assert.False(t, res.Session.UseSums)

	w = do(t, h, "PUT", "/sessions/p1/fields/r1", `{"value":4}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, "PUT", "/sessions/p1/fields/r3", `{"value":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, "PUT", "/sessions/p1/fields/qs1", `{"value":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[heartaxis.Result](t, w)
	assert.InDelta(t, 60.0, res.Outcome.Angle, 1e-9)

	w = do(t, h, "GET", "/sessions/p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[heartaxis.Result](t, w)
	assert.True(t, res.Session.Inputs.R1.Equal(domain.Number(4)))

	w = do(t, h, "PUT", "/sessions/p1/mode", `{"use_sums":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[heartaxis.Result](t, w)
	assert.Equal(t, domain.ModeSums, res.Outcome.Mode)
	assert.True(t, res.Session.Inputs.R1.Equal(domain.Number(0)), "waves reset on switch")

	w = do(t, h, "POST", "/sessions/p1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/sessions/p1/end", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "POST", "/sessions/p1", "")
	require.Equal(t, http.StatusOK, w.Code, "second start restores")
	assert.True(t, decode[heartaxis.Result](t, w).Restored)

	w = do(t, h, "GET", "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"p1"}, decode[[]string](t, w))

	w = do(t, h, "DELETE", "/sessions/p1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/sessions/p1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "PUT", "/sessions/nope/fields/sumI", `{"value":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "POST", "/sessions/p2?use_sums=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	do(t, h, "POST", "/sessions/p2", "")
	w = do(t, h, "PUT", "/sessions/p2/fields/sumII", `{"value":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, "PUT", "/sessions/p2/mode", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInfoSettingsAndSpec(t *testing.T) {
	h, _ := newTestHandler(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, "GET", "/info", "")
	info := decode[map[string]string](t, w)
	assert.Equal(t, strings.TrimSpace(heartaxis.Version), info["version"])
	assert.NotEqual(t, "unknown", info["api_version"])

	w = do(t, h, "GET", "/settings", "")
	assert.Equal(t, domain.DefaultSettings(), decode[domain.Settings](t, w))

	w = do(t, h, "GET", "/openapi.yaml", "")
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	_, err := GetSwagger()
	assert.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	svc := heartaxis.New(heartaxis.WithHooks(heartaxis.Hooks{
		OnOutcome: func(_ string, o domain.Outcome) { collector.Observe(o) },
	}))
	h := NewHandler(svc, WithMetrics(reg))

	do(t, h, "POST", "/calculate", `{"use_sums":true,"inputs":{"sumI":1,"sumIII":1}}`)

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `heartaxis_outcomes_total{mode="sums",result="valid"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestHandler(t)
	w := do(t, h, "OPTIONS", "/calculate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamManager_Publish(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	require.NoError(t, sm.Publish(context.Background(), "s", domain.Outcome{Mode: domain.ModeSums, Display: "ERROR"}))
	select {
	case msg := <-ch:
		assert.Contains(t, string(msg), `"display":"ERROR"`)
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
	sm.Broadcast("s", []byte("dropped"))
}

func TestSubscribeEvents(t *testing.T) {
	h, streams := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/s1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := make([]byte, 512)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: ping")

	require.Eventually(t, func() bool { return streams.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)
	do(t, h, "POST", "/sessions/s1", "")

	var got strings.Builder
	require.Eventually(t, func() bool {
		n, _ := resp.Body.Read(buf)
		got.Write(buf[:n])
		return strings.Contains(got.String(), "event: outcome")
	}, 2*time.Second, 10*time.Millisecond)
}

// readLive returns the next message of the given type, skipping others.
func readLive(t *testing.T, conn *websocket.Conn, typ string) LiveResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var resp LiveResponse
		require.NoError(t, conn.ReadJSON(&resp))
		if resp.Type == typ {
			return resp
		}
	}
}

func dialLive(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLiveSession(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dialLive(t, srv, "/sessions/live1/live")

	resp := readLive(t, conn, "state")
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Outcome.FormInvalid)

	require.NoError(t, conn.WriteJSON(LiveMessage{Action: "set", Field: "sumI", Value: 1}))
	resp = readLive(t, conn, "state")
	assert.InDelta(t, 30.0, resp.Outcome.Angle, 1e-9)

	require.NoError(t, conn.WriteJSON(LiveMessage{Action: "set", Field: "bogus", Value: 1}))
	readLive(t, conn, "error")

	require.NoError(t, conn.WriteJSON(LiveMessage{Action: "end"}))
	readLive(t, conn, "state")
}

func TestLiveSession_ForwardsEditsFromOtherClients(t *testing.T) {
	h, streams := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dialLive(t, srv, "/sessions/p1/live")
	readLive(t, conn, "state")
	require.Eventually(t, func() bool { return streams.Subscribers("p1") == 1 }, time.Second, 10*time.Millisecond)

	w := do(t, h, "PUT", "/sessions/p1/fields/sumI", `{"value":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := readLive(t, conn, "update")
	var out domain.Outcome
	require.NoError(t, json.Unmarshal(resp.Update, &out))
	assert.InDelta(t, 30.0, out.Angle, 1e-9)
	assert.Equal(t, "30.0°", out.Display)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return streams.Subscribers("p1") == 0 }, 2*time.Second, 10*time.Millisecond,
		"closing the socket unsubscribes")
}

func TestLiveSession_UseSumsQuery(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dialLive(t, srv, "/sessions/w1/live?use_sums=false")
	resp := readLive(t, conn, "state")
	assert.Equal(t, domain.ModeWaves, resp.Outcome.Mode)

	w := do(t, h, "GET", "/sessions/w2/live?use_sums=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
