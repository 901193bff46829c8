package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-agent/internal/types"
)

type fakeEngine struct {
	actReq   types.ActRequest
	stepReq  types.StepRequest
	resetSym string
	err      error
	panicMsg string
}

func (f *fakeEngine) Act(_ context.Context, req types.ActRequest) (types.Decision, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.actReq = req
	if f.err != nil {
		return types.Decision{}, f.err
	}
	return types.Decision{Action: types.Hold, Confidence: 0, Reasoning: "Market is stable."}, nil
}

func (f *fakeEngine) Step(_ context.Context, req types.StepRequest) (types.StepResult, error) {
	f.stepReq = req
	return types.StepResult{Reward: 0.1, Info: types.StepInfo{TotalValue: types.Opt(1097.8)}}, f.err
}

func (f *fakeEngine) Reset(_ context.Context, symbol string) (types.Observation, types.Account, error) {
	f.resetSym = symbol
	return types.Observation{Price: types.Opt(100)}, types.Account{Balance: 1000, InitialBalance: 1000, State: types.Flat}, nil
}

func (f *fakeEngine) Account(context.Context) types.Account {
	return types.Account{Position: 9.99, EntryPrice: 100, InitialBalance: 1000, State: types.Long}
}

func (f *fakeEngine) Evolve(context.Context) (string, error) {
	return "Evolution cycle started (simulation)", nil
}

func newTestServer(eng *fakeEngine) http.Handler {
	gin.SetMode(gin.TestMode)
	return New(Config{AllowOrigins: []string{"http://localhost:3000"}}, eng, Info{
		Decider: "crossover", Source: "LIVE", Exchange: "binance", Fallback: true,
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestActEmptyObservation(t *testing.T) {
	eng := &fakeEngine{}
	w := do(t, newTestServer(eng), http.MethodPost, "/act", `{"symbol":"BTC/USDT","price":101.5}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"action":"Hold","reasoning":"Market is stable.","confidence":0,"metrics":{}}`, w.Body.String())
	assert.Equal(t, 101.5, *eng.actReq.Price)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestActEmptyBody(t *testing.T) {
	eng := &fakeEngine{}
	w := do(t, newTestServer(eng), http.MethodPost, "/act", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, eng.actReq.Symbol)
}

func TestActMalformedJSON(t *testing.T) {
	w := do(t, newTestServer(&fakeEngine{}), http.MethodPost, "/act", `{"price":"abc"`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode(t, w), "detail")
}

func TestActInternalError(t *testing.T) {
	w := do(t, newTestServer(&fakeEngine{err: errors.New("decider exploded")}), http.MethodPost, "/act", `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "decider exploded", decode(t, w)["detail"])
}

func TestActPanicRecovered(t *testing.T) {
	w := do(t, newTestServer(&fakeEngine{panicMsg: "nil map"}), http.MethodPost, "/act", `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "nil map", decode(t, w)["detail"])
}

func TestEvolve(t *testing.T) {
	w := do(t, newTestServer(&fakeEngine{}), http.MethodPost, "/evolve", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"Evolution cycle started (simulation)"}`, w.Body.String())
}

func TestStepActionForms(t *testing.T) {
	for body, want := range map[string]string{
		`{"action":"Buy"}`:   "Buy",
		`{"action":1}`:       "1",
		`{"action":"Short"}`: "Short",
	} {
		eng := &fakeEngine{}
		w := do(t, newTestServer(eng), http.MethodPost, "/step", body)
		require.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, want, eng.stepReq.Action)

		m := decode(t, w)
		assert.Equal(t, 0.1, m["reward"])
		assert.Equal(t, false, m["done"])
		assert.Equal(t, 1097.8, m["info"].(map[string]any)["total_value"])
	}
}

func TestStepRequiresAction(t *testing.T) {
	for _, body := range []string{`{}`, `{"action":true}`} {
		w := do(t, newTestServer(&fakeEngine{}), http.MethodPost, "/step", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}
}

func TestReset(t *testing.T) {
	eng := &fakeEngine{}
	w := do(t, newTestServer(eng), http.MethodPost, "/reset", `{"symbol":"ETH/USDT"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ETH/USDT", eng.resetSym)

	m := decode(t, w)
	assert.Equal(t, 1000.0, m["account"].(map[string]any)["balance"])
	assert.Equal(t, 100.0, m["observation"].(map[string]any)["price"])
}

func TestAccount(t *testing.T) {
	w := do(t, newTestServer(&fakeEngine{}), http.MethodGet, "/account", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":0,"position":9.99,"entry_price":100,"initial_balance":1000,"state":"Long"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(&fakeEngine{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	m := decode(t, w)
	assert.Equal(t, "crossover", m["decider"])
	md := m["market_data"].(map[string]any)
	assert.Equal(t, "binance", md["exchange"])
	assert.Equal(t, true, md["fallback"])
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/act", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	newTestServer(&fakeEngine{}).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	newTestServer(&fakeEngine{}).ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
