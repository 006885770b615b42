package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sweatpet/internal/engine"
	"sweatpet/internal/pet"
	"sweatpet/internal/store"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	eng := engine.New(st,
		engine.WithClock(func() time.Time { return fixedNow }),
		engine.WithLocation(time.UTC))
	_, err := eng.Load(context.Background())
	require.NoError(t, err)
	return New(eng, nil), st
}

func newRequest(t *testing.T, ts *httptest.Server, method, path, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	return send(t, ts, newRequest(t, ts, method, path, body))
}

func send(t *testing.T, ts *httptest.Server, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp, out
}

func TestAPI_PetAndSteps(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := do(t, ts, http.MethodGet, "/api/pet", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.EqualValues(t, 1, body["stage"])
	assert.EqualValues(t, 50, body["pet"].(map[string]any)["health"])

	resp, body = do(t, ts, http.MethodPost, "/api/steps", `{"steps":1000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deltas := body["intake"].(map[string]any)["deltas"].(map[string]any)
	assert.EqualValues(t, 10, deltas["health"])
	p := body["pet"].(map[string]any)
	assert.EqualValues(t, 60, p["health"])
	assert.EqualValues(t, 1000, p["totalSteps"])

	resp, body = do(t, ts, http.MethodPost, "/api/steps", `{"steps":2100}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	levelUp := body["intake"].(map[string]any)["levelUp"].(map[string]any)
	assert.EqualValues(t, 1, levelUp["from"])
	assert.EqualValues(t, 2, levelUp["to"])
}

func TestAPI_StepsValidation(t *testing.T) {
	s, st := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	writes := st.Writes()

	for _, body := range []string{
		`{"steps":0}`, `{"steps":-5}`, `{"steps":"ten"}`, `{"steps":1.5}`, `nope`,
		fmt.Sprintf(`{"steps":%d}`, pet.MaxCounter+1),
		`{"steps":99999999999999999999999}`,
	} {
		resp, out := do(t, ts, http.MethodPost, "/api/steps", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.NotEmpty(t, out["error"], body)
	}
	assert.Equal(t, writes, st.Writes())

	resp, _ := do(t, ts, http.MethodGet, "/api/steps", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAPI_StepsUpToCeiling(t *testing.T) {
	s, st := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := do(t, ts, http.MethodPost, "/api/steps", fmt.Sprintf(`{"steps":%d}`, pet.MaxCounter))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, pet.MaxCounter, body["pet"].(map[string]any)["totalSteps"])
	writes := st.Writes()

	resp, body = do(t, ts, http.MethodPost, "/api/steps", `{"steps":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "exceed")
	assert.Equal(t, writes, st.Writes())
}

func TestAPI_RejectsCrossOriginWrites(t *testing.T) {
	s, st := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	writes := st.Writes()

	for _, path := range []string{"/api/steps", "/api/steps/reset-today", "/api/care/feed", "/api/import", "/api/reset"} {
		req := newRequest(t, ts, http.MethodPost, path, `{"steps":1000}`)
		req.Header.Set("Origin", "https://evil.example")
		resp, _ := send(t, ts, req)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
	assert.Equal(t, writes, st.Writes())

	req := newRequest(t, ts, http.MethodGet, "/api/pet", "")
	req.Header.Set("Origin", "https://evil.example")
	resp, _ := send(t, ts, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = newRequest(t, ts, http.MethodPost, "/api/steps", `{"steps":1000}`)
	req.Header.Set("Origin", ts.URL)
	resp, body := send(t, ts, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1000, body["pet"].(map[string]any)["totalSteps"])
}

func TestAPI_RequiresJSONContentType(t *testing.T) {
	s, st := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	writes := st.Writes()

	for _, path := range []string{"/api/steps", "/api/import"} {
		for _, contentType := range []string{"", "text/plain", "application/x-www-form-urlencoded"} {
			req := newRequest(t, ts, http.MethodPost, path, `{"steps":1000}`)
			req.Header.Set("Content-Type", contentType)
			resp, _ := send(t, ts, req)
			assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode, path+" "+contentType)
		}
	}
	assert.Equal(t, writes, st.Writes())

	req := newRequest(t, ts, http.MethodPost, "/api/steps", `{"steps":1000}`)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, _ := send(t, ts, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_CareAndResetToday(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, body := do(t, ts, http.MethodPost, "/api/care/train", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "Training")
	assert.EqualValues(t, 20, body["pet"].(map[string]any)["pet"].(map[string]any)["strength"])

	resp, _ = do(t, ts, http.MethodPost, "/api/care/dance", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	do(t, ts, http.MethodPost, "/api/steps", `{"steps":500}`)
	resp, body = do(t, ts, http.MethodPost, "/api/steps/reset-today", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := body["pet"].(map[string]any)
	assert.EqualValues(t, 0, p["stepsToday"])
	assert.EqualValues(t, 500, p["totalSteps"])
}

func TestAPI_AchievementsAndActivity(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	do(t, ts, http.MethodPost, "/api/steps", `{"steps":1200}`)

	resp, err := ts.Client().Get(ts.URL + "/api/achievements")
	require.NoError(t, err)
	defer resp.Body.Close()
	var achievements []achievementView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&achievements))
	require.Len(t, achievements, 9)
	assert.Equal(t, "steps-1k", achievements[0].ID)
	assert.True(t, achievements[0].Unlocked)
	assert.False(t, achievements[1].Unlocked)

	resp2, body := do(t, ts, http.MethodGet, "/api/activity", "")
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	days := body["days"].([]any)
	require.Len(t, days, 7)
	assert.Equal(t, "Mon", days[0].(map[string]any)["day"])
	assert.EqualValues(t, 1200, days[0].(map[string]any)["steps"])
	assert.EqualValues(t, 1200, body["total"])
}

func TestAPI_ExportImportReset(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	do(t, ts, http.MethodPost, "/api/steps", `{"steps":4000}`)

	resp, err := ts.Client().Get(ts.URL + "/api/export")
	require.NoError(t, err)
	exported, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "sweat_pets_data.json")
	assert.Contains(t, string(exported), `"petData": {`)

	resp, body := do(t, ts, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["pet"].(map[string]any)["totalSteps"])

	resp, body = do(t, ts, http.MethodPost, "/api/import", `{"activityData":[1,2,3]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, engine.SectionActivity, body["section"])

	resp, body = do(t, ts, http.MethodPost, "/api/import", string(exported))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4000, body["pet"].(map[string]any)["totalSteps"])
}

func TestAPI_SaveFailure(t *testing.T) {
	s, st := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	st.FailWrites(errors.New("read-only filesystem"))
	resp, body := do(t, ts, http.MethodPost, "/api/steps", `{"steps":100}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body["error"], "read-only filesystem")

	_, body = do(t, ts, http.MethodGet, "/api/pet", "")
	assert.Equal(t, true, body["unsaved"])
	assert.EqualValues(t, 100, body["pet"].(map[string]any)["totalSteps"])
}

func TestServer_StreamsEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Post(base+"/api/steps", "application/json", strings.NewReader(`{"steps":3000}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []engine.EventType
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for len(types) < 3 {
		var ev engine.Event
		require.NoError(t, conn.ReadJSON(&ev))
		assert.NotEmpty(t, ev.ID)
		types = append(types, ev.Type)
	}
	assert.Equal(t, []engine.EventType{engine.EventLevelUp, engine.EventAchievementUnlocked, engine.EventStateChanged}, types)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
