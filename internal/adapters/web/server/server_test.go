package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/navify/internal/adapters/reporting"
	"github.com/lcalzada-xor/navify/internal/adapters/storage"
	"github.com/lcalzada-xor/navify/internal/adapters/web/server"
	"github.com/lcalzada-xor/navify/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/services/hub"
	"github.com/lcalzada-xor/navify/internal/core/services/query"
	"github.com/lcalzada-xor/navify/internal/core/services/session"
	"github.com/lcalzada-xor/navify/internal/core/services/traffic"
)

var allowedOrigins = []string{"http://localhost:5500"}

// setupServer wires a server over the real store, hub and services.
func setupServer(t *testing.T) (*server.Server, *httptest.Server) {
	t.Helper()

	store, err := traffic.NewStore([]domain.Area{
		{ID: "A1", Name: "Downtown Core", Congestion: 62},
		{ID: "A2", Name: "Harbor Bridge", Congestion: 48},
	}, nil)
	require.NoError(t, err)

	db, err := storage.NewSQLiteAdapter("")
	require.NoError(t, err)
	sessions := session.NewSessionService(db)

	h := hub.New(store, websocket.RecordDrops(sessions))

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>navify</h1>"), 0o644))

	key := "test-key"
	srv := server.NewServer(server.Options{
		Addr:           ":0",
		StaticDir:      staticDir,
		AllowedOrigins: allowedOrigins,
		MapsAPIKey:     &key,
	}, server.Deps{
		Store:    store,
		Hub:      h,
		Routes:   query.NewRouteService(store, query.NewRand(1), nil),
		Transit:  query.NewTransitService(store),
		Sessions: sessions,
		Exporter: reporting.NewPDFExporter(),
	})

	ts := httptest.NewServer(server.SetupRoutes(srv))
	t.Cleanup(func() {
		ts.Close()
		h.Stop()
		db.Close()
	})
	return srv, ts
}

func get(t *testing.T, url string, header http.Header) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_TrafficEndpoints(t *testing.T) {
	_, ts := setupServer(t)

	resp, body := get(t, ts.URL+"/api/traffic", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var snap domain.TrafficSnapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Len(t, snap.Areas, 2)
	assert.False(t, snap.Timestamp.IsZero())

	resp, body = get(t, ts.URL+"/api/traffic/summary", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"hotspots":["Downtown Core"]`)

	resp, body = get(t, ts.URL+"/api/areas/A2", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":"A2","name":"Harbor Bridge","congestion":48}`, string(body))

	resp, body = get(t, ts.URL+"/api/areas/ZZ", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"area not found"}`, string(body))

	resp, body = get(t, ts.URL+"/api/traffic/report.pdf", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

func TestServer_QueryEndpoints(t *testing.T) {
	_, ts := setupServer(t)

	resp, body := get(t, ts.URL+"/api/routes?origin=Home", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var search struct {
		Origin string               `json:"origin"`
		Dest   string               `json:"dest"`
		Routes []domain.RouteOption `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(body, &search))
	assert.Equal(t, "Home", search.Origin)
	assert.Equal(t, "B", search.Dest)
	assert.Len(t, search.Routes, 3)

	resp, body = get(t, ts.URL+"/api/transit", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"stop":"Central Bus Stop"`)

	resp, body = get(t, ts.URL+"/api/config", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"mapsApiKey":"test-key"}`, string(body))

	resp, body = get(t, ts.URL+"/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not found"}`, string(body))
}

func TestServer_CORS(t *testing.T) {
	_, ts := setupServer(t)

	resp, _ := get(t, ts.URL+"/api/traffic", http.Header{"Origin": {"http://localhost:5500"}})
	assert.Equal(t, "http://localhost:5500", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = get(t, ts.URL+"/api/traffic", http.Header{"Origin": {"http://elsewhere.example"}})
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/routes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5500")
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	pre.Body.Close()
	assert.Equal(t, http.StatusNoContent, pre.StatusCode)
}

func TestServer_RouteRateLimit(t *testing.T) {
	_, ts := setupServer(t)

	for i := 0; i < server.RouteRateLimit; i++ {
		resp, _ := get(t, ts.URL+"/api/routes", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	resp, _ := get(t, ts.URL+"/api/routes", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// Other endpoints are not limited.
	resp, _ = get(t, ts.URL+"/api/transit", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StaticAndMetrics(t *testing.T) {
	_, ts := setupServer(t)

	resp, body := get(t, ts.URL+"/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "navify")

	resp, body = get(t, ts.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServer_WebSocketSessionsAudit(t *testing.T) {
	_, ts := setupServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string                 `json:"type"`
		Payload domain.TrafficSnapshot `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "traffic_update", msg.Type)
	assert.Len(t, msg.Payload.Areas, 2)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "request_update"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "traffic_update", msg.Type)
	conn.Close()

	assert.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/api/sessions?limit=10")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var res struct {
			Sessions []domain.SessionEvent `json:"sessions"`
		}
		if json.NewDecoder(resp.Body).Decode(&res) != nil {
			return false
		}
		seen := map[domain.SessionAction]bool{}
		for _, ev := range res.Sessions {
			seen[ev.Action] = true
		}
		return seen[domain.SessionConnected] && seen[domain.SessionRefreshed] && seen[domain.SessionDisconnected]
	}, 3*time.Second, 50*time.Millisecond)
}

func TestServer_ServeGracefulShutdown(t *testing.T) {
	srv, _ := setupServer(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/api/config")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down")
	}
}
