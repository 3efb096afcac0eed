// Tests for the telemetry server
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"armctl-go/pkg/log"
	"armctl-go/pkg/metrics"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Timestamp:       12.5,
		Holding:         true,
		JointPositions:  []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
		JointVelocities: make([]float64, 6),
		ToolPosition:    []float64{10, 0, 40},
		ToolRotation:    []float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}
}

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	am := metrics.NewArmMetrics()
	am.RecordCycle(true)
	s := New(Config{
		Addr:           ":0",
		Snapshot:       testSnapshot,
		Metrics:        am,
		StreamInterval: 5 * time.Millisecond,
		Logger:         log.Discard(),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestStatusEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.Holding {
		t.Error("expected holding=true in snapshot")
	}
	if len(snap.JointPositions) != 6 || snap.JointPositions[2] != 0.3 {
		t.Errorf("joint positions wrong: %v", snap.JointPositions)
	}
	if len(snap.ToolRotation) != 9 {
		t.Errorf("expected 9 rotation entries, got %d", len(snap.ToolRotation))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "armctl_control_cycles_total") {
		t.Errorf("missing cycle counter in metrics output:\n%s", body)
	}

	// Writes are rejected.
	postResp, err := http.Post(ts.URL+"/metrics", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /metrics: %v", err)
	}
	postResp.Body.Close()
	if postResp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", postResp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestWebSocketStream(t *testing.T) {
	_, ts := testServer(t)

	wsURL := "ws" + ts.URL[4:] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if !snap.Holding || snap.Timestamp != 12.5 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// A second frame follows on the stream interval.
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("second ReadJSON: %v", err)
	}
}
