package stream

import (
	"context"
	"errors"
	"math"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func nextControl(t *testing.T, hub *Hub) Control {
	t.Helper()
	select {
	case ctl := <-hub.Controls:
		return ctl
	case <-time.After(2 * time.Second):
		t.Fatal("no control received")
	}
	return Control{}
}

func TestControlsAreValidated(t *testing.T) {
	hub, conn := dial(t)
	for _, msg := range []string{
		`not json`,
		`{"type":"explode"}`,
		`{"type":"temperature","value":-3}`,
		`{"type":"temperature","value":12.5}`,
		`{"type":"pause"}`,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got := nextControl(t, hub); got != (Control{Type: ControlTemperature, Value: 12.5}) {
		t.Fatalf("first control %+v", got)
	}
	if got := nextControl(t, hub); got.Type != ControlPause {
		t.Fatalf("second control %+v", got)
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, conn := dial(t)
	// Once a control arrives the client is registered.
	if err := conn.WriteJSON(Control{Type: ControlResume}); err != nil {
		t.Fatal(err)
	}
	nextControl(t, hub)

	cells := []uint8{0, 1, 2, 0x81, 0, 0}
	frame, err := EncodeFrame(3, 2, cells)
	if err != nil {
		t.Fatal(err)
	}
	if !hub.Broadcast(frame) {
		t.Fatal("frame dropped")
	}
	if _, err := hub.BroadcastJSON(map[string]int{"time": 4}); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	w, h, got, ok := DecodeFrame(data)
	if kind != websocket.BinaryMessage || !ok || w != 3 || h != 2 || !slices.Equal(got, cells) {
		t.Fatalf("frame kind %d %dx%d %v ok=%v", kind, w, h, got, ok)
	}
	kind, data, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read stats: %v", err)
	}
	if kind != websocket.TextMessage || string(data) != `{"time":4}` {
		t.Fatalf("stats kind %d %s", kind, data)
	}
}

func TestDecodeFrameRejectsShortInput(t *testing.T) {
	if _, _, _, ok := DecodeFrame([]byte{1, 0}); ok {
		t.Fatal("short header accepted")
	}
	frame, err := EncodeFrame(4, 4, make([]uint8, 16))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, ok := DecodeFrame(frame[:len(frame)-1]); ok {
		t.Fatal("truncated cells accepted")
	}
}

func TestEncodeFrameRejectsOversize(t *testing.T) {
	if _, err := EncodeFrame(math.MaxUint16+1, 1, make([]uint8, math.MaxUint16+1)); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("wide frame: got %v", err)
	}
	if _, err := EncodeFrame(2, 2, make([]uint8, 3)); !errors.Is(err, ErrFrameSize) {
		t.Fatalf("short cells: got %v", err)
	}
}
