package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/is"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			var env Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			env.Type = "echo:" + env.Type
			if err := conn.WriteJSON(&env); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestClientRoundTrip(t *testing.T) {
	is := is.New(t)
	srv := echoServer(t)
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	client := NewClient(wsURL(srv), "test-token", logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := client.Connect(ctx)
	is.NoErr(err)
	defer client.Close()

	err = client.Write(ctx, &Envelope{
		Type: "transcribe",
		Data: map[string]any{"sample_rate": 16000},
	})
	is.NoErr(err)

	env, err := client.Read(ctx)
	is.NoErr(err)
	is.Equal(env.Type, "echo:transcribe")
	is.Equal(env.Data["sample_rate"], float64(16000)) // JSON numbers decode as float64
}

func TestClientNotConnected(t *testing.T) {
	is := is.New(t)

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	client := NewClient("ws://localhost:1", "", logger)

	ctx := context.Background()
	_, err := client.Read(ctx)
	is.True(err != nil)

	err = client.Write(ctx, &Envelope{Type: "noop"})
	is.True(err != nil)

	is.NoErr(client.Close()) // closing an unconnected client is a no-op
}
