package transport_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/transport"
)

func TestClientServerRoundTrip(t *testing.T) {
	received := make(chan []byte, 1)
	router := mux.NewRouter()
	log := logrus.New()
	log.SetOutput(new(strings.Builder))

	transport.RegisterWebSocketRoute(router, "/ws", log, func(conn transport.Conn) {
		defer conn.Close()
		frame, err := conn.Recv(context.Background())
		if err != nil {
			t.Errorf("server Recv: %v", err)
			return
		}
		received <- frame
		if err := conn.Send(context.Background(), []byte("ack")); err != nil {
			t.Errorf("server Send: %v", err)
		}
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := transport.Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if err := client.Send(ctx, []byte("hello")); err != nil {
		t.Fatalf("client Send: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != "hello" {
			t.Fatalf("server got %q, want %q", got, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive frame")
	}

	reply, err := client.Recv(ctx)
	if err != nil {
		t.Fatalf("client Recv: %v", err)
	}
	if string(reply) != "ack" {
		t.Fatalf("got %q, want %q", reply, "ack")
	}
}

func TestRecvAfterCloseReturnsErrClosed(t *testing.T) {
	router := mux.NewRouter()
	log := logrus.New()
	log.SetOutput(new(strings.Builder))

	transport.RegisterWebSocketRoute(router, "/ws", log, func(conn transport.Conn) {
		_, _ = conn.Recv(context.Background())
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ctx := context.Background()
	client, err := transport.Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := client.Recv(ctx); err != transport.ErrClosed {
		t.Fatalf("got %v, want %v", err, transport.ErrClosed)
	}
}
