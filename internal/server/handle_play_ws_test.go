package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func ptr(f float64) *float64 { return &f }

func TestHandlePlayWS(t *testing.T) {
	env := newTestEnv(t, "")
	s := env.startSession(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/ws/sessions/" + s.ID

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	steps := []struct {
		msg   PlayMessage
		check func(PlayReply)
	}{
		{
			msg: PlayMessage{Type: "advance"},
			check: func(r PlayReply) {
				if r.Error == "" {
					t.Error("advance before found should fail")
				}
			},
		},
		{
			msg: PlayMessage{Latitude: ptr(95), Longitude: ptr(0)},
			check: func(r PlayReply) {
				if r.Error == "" {
					t.Error("out of range guess should fail")
				}
			},
		},
		{
			msg: PlayMessage{Type: "guess", Latitude: ptr(55.95), Longitude: ptr(-3.19)},
			check: func(r PlayReply) {
				if r.Guess == nil || !r.Guess.Found {
					t.Errorf("expected found guess, got %+v", r)
				}
			},
		},
		{
			msg: PlayMessage{Type: "advance"},
			check: func(r PlayReply) {
				if r.Advance == nil || r.Advance.Session.Target.Name != "B" {
					t.Errorf("expected advance to B, got %+v", r)
				}
			},
		},
		{
			msg: PlayMessage{Type: "dance"},
			check: func(r PlayReply) {
				if r.Error == "" {
					t.Error("unknown type should fail")
				}
			},
		},
	}

	for _, step := range steps {
		if err := wsjson.Write(ctx, conn, step.msg); err != nil {
			t.Fatalf("write: %v", err)
		}
		var reply PlayReply
		if err := wsjson.Read(ctx, conn, &reply); err != nil {
			t.Fatalf("read: %v", err)
		}
		step.check(reply)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}

func TestHandlePlayWSUnknownSession(t *testing.T) {
	env := newTestEnv(t, "")

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, "ws"+srv.URL[len("http"):]+"/ws/sessions/nope", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Errorf("expected 404 response, got %+v", resp)
	}
}
