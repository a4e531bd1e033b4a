package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// PlayMessage is a frame sent by the map surface. Type is "guess" (the
// default) or "advance".
type PlayMessage struct {
	Type      string   `json:"type"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PlayReply answers one PlayMessage. Exactly one field is set.
type PlayReply struct {
	Guess   *GuessResponse   `json:"guess,omitempty"`
	Advance *AdvanceResponse `json:"advance,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// handlePlayWS lets a map surface stream taps over one connection instead of
// posting each guess.
func handlePlayWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
		defer cancel()

		for {
			var msg PlayMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				logger.Debug("websocket read ended", "session_id", sess.ID, "error", err)
				return
			}

			reply := play(sess, broker, msg)
			if err := wsjson.Write(ctx, conn, reply); err != nil {
				logger.Debug("websocket write failed", "session_id", sess.ID, "error", err)
				return
			}
		}
	}
}

func play(sess *Session, broker *Broker, msg PlayMessage) PlayReply {
	switch msg.Type {
	case "", "guess":
		c, err := GuessRequest{Latitude: msg.Latitude, Longitude: msg.Longitude}.coordinate()
		if err != nil {
			return PlayReply{Error: err.Error()}
		}
		resp, err := sess.Guess(broker, c)
		if err != nil {
			return PlayReply{Error: err.Error()}
		}
		return PlayReply{Guess: &resp}

	case "advance":
		resp, err := sess.Advance(broker)
		if err != nil {
			return PlayReply{Error: err.Error()}
		}
		return PlayReply{Advance: &resp}

	default:
		return PlayReply{Error: "unknown message type " + msg.Type}
	}
}
