package session

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/joshuawootonn/type-the-word-sub001/core/typing"
	"github.com/joshuawootonn/type-the-word-sub001/internal/server"
)

// session is one WebSocket connection typing one passage.
type session struct {
	conn   *websocket.Conn
	ctrl   *typing.Controller
	send   chan ServerMessage
	cfg    Config
	logger *slog.Logger
}

// run serves the connection until the client goes away.
func (s *session) run() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump()
	}()

	s.queue(positionMessage(s.ctrl, typing.Result{}))
	if s.ctrl.State() == typing.StateComplete {
		s.queue(ServerMessage{Type: MsgComplete})
	}
	s.readPump()
	close(s.send)
	<-done
}

// queue hands m to the write goroutine. A client that stops reading long
// enough to fill the queue loses messages rather than stalling typing.
func (s *session) queue(m ServerMessage) {
	select {
	case s.send <- m:
	default:
		s.logger.Warn("session send queue full, dropping message", "type", m.Type)
	}
}

func (s *session) readPump() {
	defer s.conn.Close()

	wait := 2 * s.cfg.PingInterval
	s.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	s.conn.SetReadDeadline(time.Now().Add(wait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(wait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.Warn("websocket unexpected close", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(wait))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.queue(ServerMessage{Type: MsgError, Message: "invalid message: " + err.Error()})
			continue
		}
		s.handle(msg)
	}
}

// handle applies one client message to the controller.
func (s *session) handle(msg ClientMessage) {
	switch msg.Type {
	case MsgKeystroke:
		kind, err := typing.ParseKind(msg.Kind)
		if err != nil {
			s.queue(ServerMessage{Type: MsgError, Message: err.Error()})
			return
		}
		res, err := s.ctrl.Keystroke(typing.Keystroke{Kind: kind, Data: msg.Data})
		if err != nil {
			s.logger.Error("typing controller invariant", "error", err)
			s.queue(ServerMessage{Type: MsgError, Message: err.Error()})
			return
		}
		for i := range res.Completed {
			e := res.Completed[i]
			s.queue(ServerMessage{Type: MsgVerseCompleted, Event: &e})
		}
		s.queue(positionMessage(s.ctrl, res))
		if len(res.Completed) > 0 && res.State == typing.StateComplete {
			s.queue(ServerMessage{Type: MsgComplete})
		}

	case MsgReset:
		s.ctrl.Reset()
		s.queue(positionMessage(s.ctrl, typing.Result{}))

	case MsgStart:
		if err := startVerse(s.ctrl, s.ctrl.Passage(), msg.Verse); err != nil {
			s.queue(ServerMessage{Type: MsgError, Message: err.Error()})
			return
		}
		s.queue(positionMessage(s.ctrl, typing.Result{}))

	default:
		s.queue(ServerMessage{
			Type:    MsgError,
			Message: "unknown message type " + server.LimitStringLength(server.SanitizeUserInput(msg.Type), 32),
		})
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case m, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(m); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
