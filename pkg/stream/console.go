// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package stream

import (
	"net/http"
	"time"

	"github.com/Thermoquad/ballcar/pkg/events"
	"github.com/gorilla/websocket"
)

// handleConsole upgrades to a WebSocket and forwards hub events, the
// backlog first. ?format=cbor switches from JSON text frames to CBOR binary
// frames.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.NotFound(w, r)
		return
	}

	format, err := events.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("console upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub.ID)
	s.logger.Debug("console attached", "id", sub.ID, "remote", r.RemoteAddr)

	// the viewer never sends anything; reading only notices when it leaves
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	msgType := websocket.TextMessage
	if format == events.FormatCBOR {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case <-r.Context().Done():
			closeConsole(conn, websocket.CloseGoingAway, "shutting down")
			return
		case <-gone:
			return
		case e, ok := <-sub.C:
			if !ok {
				closeConsole(conn, websocket.CloseNormalClosure, "session ended")
				return
			}
			data, err := events.Encode(e, format)
			if err != nil {
				s.logger.Error("event encode failed", "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(msgType, data); err != nil {
				s.logger.Debug("console detached", "id", sub.ID, "error", err)
				return
			}
		}
	}
}

func closeConsole(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
