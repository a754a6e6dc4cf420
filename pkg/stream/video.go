// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package stream

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

type encodedFrame struct {
	seq  uint64
	data []byte
}

// handleVideo streams the newest slot frame as multipart JPEG every frame
// gap until the client goes away.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	if s.slot == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+frameBoundary)
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	ticker := time.NewTicker(s.frameGap)
	defer ticker.Stop()

	var current encodedFrame
	for {
		next, ok, err := s.encodeLatest(current)
		if err != nil {
			s.logger.Warn("frame encode failed", "error", err)
		} else if ok {
			current = next
			if err := writePart(w, current.data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// encodeLatest returns prev again when the slot has not changed since it
// was encoded.
func (s *Server) encodeLatest(prev encodedFrame) (encodedFrame, bool, error) {
	if prev.data != nil && s.slot.Seq() == prev.seq {
		return prev, true, nil
	}

	frame, seq, ok := s.slot.Latest()
	if !ok {
		return prev, false, nil
	}
	defer frame.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return prev, false, fmt.Errorf("jpeg encode: %w", err)
	}
	defer buf.Close()

	return encodedFrame{seq: seq, data: append([]byte(nil), buf.GetBytes()...)}, true, nil
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", frameBoundary, len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}
