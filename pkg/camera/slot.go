// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package camera

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Slot holds the most recently published frame. One goroutine writes, any
// number read; readers always get a complete frame of their own.
type Slot struct {
	mu      sync.RWMutex
	frame   gocv.Mat
	has     bool
	updated time.Time
	seq     uint64
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish stores a copy of frame, replacing and releasing the previous one.
func (s *Slot) Publish(frame gocv.Mat) {
	next := frame.Clone()

	s.mu.Lock()
	prev, hadPrev := s.frame, s.has
	s.frame = next
	s.has = true
	s.updated = time.Now()
	s.seq++
	s.mu.Unlock()

	if hadPrev {
		prev.Close()
	}
}

// Latest returns a private copy of the newest frame and its sequence number.
// ok is false until the first Publish.
func (s *Slot) Latest() (frame gocv.Mat, seq uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has {
		return gocv.Mat{}, 0, false
	}
	return s.frame.Clone(), s.seq, true
}

// Seq returns the number of frames published so far.
func (s *Slot) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Updated returns when the newest frame was published.
func (s *Slot) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

// Close releases the stored frame.
func (s *Slot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return nil
	}
	s.has = false
	return s.frame.Close()
}
