// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishSubscribe(t *testing.T) {
	h := NewHub(10)
	defer h.Close()

	a := h.Subscribe()
	b := h.Subscribe()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, h.Subscribers())

	published := h.Emit(TypeAction, ColorEvade, "Obstacle detected. Evading...")
	assert.Equal(t, uint64(1), published.Seq)
	assert.False(t, published.Time.IsZero())

	for _, s := range []*Subscription{a, b} {
		select {
		case e := <-s.C:
			assert.Equal(t, TypeAction, e.Type)
			assert.Equal(t, ColorEvade, e.Color)
			assert.Equal(t, "Obstacle detected. Evading...", e.Data)
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s got no event", s.ID)
		}
	}

	h.Unsubscribe(a.ID)
	_, open := <-a.C
	assert.False(t, open, "channel should be closed after Unsubscribe")
	assert.Equal(t, 1, h.Subscribers())
}

func TestHub_Backlog(t *testing.T) {
	h := NewHub(3)
	defer h.Close()

	for i := 1; i <= 5; i++ {
		h.Emit(TypeCommand, ColorOK, "cmd %d", i)
	}

	backlog := h.Backlog()
	require.Len(t, backlog, 3)
	assert.Equal(t, "cmd 3", backlog[0].Data)
	assert.Equal(t, "cmd 5", backlog[2].Data)

	s := h.Subscribe()
	for _, want := range []string{"cmd 3", "cmd 4", "cmd 5"} {
		e := <-s.C
		assert.Equal(t, want, e.Data)
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(1)
	defer h.Close()
	s := h.Subscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBufSize*2; i++ {
			h.Emit(TypeCommand, ColorOK, "flood")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	assert.Greater(t, s.Dropped(), uint64(0))
}

func TestHub_DroppedWhilePublishing(t *testing.T) {
	h := NewHub(1)
	defer h.Close()
	s := h.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBufSize*4; i++ {
			h.Emit(TypeCommand, ColorOK, "flood")
		}
	}()

	var last uint64
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		n := s.Dropped()
		assert.GreaterOrEqual(t, n, last)
		last = n
	}
	assert.Greater(t, s.Dropped(), uint64(0))
}

func TestHub_Close(t *testing.T) {
	h := NewHub(0)
	s := h.Subscribe()
	h.Close()

	_, open := <-s.C
	assert.False(t, open)

	// publishing after close only feeds the backlog
	h.Emit(TypeState, ColorInfo, "late")
	late := h.Subscribe()
	e, ok := <-late.C
	require.True(t, ok)
	assert.Equal(t, "late", e.Data)
	_, open = <-late.C
	assert.False(t, open)
}

func TestEncodeDecode(t *testing.T) {
	e := Event{
		Seq:   7,
		Time:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Type:  TypeCommand,
		Color: ColorOK,
		Data:  "7: measure distance: 38.9",
	}

	for _, f := range []Format{FormatJSON, FormatCBOR} {
		data, err := Encode(e, f)
		require.NoError(t, err)
		got, err := Decode(data, f)
		require.NoError(t, err)
		assert.True(t, e.Time.Equal(got.Time))
		got.Time = e.Time
		assert.Equal(t, e, got)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("cbor")
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
