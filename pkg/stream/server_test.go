// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package stream

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/ballcar/pkg/camera"
	"github.com/Thermoquad/ballcar/pkg/events"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func newTestServer(t *testing.T, slot *camera.Slot, hub *events.Hub) *httptest.Server {
	t.Helper()
	s := New(slot, hub, Options{FrameGap: 10 * time.Millisecond})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dialConsole(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/console" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "/video_feed")
	assert.Contains(t, string(body), "/console")
}

func TestVideoFeed(t *testing.T) {
	slot := camera.NewSlot()
	defer slot.Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 255, 0, 0), 48, 64, gocv.MatTypeCV8UC3)
	slot.Publish(frame)
	frame.Close()

	ts := newTestServer(t, slot, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/video_feed", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/x-mixed-replace", mediaType)
	assert.Equal(t, "frame", params["boundary"])

	mr := multipart.NewReader(resp.Body, params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", part.Header.Get("Content-Type"))

	data, err := io.ReadAll(part)
	require.NoError(t, err)

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	require.NoError(t, err)
	defer img.Close()
	assert.Equal(t, 64, img.Cols())
	assert.Equal(t, 48, img.Rows())
}

func TestVideoFeed_Disabled(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/video_feed")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConsole_JSON(t *testing.T) {
	hub := events.NewHub(0)
	hub.Emit(events.TypeState, events.ColorInfo, "state: %s", "searching")

	ts := newTestServer(t, nil, hub)
	conn := dialConsole(t, ts, "")

	// backlog first
	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, mt)
	e, err := events.Decode(data, events.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, events.TypeState, e.Type)
	assert.Equal(t, "state: searching", e.Data)

	hub.Emit(events.TypeAction, events.ColorEvade, "evade")
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	e, err = events.Decode(data, events.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, events.TypeAction, e.Type)
	assert.Equal(t, events.ColorEvade, e.Color)
	assert.Equal(t, uint64(2), e.Seq)
}

func TestConsole_CBOR(t *testing.T) {
	hub := events.NewHub(0)
	ts := newTestServer(t, nil, hub)
	conn := dialConsole(t, ts, "?format=cbor")

	hub.Emit(events.TypeCommand, events.ColorOK, "STOP -> true")

	mt, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, mt)
	e, err := events.Decode(data, events.FormatCBOR)
	require.NoError(t, err)
	assert.Equal(t, "STOP -> true", e.Data)
}

func TestConsole_BadFormat(t *testing.T) {
	ts := newTestServer(t, nil, events.NewHub(0))

	resp, err := http.Get(ts.URL + "/console?format=xml")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConsole_HubClosed(t *testing.T) {
	hub := events.NewHub(0)
	ts := newTestServer(t, nil, hub)
	conn := dialConsole(t, ts, "")

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	hub.Close()

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(nil, events.NewHub(0), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
