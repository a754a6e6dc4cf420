// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package camera

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 200, 30, 0), 60, 80, gocv.MatTypeCV8UC3)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		t.Fatalf("IMEncode() error = %v", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...)
}

func TestFetcher_Fetch(t *testing.T) {
	jpeg := testJPEG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/capture" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(jpeg)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/capture", time.Second)
	frame, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer frame.Close()

	if frame.Cols() != 80 || frame.Rows() != 60 {
		t.Errorf("Fetch() size = %dx%d, want 80x60", frame.Cols(), frame.Rows())
	}
	if frame.Channels() != 3 {
		t.Errorf("Fetch() channels = %d, want 3", frame.Channels())
	}
}

func TestFetcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "busy", http.StatusServiceUnavailable)
			},
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
		},
		{
			name: "not an image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("definitely not a jpeg"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			frame, err := NewFetcher(srv.URL, time.Second).Fetch(context.Background())
			defer frame.Close()
			if err == nil {
				t.Fatal("Fetch() expected error, got nil")
			}
		})
	}
}

func TestSlot(t *testing.T) {
	s := NewSlot()
	defer s.Close()

	if _, _, ok := s.Latest(); ok {
		t.Fatal("Latest() on empty slot ok = true")
	}

	a := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 1, 1, 0), 4, 4, gocv.MatTypeCV8UC3)
	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(2, 2, 2, 0), 8, 8, gocv.MatTypeCV8UC3)
	s.Publish(a)
	s.Publish(b)
	a.Close()
	b.Close()

	got, seq, ok := s.Latest()
	if !ok {
		t.Fatal("Latest() ok = false after Publish")
	}
	defer got.Close()
	if seq != 2 {
		t.Errorf("Latest() seq = %d, want 2", seq)
	}
	if got.Rows() != 8 {
		t.Errorf("Latest() rows = %d, want 8 (last write wins)", got.Rows())
	}
	if s.Updated().IsZero() {
		t.Error("Updated() is zero after Publish")
	}
}

func TestSlot_ConcurrentReaders(t *testing.T) {
	s := NewSlot()
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; ctx.Err() == nil; i++ {
			m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(i%255), 0, 0, 0), 16, 16, gocv.MatTypeCV8UC3)
			s.Publish(m)
			m.Close()
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				if m, _, ok := s.Latest(); ok {
					if m.Rows() != 16 || m.Cols() != 16 {
						t.Errorf("Latest() size = %dx%d, want 16x16", m.Cols(), m.Rows())
					}
					m.Close()
				}
			}
		}()
	}
	wg.Wait()
}

type countingSource struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingSource) Fetch(ctx context.Context) (gocv.Mat, error) {
	c.calls.Add(1)
	if c.fail {
		return gocv.NewMat(), errors.New("camera offline")
	}
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 6, 6, gocv.MatTypeCV8UC3), nil
}

func TestPoller_Run(t *testing.T) {
	tests := []struct {
		name      string
		fail      bool
		published bool
	}{
		{"publishes frames", false, true},
		{"keeps running on errors", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{fail: tt.fail}
			slot := NewSlot()
			defer slot.Close()

			var annotated atomic.Int32
			p := NewPoller(src, slot, 5*time.Millisecond, nil)
			p.OnFrame(func(gocv.Mat) { annotated.Add(1) })

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
			defer cancel()
			if err := p.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if src.calls.Load() < 2 {
				t.Errorf("Fetch calls = %d, want at least 2", src.calls.Load())
			}
			if got := slot.Seq() > 0; got != tt.published {
				t.Errorf("published = %v, want %v", got, tt.published)
			}
			if got := annotated.Load() > 0; got != tt.published {
				t.Errorf("frame callback ran = %v, want %v", got, tt.published)
			}
		})
	}
}
