// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package camera fetches still frames from the car's camera endpoint and
// keeps the most recent one for display.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// DefaultURL is the capture endpoint of the stock camera firmware.
const DefaultURL = "http://192.168.4.1/capture"

// maxImageSize bounds a single capture response.
const maxImageSize = 8 << 20

// ErrEmptyImage is returned when the camera answers with no decodable image.
var ErrEmptyImage = errors.New("camera returned an empty image")

// Fetcher downloads and decodes one frame per call.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a fetcher for url with a per-request timeout.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the capture endpoint.
func (f *Fetcher) URL() string {
	return f.url
}

// FetchRaw returns the encoded image bytes.
func (f *Fetcher) FetchRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid camera URL: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("camera fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera fetch failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("camera read failed: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}

// Fetch downloads and decodes a frame. The caller owns the returned Mat.
func (f *Fetcher) Fetch(ctx context.Context) (gocv.Mat, error) {
	data, err := f.FetchRaw(ctx)
	if err != nil {
		return gocv.NewMat(), err
	}
	return Decode(data)
}

// Decode turns encoded image bytes into a BGR Mat.
func Decode(data []byte) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return img, fmt.Errorf("decode image: %w", err)
	}
	if img.Empty() {
		return img, ErrEmptyImage
	}
	return img, nil
}
