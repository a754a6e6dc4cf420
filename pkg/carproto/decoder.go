// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// DecodeError reports response text that does not fit the expected shape.
type DecodeError struct {
	Text   string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode response %q: %s: %v", e.Text, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode response %q: %s", e.Text, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FrameEnd returns the index just past the first complete response frame in
// text (a delimiter followed later by a closing brace), or -1 if the frame is
// not complete yet.
func FrameEnd(text string) int {
	start := strings.IndexByte(text, payloadDelimiter)
	if start < 0 {
		return -1
	}
	end := strings.IndexByte(text[start+1:], payloadEnd)
	if end < 0 {
		return -1
	}
	return start + 1 + end + 1
}

// ExtractPayload returns the text between the first delimiter and the closing
// brace that follows it.
func ExtractPayload(raw string) (string, error) {
	end := FrameEnd(raw)
	if end < 0 {
		return "", &DecodeError{Text: raw, Reason: "missing '_' ... '}' frame"}
	}
	start := strings.IndexByte(raw, payloadDelimiter)
	return raw[start+1 : end-1], nil
}

// Decode extracts the payload from raw response text and decodes it for the
// command that produced it.
func Decode(c Command, raw string, cal Calibration) (Response, error) {
	payload, err := ExtractPayload(raw)
	if err != nil {
		return Response{}, err
	}
	return DecodePayload(c, payload, cal)
}

// DecodePayload converts an extracted payload into a typed response.
func DecodePayload(c Command, payload string, cal Calibration) (Response, error) {
	switch payload {
	case "ok", "true":
		return Response{Kind: ResponseBool, Bool: true}, nil
	case "false":
		return Response{Kind: ResponseBool, Bool: false}, nil
	}

	switch c.Kind() {
	case KindRotateHead:
		// the head acknowledges with arbitrary text; success is implicit
		return Response{Kind: ResponseBool, Bool: true}, nil

	case KindMeasureDistance:
		raw, err := parseInt(payload)
		if err != nil {
			return Response{}, err
		}
		dist := scalar.Round(float64(raw)*cal.DistanceScale, cal.DistancePrecision)
		return Response{Kind: ResponseDistance, Distance: dist}, nil

	case KindMeasureMotion:
		motion, err := decodeMotion(payload, cal)
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: ResponseMotion, Motion: motion}, nil
	}

	v, err := parseInt(payload)
	if err != nil {
		return Response{}, err
	}
	return Response{Kind: ResponseInt, Int: v}, nil
}

func decodeMotion(payload string, cal Calibration) (MotionVector, error) {
	var m MotionVector

	fields := strings.Split(payload, ",")
	if len(fields) != motionAxisCount {
		return m, &DecodeError{
			Text:   payload,
			Reason: fmt.Sprintf("expected %d motion fields, got %d", motionAxisCount, len(fields)),
		}
	}
	if cal.CountsPerG == 0 {
		return m, &DecodeError{Text: payload, Reason: "calibration counts_per_g is zero"}
	}

	for i, f := range fields {
		raw, err := parseInt(f)
		if err != nil {
			return m, err
		}
		m[i] = float64(raw) / cal.CountsPerG
	}

	// remove static gravity from the vertical axis before the offsets
	m[2] -= cal.GravityG

	for i := range m {
		m[i] = scalar.Round(m[i]-cal.MotionOffsets[i], cal.MotionPrecision)
	}
	return m, nil
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, &DecodeError{Text: s, Reason: "not an integer", Err: err}
	}
	return v, nil
}
