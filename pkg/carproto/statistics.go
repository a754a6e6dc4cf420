// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import (
	"fmt"
	"sync"
	"time"
)

// Outcome classifies how a round trip ended.
type Outcome int

// Round trip outcomes
const (
	OutcomeOK Outcome = iota
	OutcomeTimeout
	OutcomeIOError
	OutcomeDecodeError
)

// Statistics tracks round trip counts, failures and latency
type Statistics struct {
	mu sync.Mutex

	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalCommands uint64
	Completed     uint64
	Timeouts      uint64
	IOErrors      uint64
	DecodeErrors  uint64
	PerKind       map[Kind]uint64

	// Latency of completed round trips
	MinRTT   time.Duration
	MaxRTT   time.Duration
	TotalRTT time.Duration

	// Rates (calculated)
	CommandRate float64 // commands/sec
	ErrorRate   float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		PerKind:        make(map[Kind]uint64),
	}
}

// Record updates statistics with one finished round trip
func (s *Statistics) Record(kind Kind, rtt time.Duration, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalCommands++
	s.PerKind[kind]++
	s.LastUpdateTime = time.Now()

	switch outcome {
	case OutcomeTimeout:
		s.Timeouts++
		return
	case OutcomeIOError:
		s.IOErrors++
		return
	case OutcomeDecodeError:
		s.DecodeErrors++
		return
	}

	s.Completed++
	s.TotalRTT += rtt
	if s.MinRTT == 0 || rtt < s.MinRTT {
		s.MinRTT = rtt
	}
	if rtt > s.MaxRTT {
		s.MaxRTT = rtt
	}
}

// Errors returns the number of failed round trips
func (s *Statistics) Errors() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Timeouts + s.IOErrors + s.DecodeErrors
}

// AverageRTT returns the mean latency of completed round trips
func (s *Statistics) AverageRTT() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Completed == 0 {
		return 0
	}
	return s.TotalRTT / time.Duration(s.Completed)
}

// CalculateRates calculates command and error rates
func (s *Statistics) CalculateRates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()
}

func (s *Statistics) calculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.CommandRate = float64(s.TotalCommands) / elapsed
		s.ErrorRate = float64(s.Timeouts+s.IOErrors+s.DecodeErrors) / elapsed
	}
}

// Snapshot is a copy of the counters taken under the lock.
type Snapshot struct {
	Elapsed       time.Duration
	TotalCommands uint64
	Completed     uint64
	Errors        uint64
	AverageRTT    time.Duration
	MaxRTT        time.Duration
	CommandRate   float64
	ErrorRate     float64
}

// Snapshot recalculates the rates and returns a copy of the counters.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()

	snap := Snapshot{
		Elapsed:       time.Since(s.StartTime),
		TotalCommands: s.TotalCommands,
		Completed:     s.Completed,
		Errors:        s.Timeouts + s.IOErrors + s.DecodeErrors,
		MaxRTT:        s.MaxRTT,
		CommandRate:   s.CommandRate,
		ErrorRate:     s.ErrorRate,
	}
	if s.Completed > 0 {
		snap.AverageRTT = s.TotalRTT / time.Duration(s.Completed)
	}
	return snap
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()

	var completedPercent float64
	if s.TotalCommands > 0 {
		completedPercent = float64(s.Completed) * 100.0 / float64(s.TotalCommands)
	}
	var avg time.Duration
	if s.Completed > 0 {
		avg = s.TotalRTT / time.Duration(s.Completed)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Commands:  %8d\n", s.TotalCommands)
	result += fmt.Sprintf("Completed:       %8d (%.1f%%)\n", s.Completed, completedPercent)

	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d\n", s.Timeouts)
	}
	if s.IOErrors > 0 {
		result += fmt.Sprintf("I/O Errors:      %8d\n", s.IOErrors)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d\n", s.DecodeErrors)
	}
	if s.Completed > 0 {
		result += fmt.Sprintf("RTT min/avg/max: %v / %v / %v\n", s.MinRTT, avg, s.MaxRTT)
	}

	result += fmt.Sprintf("Command Rate:    %8.1f cmds/sec\n", s.CommandRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalCommands = 0
	s.Completed = 0
	s.Timeouts = 0
	s.IOErrors = 0
	s.DecodeErrors = 0
	s.PerKind = make(map[Kind]uint64)
	s.MinRTT = 0
	s.MaxRTT = 0
	s.TotalRTT = 0
	s.CommandRate = 0
	s.ErrorRate = 0
}
