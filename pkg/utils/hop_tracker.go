// Package utils holds diagnostics shared by the estimators.
package utils

import (
	"fmt"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// HopEvent describes one completed hop of a propagation. Estimate is a
// pair-count estimate: the hop table entry for all-seed events, collisions
// times the node count for single-seed events.
type HopEvent struct {
	Algorithm    string  `json:"algorithm"`
	SeedIndex    int     `json:"seed"`
	Hop          int     `json:"hop"`
	ChangedNodes int     `json:"changed_nodes"`
	Estimate     float64 `json:"estimate"`
	Collisions   int64   `json:"collisions,omitempty"`
	ElapsedMS    int64   `json:"elapsed_ms"`
	Timestamp    int64   `json:"timestamp"`
}

// HopTracker appends hop events to a JSON-lines file. A nil tracker
// discards every event.
type HopTracker struct {
	mu        sync.Mutex
	file      *os.File
	encoder   *jsoniter.Encoder
	algorithm string
	start     time.Time
	err       error
}

// NewHopTracker creates filename and returns a tracker writing to it.
func NewHopTracker(filename, algorithm string) (*HopTracker, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create hop tracking file: %w", err)
	}

	return &HopTracker{
		file:      file,
		encoder:   jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(file),
		algorithm: algorithm,
		start:     time.Now(),
	}, nil
}

// LogHop records a hop. seedIndex is -1 when the hop covers every seed.
func (ht *HopTracker) LogHop(seedIndex, hop, changedNodes int, estimate float64) {
	if ht == nil {
		return
	}
	ht.write(HopEvent{
		SeedIndex:    seedIndex,
		Hop:          hop,
		ChangedNodes: changedNodes,
		Estimate:     estimate,
	})
}

// LogCollisions records a single-seed hop with its collision count.
func (ht *HopTracker) LogCollisions(seedIndex, hop, changedNodes int, collisions int64, numNodes int) {
	if ht == nil {
		return
	}
	ht.write(HopEvent{
		SeedIndex:    seedIndex,
		Hop:          hop,
		ChangedNodes: changedNodes,
		Estimate:     float64(collisions) * float64(numNodes),
		Collisions:   collisions,
	})
}

func (ht *HopTracker) write(event HopEvent) {
	event.Algorithm = ht.algorithm
	event.ElapsedMS = time.Since(ht.start).Milliseconds()
	event.Timestamp = time.Now().Unix()

	ht.mu.Lock()
	defer ht.mu.Unlock()
	if ht.err != nil {
		return
	}
	if err := ht.encoder.Encode(event); err != nil {
		ht.err = fmt.Errorf("failed to write hop event: %w", err)
	}
}

// Close closes the file and reports the first write error, if any.
func (ht *HopTracker) Close() error {
	if ht == nil || ht.file == nil {
		return nil
	}
	closeErr := ht.file.Close()
	if ht.err != nil {
		return ht.err
	}
	return closeErr
}
