package mhse

import (
	"errors"

	"github.com/gilchrisn/graph-neighborhood-service/pkg/graph"
)

var (
	// ErrSeeds reports a missing, duplicated or miscounted seed list.
	ErrSeeds = errors.New("invalid seed list")
	// ErrDirection reports a missing or unknown direction of message transmission.
	ErrDirection = graph.ErrDirection
	// ErrThreshold reports an effective-diameter threshold outside (0, 1].
	ErrThreshold = errors.New("threshold must be in (0, 1]")
	// ErrUnknownAlgorithm reports an algorithm name with no registered engine.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrGraphLoad reports a graph that could not be read.
	ErrGraphLoad = graph.ErrGraphLoad
)
