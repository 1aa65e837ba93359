package mhse

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// wordBits is the width of a bitset word. Partition boundaries are multiples
// of it so that no two workers write the same word of a changed-node set.
const wordBits = 64

type span struct{ lo, hi int }

// partition splits [0, n) into at most workers contiguous spans.
func partition(n, workers int) []span {
	if n == 0 {
		return nil
	}
	words := (n + wordBits - 1) / wordBits
	if workers < 1 {
		workers = 1
	}
	if workers > words {
		workers = words
	}

	spans := make([]span, 0, workers)
	per := words / workers
	extra := words % workers
	lo := 0
	for w := 0; w < workers; w++ {
		size := per
		if w < extra {
			size++
		}
		hi := min(lo+size*wordBits, n)
		spans = append(spans, span{lo, hi})
		lo = hi
	}
	return spans
}

// forEachSpan runs fn once per span concurrently. fn receives the span index
// so that it can store partial results without sharing memory.
func forEachSpan(ctx context.Context, spans []span, fn func(i int, s span) error) error {
	if len(spans) == 1 {
		return fn(0, spans[0])
	}
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range spans {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i, s)
		})
	}
	return g.Wait()
}
