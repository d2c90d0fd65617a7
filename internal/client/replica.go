package client

import (
	"time"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
)

// replicaPicker orders a chunk's replica list for failover, shaped after
// the teacher's internal/client/lb.RoundRobinLBPicker but adapted from
// picking across a static master list to one chunk's replica set. The
// order is deterministic: the same replica list always yields the same
// order, first replica first.
type replicaPicker struct{}

func newReplicaPicker() *replicaPicker {
	return &replicaPicker{}
}

// order returns replicas in the order the directory listed them.
func (p *replicaPicker) order(replicas []types.ChunkLocation) []types.ChunkLocation {
	n := len(replicas)
	if n == 0 {
		return nil
	}
	out := make([]types.ChunkLocation, 0, n)
	out = append(out, replicas...)
	return out
}

// withRetry runs fn against the replicas in order, moving to the next
// replica after each failure (wrapping round to the first when the list
// is shorter than RETRY_ATTEMPTS), for at most RETRY_ATTEMPTS attempts in
// total. Between attempts it sleeps RETRY_BACKOFF_MS, doubling each time.
func withRetry(replicas []types.ChunkLocation, picker *replicaPicker, fn func(types.ChunkLocation) error) error {
	ordered := picker.order(replicas)
	if len(ordered) == 0 {
		return types.ErrAllReplicasFailed
	}

	var lastErr error
	backoff := common.RetryBackoff
	for attempt := 0; attempt < common.RetryAttempts; attempt++ {
		if err := fn(ordered[attempt%len(ordered)]); err != nil {
			lastErr = err
			if attempt+1 < common.RetryAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = types.ErrAllReplicasFailed
	}
	return lastErr
}
