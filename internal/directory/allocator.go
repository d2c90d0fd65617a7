package directory

import (
	"chunkstore/internal/common"
	"chunkstore/internal/types"
)

// allocator mints chunk ids and assigns their initial replica set,
// grounded on the teacher's chunkControlor.MustCreateChunk (id minted via
// common.GetChunkHandleId, replicas fanned out to registered servers) but
// without the WAL append or the synchronous pre-create RPC: this
// directory only places a chunk handle, the client/storage-node pair
// performs the actual write.
type allocator struct {
	registry *registry
}

func newAllocator(reg *registry) *allocator {
	return &allocator{registry: reg}
}

// allocate mints a new chunk at generation 1, replicated across up to
// REPLICATION_FACTOR distinct healthy storage nodes in round-robin
// order. Returns ErrNoChunkServers if the fleet has nothing healthy to
// offer.
func (a *allocator) allocate() (types.ChunkHandle, error) {
	picks := a.registry.placements(common.ReplicationFactor)
	if len(picks) == 0 {
		return types.ChunkHandle{}, types.ErrNoChunkServers
	}

	replicas := make([]types.ChunkLocation, 0, len(picks))
	for _, p := range picks {
		replicas = append(replicas, types.ChunkLocation{
			ServerID:   p.ServerID,
			Addr:       p.Addr,
			Generation: 1,
		})
	}

	return types.ChunkHandle{
		ChunkID:  types.ChunkID(common.NewChunkID()),
		Replicas: replicas,
		Version:  1,
	}, nil
}
