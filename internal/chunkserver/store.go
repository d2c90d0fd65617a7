package chunkserver

import (
	"sync"
	"time"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
)

// store is the chunk table: chunk_id -> StoredChunk, plus the running
// used_capacity figure. Grounded on the teacher's ChunkServer.chunk map
// and its single cs.lock, but the spec is stricter than the teacher
// about what that lock must cover: membership and capacity accounting
// are updated under the same critical section on every mutating path, so
// "used_capacity == sum of chunk sizes" never observably breaks.
type store struct {
	mu           sync.RWMutex
	chunks       map[types.ChunkID]*types.StoredChunk
	usedCapacity int64
	maxCapacity  int64
}

func newStore(maxCapacity int64) *store {
	return &store{
		chunks:      make(map[types.ChunkID]*types.StoredChunk),
		maxCapacity: maxCapacity,
	}
}

func (s *store) snapshotStatus() (used, total int64, healthy []types.ChunkID) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	healthy = make([]types.ChunkID, 0, len(s.chunks))
	for id := range s.chunks {
		healthy = append(healthy, id)
	}
	return s.usedCapacity, s.maxCapacity, healthy
}

func (s *store) read(id types.ChunkID, offset int64, length int32) (*types.StoredChunk, []byte, error) {
	s.mu.Lock() // full lock for the whole read, since it also updates last_access
	defer s.mu.Unlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return nil, nil, types.ErrChunkNotFound
	}
	size := chunk.Size()
	if offset >= size {
		return nil, nil, types.ErrOutOfRange
	}
	end := offset + int64(length)
	if end > size {
		end = size
	}
	out := make([]byte, end-offset)
	copy(out, chunk.Bytes[offset:end])
	chunk.LastAccess = time.Now()
	return chunk, out, nil
}

// write implements the OP_WRITE contract of spec.md 4.2: absent chunks
// must be created at offset 0, present chunks grow to
// max(offset+len(bytes), current size), and capacity accounting is
// updated atomically with the mutation.
func (s *store) write(id types.ChunkID, offset int64, data []byte) (*types.StoredChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunk, ok := s.chunks[id]
	if !ok {
		if offset != 0 {
			return nil, types.ErrBadOffset
		}
		if s.usedCapacity+int64(len(data)) > s.maxCapacity {
			return nil, types.ErrOutOfCapacity
		}
		chunk = &types.StoredChunk{
			ChunkID:      id,
			Bytes:        append([]byte{}, data...),
			Version:      1,
			CreationTime: time.Now(),
			LastAccess:   time.Now(),
		}
		chunk.Checksum = common.CRC32(chunk.Bytes)
		s.chunks[id] = chunk
		s.usedCapacity += chunk.Size()
		return chunk, nil
	}

	newSize := offset + int64(len(data))
	if newSize < chunk.Size() {
		newSize = chunk.Size()
	}
	delta := newSize - chunk.Size()
	if s.usedCapacity+delta > s.maxCapacity {
		return nil, types.ErrOutOfCapacity
	}
	if newSize > int64(len(chunk.Bytes)) {
		grown := make([]byte, newSize)
		copy(grown, chunk.Bytes)
		chunk.Bytes = grown
	}
	copy(chunk.Bytes[offset:], data)
	chunk.Version++
	chunk.Checksum = common.CRC32(chunk.Bytes)
	chunk.LastAccess = time.Now()
	s.usedCapacity += delta
	return chunk, nil
}

// delete is idempotent: deleting an absent chunk is a no-op success.
func (s *store) delete(id types.ChunkID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return
	}
	s.usedCapacity -= chunk.Size()
	delete(s.chunks, id)
}

func (s *store) get(id types.ChunkID) (*types.StoredChunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	return chunk, ok
}

func (s *store) install(id types.ChunkID, data []byte, version uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.chunks[id]; ok {
		s.usedCapacity -= old.Size()
	}
	chunk := &types.StoredChunk{
		ChunkID:      id,
		Bytes:        append([]byte{}, data...),
		Version:      version,
		CreationTime: time.Now(),
		LastAccess:   time.Now(),
		Checksum:     common.CRC32(data),
	}
	s.chunks[id] = chunk
	s.usedCapacity += chunk.Size()
}
