package client

import (
	"sync"
	"time"

	"chunkstore/internal/types"
)

// openFileTable is the client-local descriptor table backing Open/Close,
// grounded on the teacher's client.File (a path+offset+mode handle kept
// by the caller) but centralized here behind integer file descriptors
// the way the rest of this package's API returns them, rather than
// handing callers a *File pointer directly.
type openFileTable struct {
	mu      sync.Mutex
	handles map[int]*types.OpenFileHandle
	nextFD  int
}

func newOpenFileTable() *openFileTable {
	return &openFileTable{handles: make(map[int]*types.OpenFileHandle)}
}

func (t *openFileTable) open(path string, fileID uint64, chunks []types.ChunkHandle, writable bool) *types.OpenFileHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextFD++
	h := &types.OpenFileHandle{
		FD:       t.nextFD,
		Path:     path,
		FileID:   fileID,
		Chunks:   chunks,
		Writable: writable,
		OpenedAt: time.Now(),
	}
	t.handles[h.FD] = h
	return h
}

func (t *openFileTable) get(fd int) (*types.OpenFileHandle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.handles[fd]
	return h, ok
}

func (t *openFileTable) close(fd int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.handles[fd]; !ok {
		return false
	}
	delete(t.handles, fd)
	return true
}
