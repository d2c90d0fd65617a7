package chunkserver

import (
	"testing"
	"time"

	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

func newTestServer(t *testing.T, capacity int64) *ChunkServer {
	t.Helper()
	cs := New(Config{
		ServerID:    "test-cs",
		Addr:        types.Addr("127.0.0.1:0"),
		MaxCapacity: capacity,
	})
	// avoid a real listener in table-driven store tests; only the
	// handler/store paths are exercised here, not Accept/Start.
	return cs
}

func TestStoreWriteThenRead(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	id := types.ChunkID(1)

	chunk, err := cs.store.write(id, 0, []byte("hello"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if chunk.Version != 1 {
		t.Fatalf("expected version 1, got %d", chunk.Version)
	}

	_, data, err := cs.store.read(id, 0, 5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", data)
	}
}

func TestStoreWriteGrowsAndBumpsVersion(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	id := types.ChunkID(2)

	if _, err := cs.store.write(id, 0, []byte("abc")); err != nil {
		t.Fatalf("initial write: %v", err)
	}
	chunk, err := cs.store.write(id, 3, []byte("def"))
	if err != nil {
		t.Fatalf("append write: %v", err)
	}
	if chunk.Version != 2 {
		t.Fatalf("expected version 2, got %d", chunk.Version)
	}
	if string(chunk.Bytes) != "abcdef" {
		t.Fatalf("expected %q, got %q", "abcdef", chunk.Bytes)
	}
}

func TestStoreWriteRejectsNonZeroOffsetForNewChunk(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	if _, err := cs.store.write(types.ChunkID(3), 4, []byte("x")); err != types.ErrBadOffset {
		t.Fatalf("expected ErrBadOffset, got %v", err)
	}
}

func TestStoreWriteRejectsOverCapacity(t *testing.T) {
	cs := newTestServer(t, 4)
	if _, err := cs.store.write(types.ChunkID(4), 0, []byte("toolong")); err != types.ErrOutOfCapacity {
		t.Fatalf("expected ErrOutOfCapacity, got %v", err)
	}
}

func TestStoreReadOutOfRange(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	id := types.ChunkID(5)
	cs.store.write(id, 0, []byte("abc"))
	if _, _, err := cs.store.read(id, 10, 1); err != types.ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestStoreReadMissingChunk(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	if _, _, err := cs.store.read(types.ChunkID(99), 0, 1); err != types.ErrChunkNotFound {
		t.Fatalf("expected ErrChunkNotFound, got %v", err)
	}
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	id := types.ChunkID(6)
	cs.store.write(id, 0, []byte("abc"))
	cs.store.delete(id)
	cs.store.delete(id) // second delete must not panic or error
	if _, ok := cs.store.get(id); ok {
		t.Fatalf("expected chunk to be gone")
	}
}

func TestSnapshotStatusReflectsCapacity(t *testing.T) {
	cs := newTestServer(t, 100)
	cs.store.write(types.ChunkID(7), 0, []byte("12345"))
	used, total, healthy := cs.store.snapshotStatus()
	if used != 5 {
		t.Fatalf("expected used=5, got %d", used)
	}
	if total != 100 {
		t.Fatalf("expected total=100, got %d", total)
	}
	if len(healthy) != 1 {
		t.Fatalf("expected 1 healthy chunk, got %d", len(healthy))
	}
}

func TestHandleWriteAndReadOverDispatch(t *testing.T) {
	cs := newTestServer(t, 1<<20)

	writeReq := &types.WriteRequest{ChunkID: types.ChunkID(10), Offset: 0, Data: []byte("payload")}
	frame := wire.NewFrame(wire.OpWrite, wire.MarshalWriteRequest(writeReq))
	respFrame, err := cs.dispatch(frame)
	if err != nil {
		t.Fatalf("dispatch write: %v", err)
	}
	writeResp, err := wire.UnmarshalWriteResponse(respFrame.Payload)
	if err != nil {
		t.Fatalf("unmarshal write response: %v", err)
	}
	if !writeResp.Success {
		t.Fatalf("expected write success, got error %v", writeResp.Error)
	}

	readReq := &types.ReadRequest{ChunkID: types.ChunkID(10), Offset: 0, Length: 7}
	frame = wire.NewFrame(wire.OpRead, wire.MarshalReadRequest(readReq))
	respFrame, err = cs.dispatch(frame)
	if err != nil {
		t.Fatalf("dispatch read: %v", err)
	}
	readResp, err := wire.UnmarshalReadResponse(respFrame.Payload)
	if err != nil {
		t.Fatalf("unmarshal read response: %v", err)
	}
	if !readResp.Success || string(readResp.Data) != "payload" {
		t.Fatalf("unexpected read response: %+v", readResp)
	}
}

func TestHandleDeleteOverDispatch(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	cs.store.write(types.ChunkID(11), 0, []byte("gone"))

	delReq := &types.DeleteRequest{ChunkID: types.ChunkID(11)}
	frame := wire.NewFrame(wire.OpDelete, wire.MarshalDeleteRequest(delReq))
	respFrame, err := cs.dispatch(frame)
	if err != nil {
		t.Fatalf("dispatch delete: %v", err)
	}
	delResp, err := wire.UnmarshalDeleteResponse(respFrame.Payload)
	if err != nil {
		t.Fatalf("unmarshal delete response: %v", err)
	}
	if !delResp.Success {
		t.Fatalf("expected delete success")
	}
	if _, ok := cs.store.get(types.ChunkID(11)); ok {
		t.Fatalf("expected chunk removed")
	}
}

func TestDiskStorePersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	disk := newDiskStore(dir)

	chunk := &types.StoredChunk{
		ChunkID:  types.ChunkID(42),
		Bytes:    []byte("durable"),
		Version:  3,
		Checksum: 0xabcdef,
	}
	if err := disk.persist(chunk); err != nil {
		t.Fatalf("persist: %v", err)
	}

	s := newStore(1 << 20)
	if err := disk.loadInto(s); err != nil {
		t.Fatalf("loadInto: %v", err)
	}
	got, ok := s.get(types.ChunkID(42))
	if !ok {
		t.Fatalf("expected chunk 42 to be reloaded")
	}
	if string(got.Bytes) != "durable" || got.Version != 3 {
		t.Fatalf("unexpected reloaded chunk: %+v", got)
	}
}

func TestDiskStoreRemoveDropsChunk(t *testing.T) {
	dir := t.TempDir()
	disk := newDiskStore(dir)
	chunk := &types.StoredChunk{ChunkID: types.ChunkID(1), Bytes: []byte("x"), Version: 1}
	disk.persist(chunk)
	disk.remove(types.ChunkID(1))

	s := newStore(1 << 20)
	disk.loadInto(s)
	if _, ok := s.get(types.ChunkID(1)); ok {
		t.Fatalf("expected chunk removed from disk index")
	}
}

func TestServerStateTransitions(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	if cs.State() != StateInit {
		t.Fatalf("expected StateInit, got %v", cs.State())
	}
	cs.setState(StateDegraded)
	if cs.State() != StateDegraded {
		t.Fatalf("expected StateDegraded, got %v", cs.State())
	}
}

func TestStatusReportsHealthyWhenRunning(t *testing.T) {
	cs := newTestServer(t, 1<<20)
	cs.setState(StateRunning)
	status := cs.Status()
	if !status.Healthy {
		t.Fatalf("expected healthy status while running")
	}
	if status.LastHeartbeat.After(time.Now()) {
		t.Fatalf("unexpected future heartbeat timestamp")
	}
}
