package directory

import (
	"testing"
	"time"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

func TestNamespaceCreateAndLookup(t *testing.T) {
	ns := newNamespace()
	if _, err := ns.createFile("/a/b.txt", 0644); err != nil {
		t.Fatalf("createFile: %v", err)
	}
	meta, err := ns.lookup("/a/b.txt")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if meta.Permissions != 0644 {
		t.Fatalf("expected permissions 0644, got %o", meta.Permissions)
	}
}

func TestNamespaceCreateFileAlreadyExists(t *testing.T) {
	ns := newNamespace()
	ns.createFile("/a.txt", 0644)
	if _, err := ns.createFile("/a.txt", 0644); err != types.ErrFileExists {
		t.Fatalf("expected ErrFileExists, got %v", err)
	}
}

func TestNamespaceMkdirThenCreateInside(t *testing.T) {
	ns := newNamespace()
	if err := ns.mkdir("/dir1/dir2"); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := ns.createFile("/dir1/dir2/f.txt", 0600); err != nil {
		t.Fatalf("createFile inside mkdir'd path: %v", err)
	}
}

func TestNamespaceDeleteFile(t *testing.T) {
	ns := newNamespace()
	ns.createFile("/x.txt", 0644)
	if err := ns.deleteFile("/x.txt"); err != nil {
		t.Fatalf("deleteFile: %v", err)
	}
	if _, err := ns.lookup("/x.txt"); err != types.ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound after delete, got %v", err)
	}
}

func TestNamespaceDeleteMissingFile(t *testing.T) {
	ns := newNamespace()
	if err := ns.deleteFile("/missing.txt"); err != types.ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestRegistryHeartbeatAndExpiry(t *testing.T) {
	reg := newRegistry()
	reg.observeHeartbeat(&types.HeartbeatMessage{ServerID: "cs1", Addr: "127.0.0.1:9001", Timestamp: time.Now()})
	healthy := reg.healthy(time.Now())
	if len(healthy) != 1 {
		t.Fatalf("expected 1 healthy server, got %d", len(healthy))
	}

	stale := time.Now().Add(-10 * time.Minute)
	reg.observeHeartbeat(&types.HeartbeatMessage{ServerID: "cs2", Addr: "127.0.0.1:9002", Timestamp: stale})
	healthy = reg.healthy(time.Now())
	if len(healthy) != 1 {
		t.Fatalf("expected stale server excluded, got %d healthy", len(healthy))
	}
}

func TestRegistryPlacementsRoundRobin(t *testing.T) {
	reg := newRegistry()
	now := time.Now()
	for i, id := range []string{"cs1", "cs2", "cs3"} {
		reg.observeHeartbeat(&types.HeartbeatMessage{ServerID: id, Addr: types.Addr("addr"), Timestamp: now})
		_ = i
	}
	first := reg.placements(2)
	second := reg.placements(2)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 placements each call")
	}
	if first[0].ServerID == second[0].ServerID && first[1].ServerID == second[1].ServerID {
		t.Fatalf("expected round-robin cursor to advance between calls")
	}
}

func TestAllocatorFailsWithNoChunkServers(t *testing.T) {
	reg := newRegistry()
	alloc := newAllocator(reg)
	if _, err := alloc.allocate(); err != types.ErrNoChunkServers {
		t.Fatalf("expected ErrNoChunkServers, got %v", err)
	}
}

func TestAllocatorAssignsReplicationFactorReplicas(t *testing.T) {
	reg := newRegistry()
	now := time.Now()
	for _, id := range []string{"cs1", "cs2", "cs3", "cs4"} {
		reg.observeHeartbeat(&types.HeartbeatMessage{ServerID: id, Addr: types.Addr(id + ":9000"), Timestamp: now})
	}
	alloc := newAllocator(reg)
	handle, err := alloc.allocate()
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(handle.Replicas) != common.ReplicationFactor {
		t.Fatalf("expected %d replicas, got %d", common.ReplicationFactor, len(handle.Replicas))
	}
}

func TestDirectoryDispatchFileCreateAndQuery(t *testing.T) {
	d := New(types.Addr("127.0.0.1:0"))

	createReq := &types.FileCreateRequest{Path: "/file.txt", Permissions: 0644}
	frame := wire.NewFrame(wire.OpFileCreate, wire.MarshalFileCreateRequest(createReq))
	respFrame := d.dispatch(frame)
	createResp, err := wire.UnmarshalFileCreateResponse(respFrame.Payload)
	if err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if !createResp.Success {
		t.Fatalf("expected create success, got error %v", createResp.Error)
	}

	queryReq := &types.MetadataQueryRequest{Path: "/file.txt"}
	frame = wire.NewFrame(wire.OpMetadataQuery, wire.MarshalMetadataQueryRequest(queryReq))
	respFrame = d.dispatch(frame)
	queryResp, err := wire.UnmarshalMetadataQueryResponse(respFrame.Payload)
	if err != nil {
		t.Fatalf("unmarshal query response: %v", err)
	}
	if !queryResp.Success || queryResp.Meta.Path != "/file.txt" {
		t.Fatalf("unexpected metadata query response: %+v", queryResp)
	}
}

func TestDirectoryDispatchHeartbeatReturnsNoFrame(t *testing.T) {
	d := New(types.Addr("127.0.0.1:0"))
	hb := &types.HeartbeatMessage{ServerID: "cs1", Addr: "127.0.0.1:9001", Timestamp: time.Now()}
	frame := wire.NewFrame(wire.OpHeartbeat, wire.MarshalHeartbeat(hb))
	if resp := d.dispatch(frame); resp != nil {
		t.Fatalf("expected nil response for heartbeat, got %+v", resp)
	}
}

func TestDirectoryAllocateChunkOverDispatch(t *testing.T) {
	d := New(types.Addr("127.0.0.1:0"))
	d.ns.createFile("/big.bin", 0644)
	d.registry.observeHeartbeat(&types.HeartbeatMessage{ServerID: "cs1", Addr: "127.0.0.1:9001", Timestamp: time.Now()})

	req := &types.AllocateChunkRequest{Path: "/big.bin"}
	frame := wire.NewFrame(wire.OpAllocateChunk, wire.MarshalAllocateChunkRequest(req))
	respFrame := d.dispatch(frame)
	resp, err := wire.UnmarshalAllocateChunkResponse(respFrame.Payload)
	if err != nil {
		t.Fatalf("unmarshal allocate response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected allocate success, got error %v", resp.Error)
	}
	if len(resp.Handle.Replicas) == 0 {
		t.Fatalf("expected at least one replica in allocated handle")
	}
}
