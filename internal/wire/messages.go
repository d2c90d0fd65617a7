package wire

import (
	"chunkstore/internal/types"
	"time"
)

// Marshal/Unmarshal pairs for every OP_* payload. Each pair is the
// concrete instance of the codec contract in spec.md 4.1: encode/decode
// are inverses for every message type.

func timeField(e *encoder, t time.Time) {
	if t.IsZero() {
		e.i64(0)
		return
	}
	e.i64(t.UnixNano())
}
func readTime(d *decoder) time.Time {
	ns := d.i64()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func chunkLocation(e *encoder, l types.ChunkLocation) {
	e.str(l.ServerID)
	e.str(string(l.Addr))
	e.u64(l.Generation)
}
func readChunkLocation(d *decoder) types.ChunkLocation {
	return types.ChunkLocation{
		ServerID:   d.str(),
		Addr:       types.Addr(d.str()),
		Generation: d.u64(),
	}
}

func chunkHandle(e *encoder, h types.ChunkHandle) {
	e.i64(int64(h.ChunkID))
	e.u32(uint32(len(h.Replicas)))
	for _, r := range h.Replicas {
		chunkLocation(e, r)
	}
	e.u32(h.Version)
	timeField(e, h.CreationTime)
	e.i64(h.Size)
}
func readChunkHandle(d *decoder) types.ChunkHandle {
	h := types.ChunkHandle{ChunkID: types.ChunkID(d.i64())}
	n := d.u32()
	h.Replicas = make([]types.ChunkLocation, 0, n)
	for i := uint32(0); i < n; i++ {
		h.Replicas = append(h.Replicas, readChunkLocation(d))
	}
	h.Version = d.u32()
	h.CreationTime = readTime(d)
	h.Size = d.i64()
	return h
}

func fileMetadata(e *encoder, m types.FileMetadata) {
	e.str(m.Path)
	e.u64(m.FileID)
	e.u32(m.Permissions)
	timeField(e, m.CreationTime)
	timeField(e, m.ModTime)
	e.i64(m.FileSize)
	e.u32(uint32(len(m.Chunks)))
	for _, c := range m.Chunks {
		chunkHandle(e, c)
	}
	e.u32(uint32(m.Replication))
	e.str(m.Owner)
	e.boolean(m.IsDirectory)
}
func readFileMetadata(d *decoder) types.FileMetadata {
	m := types.FileMetadata{
		Path:        d.str(),
		FileID:      d.u64(),
		Permissions: d.u32(),
	}
	m.CreationTime = readTime(d)
	m.ModTime = readTime(d)
	m.FileSize = d.i64()
	n := d.u32()
	m.Chunks = make([]types.ChunkHandle, 0, n)
	for i := uint32(0); i < n; i++ {
		m.Chunks = append(m.Chunks, readChunkHandle(d))
	}
	m.Replication = int(d.u32())
	m.Owner = d.str()
	m.IsDirectory = d.boolean()
	return m
}

func MarshalWriteRequest(r *types.WriteRequest) []byte {
	e := &encoder{}
	e.i64(int64(r.ChunkID))
	e.i64(r.Offset)
	e.bytesField(r.Data)
	e.u32(r.VersionHint)
	return e.buf
}
func UnmarshalWriteRequest(b []byte) (*types.WriteRequest, error) {
	d := newDecoder(b)
	r := &types.WriteRequest{ChunkID: types.ChunkID(d.i64()), Offset: d.i64(), Data: d.bytesField(), VersionHint: d.u32()}
	return r, d.err
}

func MarshalWriteResponse(r *types.WriteResponse) []byte {
	e := &encoder{}
	e.i64(int64(r.ChunkID))
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalWriteResponse(b []byte) (*types.WriteResponse, error) {
	d := newDecoder(b)
	r := &types.WriteResponse{ChunkID: types.ChunkID(d.i64()), Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalReadRequest(r *types.ReadRequest) []byte {
	e := &encoder{}
	e.i64(int64(r.ChunkID))
	e.i64(r.Offset)
	e.i32(r.Length)
	e.u32(r.Version)
	return e.buf
}
func UnmarshalReadRequest(b []byte) (*types.ReadRequest, error) {
	d := newDecoder(b)
	r := &types.ReadRequest{ChunkID: types.ChunkID(d.i64()), Offset: d.i64(), Length: d.i32(), Version: d.u32()}
	return r, d.err
}

func MarshalReadResponse(r *types.ReadResponse) []byte {
	e := &encoder{}
	e.i64(int64(r.ChunkID))
	e.i64(r.Offset)
	e.bytesField(r.Data)
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalReadResponse(b []byte) (*types.ReadResponse, error) {
	d := newDecoder(b)
	r := &types.ReadResponse{ChunkID: types.ChunkID(d.i64()), Offset: d.i64(), Data: d.bytesField(), Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalDeleteRequest(r *types.DeleteRequest) []byte {
	e := &encoder{}
	e.i64(int64(r.ChunkID))
	return e.buf
}
func UnmarshalDeleteRequest(b []byte) (*types.DeleteRequest, error) {
	d := newDecoder(b)
	r := &types.DeleteRequest{ChunkID: types.ChunkID(d.i64())}
	return r, d.err
}

func MarshalDeleteResponse(r *types.DeleteResponse) []byte {
	e := &encoder{}
	e.boolean(r.Success)
	return e.buf
}
func UnmarshalDeleteResponse(b []byte) (*types.DeleteResponse, error) {
	d := newDecoder(b)
	r := &types.DeleteResponse{Success: d.boolean()}
	return r, d.err
}

func MarshalReplicateRequest(r *types.ReplicateRequest) []byte {
	e := &encoder{}
	e.i64(int64(r.ChunkID))
	e.str(string(r.TargetAddr))
	return e.buf
}
func UnmarshalReplicateRequest(b []byte) (*types.ReplicateRequest, error) {
	d := newDecoder(b)
	r := &types.ReplicateRequest{ChunkID: types.ChunkID(d.i64()), TargetAddr: types.Addr(d.str())}
	return r, d.err
}

func MarshalReplicateResponse(r *types.ReplicateResponse) []byte {
	e := &encoder{}
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalReplicateResponse(b []byte) (*types.ReplicateResponse, error) {
	d := newDecoder(b)
	r := &types.ReplicateResponse{Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalHeartbeat(h *types.HeartbeatMessage) []byte {
	e := &encoder{}
	e.str(h.ServerID)
	e.str(string(h.Addr))
	timeField(e, h.Timestamp)
	e.u32(uint32(len(h.HealthyChunks)))
	for _, id := range h.HealthyChunks {
		e.i64(int64(id))
	}
	e.i64(h.TotalCapacity)
	e.i64(h.UsedCapacity)
	e.u32(uint32(h.ReplicationQueueLen))
	return e.buf
}
func UnmarshalHeartbeat(b []byte) (*types.HeartbeatMessage, error) {
	d := newDecoder(b)
	h := &types.HeartbeatMessage{ServerID: d.str(), Addr: types.Addr(d.str())}
	h.Timestamp = readTime(d)
	n := d.u32()
	h.HealthyChunks = make([]types.ChunkID, 0, n)
	for i := uint32(0); i < n; i++ {
		h.HealthyChunks = append(h.HealthyChunks, types.ChunkID(d.i64()))
	}
	h.TotalCapacity = d.i64()
	h.UsedCapacity = d.i64()
	h.ReplicationQueueLen = int(d.u32())
	return h, d.err
}

func MarshalMetadataQueryRequest(r *types.MetadataQueryRequest) []byte {
	e := &encoder{}
	e.str(r.Path)
	return e.buf
}
func UnmarshalMetadataQueryRequest(b []byte) (*types.MetadataQueryRequest, error) {
	d := newDecoder(b)
	r := &types.MetadataQueryRequest{Path: d.str()}
	return r, d.err
}

func MarshalMetadataQueryResponse(r *types.MetadataQueryResponse) []byte {
	e := &encoder{}
	fileMetadata(e, r.Meta)
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalMetadataQueryResponse(b []byte) (*types.MetadataQueryResponse, error) {
	d := newDecoder(b)
	r := &types.MetadataQueryResponse{Meta: readFileMetadata(d), Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalFileCreateRequest(r *types.FileCreateRequest) []byte {
	e := &encoder{}
	e.str(r.Path)
	e.u32(r.Permissions)
	return e.buf
}
func UnmarshalFileCreateRequest(b []byte) (*types.FileCreateRequest, error) {
	d := newDecoder(b)
	r := &types.FileCreateRequest{Path: d.str(), Permissions: d.u32()}
	return r, d.err
}

func MarshalFileCreateResponse(r *types.FileCreateResponse) []byte {
	e := &encoder{}
	e.u64(r.FileID)
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalFileCreateResponse(b []byte) (*types.FileCreateResponse, error) {
	d := newDecoder(b)
	r := &types.FileCreateResponse{FileID: d.u64(), Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalFileDeleteRequest(r *types.FileDeleteRequest) []byte {
	e := &encoder{}
	e.str(r.Path)
	return e.buf
}
func UnmarshalFileDeleteRequest(b []byte) (*types.FileDeleteRequest, error) {
	d := newDecoder(b)
	r := &types.FileDeleteRequest{Path: d.str()}
	return r, d.err
}

func MarshalFileDeleteResponse(r *types.FileDeleteResponse) []byte {
	e := &encoder{}
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalFileDeleteResponse(b []byte) (*types.FileDeleteResponse, error) {
	d := newDecoder(b)
	r := &types.FileDeleteResponse{Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalMkdirRequest(r *types.MkdirRequest) []byte {
	e := &encoder{}
	e.str(r.Path)
	return e.buf
}
func UnmarshalMkdirRequest(b []byte) (*types.MkdirRequest, error) {
	d := newDecoder(b)
	r := &types.MkdirRequest{Path: d.str()}
	return r, d.err
}

func MarshalMkdirResponse(r *types.MkdirResponse) []byte {
	e := &encoder{}
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalMkdirResponse(b []byte) (*types.MkdirResponse, error) {
	d := newDecoder(b)
	r := &types.MkdirResponse{Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalAllocateChunkRequest(r *types.AllocateChunkRequest) []byte {
	e := &encoder{}
	e.str(r.Path)
	return e.buf
}
func UnmarshalAllocateChunkRequest(b []byte) (*types.AllocateChunkRequest, error) {
	d := newDecoder(b)
	r := &types.AllocateChunkRequest{Path: d.str()}
	return r, d.err
}

func MarshalAllocateChunkResponse(r *types.AllocateChunkResponse) []byte {
	e := &encoder{}
	chunkHandle(e, r.Handle)
	e.boolean(r.Success)
	e.errField(r.Error)
	return e.buf
}
func UnmarshalAllocateChunkResponse(b []byte) (*types.AllocateChunkResponse, error) {
	d := newDecoder(b)
	r := &types.AllocateChunkResponse{Handle: readChunkHandle(d), Success: d.boolean(), Error: d.errField()}
	return r, d.err
}

func MarshalAck(a *types.Ack) []byte {
	e := &encoder{}
	e.boolean(a.Success)
	e.errField(a.Error)
	return e.buf
}
func UnmarshalAck(b []byte) (*types.Ack, error) {
	d := newDecoder(b)
	a := &types.Ack{Success: d.boolean(), Error: d.errField()}
	return a, d.err
}
