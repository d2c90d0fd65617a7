package types

// Request/response payload shapes carried inside a wire frame, one pair
// per OP_* message type (see the wire package for the frame header and
// the field-by-field codec). Kept here rather than in the wire package
// so both the chunk server, the client and the reference directory share
// one definition of "what an OP_WRITE means".

type WriteRequest struct {
	ChunkID     ChunkID
	Offset      int64
	Data        []byte
	VersionHint uint32
}

type WriteResponse struct {
	ChunkID ChunkID
	Success bool
	Error   *WireError
}

type ReadRequest struct {
	ChunkID ChunkID
	Offset  int64
	Length  int32
	Version uint32
}

type ReadResponse struct {
	ChunkID ChunkID
	Offset  int64
	Data    []byte
	Success bool
	Error   *WireError
}

type DeleteRequest struct {
	ChunkID ChunkID
}

type DeleteResponse struct {
	Success bool
}

// ReplicateRequest asks a storage node to push its local copy of a chunk
// to TargetAddr (source-pull / forward-push, per spec.md 4.2's
// OP_REPLICATE contract: the server looks the chunk up locally and
// issues a fresh OP_WRITE against the target).
type ReplicateRequest struct {
	ChunkID    ChunkID
	TargetAddr Addr
}

type ReplicateResponse struct {
	Success bool
	Error   *WireError
}

type MetadataQueryRequest struct {
	Path string
}

type MetadataQueryResponse struct {
	Meta    FileMetadata
	Success bool
	Error   *WireError
}

type FileCreateRequest struct {
	Path        string
	Permissions uint32
}

type FileCreateResponse struct {
	FileID  uint64
	Success bool
	Error   *WireError
}

type FileDeleteRequest struct {
	Path string
}

type FileDeleteResponse struct {
	Success bool
	Error   *WireError
}

type MkdirRequest struct {
	Path string
}

type MkdirResponse struct {
	Success bool
	Error   *WireError
}

// Ack is the generic OP_ACK payload used when a handler has nothing more
// specific to say than "it worked" or "it didn't, here's why".
type Ack struct {
	Success bool
	Error   *WireError
}

// AllocateChunkRequest/Response ride OpAllocateChunk, the reference
// directory's one extension beyond spec.md 4.4's enumerated ops (see
// wire.OpAllocateChunk) — a client asks the directory to mint and place
// a new chunk for an existing file path.
type AllocateChunkRequest struct {
	Path string
}

type AllocateChunkResponse struct {
	Handle  ChunkHandle
	Success bool
	Error   *WireError
}
