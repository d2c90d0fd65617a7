// Package types holds the value types that flow across the wire and the
// local records each process keeps about them. Grounded on the teacher's
// internal/types/meta.go (Path/Addr/ChunkHandle aliasing, plain value
// structs) but the field sets follow the chunk-store data model rather
// than the teacher's GFS lease/namespace fields.
package types

import "time"

type ChunkID int64

// Addr is a "host:port" endpoint string, kept as a distinct type the way
// the teacher keeps types.Addr, so call sites read as addresses rather
// than bare strings.
type Addr string

// ChunkLocation addresses one replica of a chunk.
type ChunkLocation struct {
	ServerID   string
	Addr       Addr
	Generation uint64
}

// ChunkHandle is the logical, wire-visible description of a chunk: its
// id, the replicas carrying it, and version/size bookkeeping. It is a
// value type — copies of it flow in FileMetadata and in metadata-query
// responses, never a shared pointer between processes.
type ChunkHandle struct {
	ChunkID      ChunkID
	Replicas     []ChunkLocation
	Version      uint32
	CreationTime time.Time
	Size         int64
}

// FileMetadata describes one path in the namespace.
type FileMetadata struct {
	Path         string
	FileID       uint64
	Permissions  uint32
	CreationTime time.Time
	ModTime      time.Time
	FileSize     int64
	Chunks       []ChunkHandle
	Replication  int
	Owner        string
	IsDirectory  bool
}

// StoredChunk is the authoritative local copy of a chunk kept by one
// storage node. Never serialized whole onto the wire: OP_READ/OP_WRITE
// payloads carry only the byte ranges a caller asked for.
type StoredChunk struct {
	ChunkID      ChunkID
	Bytes        []byte
	Version      uint32
	CreationTime time.Time
	LastAccess   time.Time
	Checksum     uint32
}

func (c *StoredChunk) Size() int64 { return int64(len(c.Bytes)) }

// ChunkServerStatus is the health snapshot a storage node reports, either
// in a heartbeat or to an operator querying it directly.
type ChunkServerStatus struct {
	ServerID           string
	Addr               Addr
	TotalCapacity       int64
	UsedCapacity        int64
	HealthyChunks        []ChunkID
	ReplicationQueueLen int
	LastHeartbeat        time.Time
	Healthy              bool
}

// HeartbeatMessage is the unsolicited payload a storage node pushes to
// the directory every HeartbeatInterval.
type HeartbeatMessage struct {
	ServerID            string
	Addr                Addr
	Timestamp           time.Time
	HealthyChunks       []ChunkID
	TotalCapacity       int64
	UsedCapacity        int64
	ReplicationQueueLen int
}

// OpenFileHandle is the client-local record behind a file descriptor.
type OpenFileHandle struct {
	FD       int
	Path     string
	FileID   uint64
	Offset   int64
	Chunks   []ChunkHandle
	Writable bool
	OpenedAt time.Time
}

// CachedMetadata pairs a FileMetadata with the time it was fetched, so a
// client can decide whether the entry is still inside MetadataCacheTTL.
type CachedMetadata struct {
	Meta      FileMetadata
	FetchedAt time.Time
}

func (c CachedMetadata) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(c.FetchedAt) >= ttl
}
