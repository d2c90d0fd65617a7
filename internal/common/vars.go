package common

import "time"

// Tunables and wire constants, mirroring the defaults table in the system
// spec. Kept as package vars (not consts) the same way the teacher keeps
// its cluster tunables, so a process can override them before startup.
var (
	ChunkSizeBytes  = int64(64 * 1024 * 1024)
	ReplicationFactor = 3
	MinimumReplicas   = 2

	HeartbeatInterval = 3 * time.Second
	HeartbeatTimeout  = 60 * time.Second

	MetadataCacheTTL = 300 * time.Second

	MaxConcurrentClients = 1000
	NetworkTimeout       = 5000 * time.Millisecond

	RetryAttempts   = 3
	RetryBackoff    = 100 * time.Millisecond

	ConnPoolSize = 20

	// CacheSweepTick is how often the metadata cache reaps expired
	// entries in the background.
	CacheSweepTick = 30 * time.Second
)

const (
	ProtocolMagic   uint32 = 0xDEADBEEF
	ProtocolVersion uint16 = 1
)
