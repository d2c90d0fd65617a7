package chunkserver

import (
	"time"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

// heartbeatLoop pushes an OP_HEARTBEAT frame to the directory as soon as
// it starts and then every HeartbeatInterval, reconnecting lazily on failure and flipping the
// node into StateDegraded while the directory is unreachable — it keeps
// serving reads/writes throughout, per spec.md 4.2's state machine.
// Grounded on the teacher's ChunkServer.GoHeartbeat/heartbeat, minus the
// multi-master redirect dance (this system has exactly one directory
// endpoint per spec.md's external-collaborator contract).
func (cs *ChunkServer) heartbeatLoop() {
	defer cs.wg.Done()

	var conn *wire.Conn
	ticker := time.NewTicker(common.HeartbeatInterval)
	defer ticker.Stop()

	for first := true; ; first = false {
		if !first {
			select {
			case <-cs.shutdown:
				if conn != nil {
					conn.Close()
				}
				return
			case <-ticker.C:
			}
		}

		if conn == nil {
			c, err := wire.Dial(string(cs.cfg.DirectoryAddr))
			if err != nil {
				common.LWarn("chunkserver %v: cannot reach directory %v: %v", cs.cfg.ServerID, cs.cfg.DirectoryAddr, err)
				cs.setState(StateDegraded)
				continue
			}
			conn = c
		}

		if err := cs.sendHeartbeat(conn); err != nil {
			common.LWarn("chunkserver %v: heartbeat failed: %v", cs.cfg.ServerID, err)
			conn.Close()
			conn = nil
			cs.setState(StateDegraded)
			continue
		}
		if cs.State() == StateDegraded {
			cs.setState(StateRunning)
		}
	}
}

// sendHeartbeat takes the chunk-table snapshot under the chunk lock
// (via store.snapshotStatus) and pushes it, per spec.md 4.2: "the
// snapshot is taken under the chunk lock."
func (cs *ChunkServer) sendHeartbeat(conn *wire.Conn) error {
	used, total, healthy := cs.store.snapshotStatus()
	msg := &types.HeartbeatMessage{
		ServerID:            cs.cfg.ServerID,
		Addr:                cs.cfg.Addr,
		Timestamp:           time.Now(),
		HealthyChunks:       healthy,
		TotalCapacity:       total,
		UsedCapacity:        used,
		ReplicationQueueLen: int(cs.replicationQueue),
	}
	frame := wire.NewFrame(wire.OpHeartbeat, wire.MarshalHeartbeat(msg))
	return conn.WriteFrame(frame)
}
