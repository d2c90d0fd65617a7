// Package chunkserver implements the storage-node component: an
// in-memory (optionally disk-backed) chunk table served over the framed
// wire protocol, plus the outbound heartbeat loop to the directory.
// Grounded on the teacher's internal/chunkServer/chunkserver.go
// (MustNewAndServe, a rootDir + chunk map + background goroutines) but
// the RPC surface is replaced end to end: the teacher dispatches through
// net/rpc method reflection, this dispatches through the wire package's
// typed frame codec per spec.md 4.1/4.2.
package chunkserver

import (
	"errors"
	"io"
	"net"
	"runtime"
	"sync"
	"time"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

// State is the node's lifecycle state machine from spec.md 4.2:
// Init -> Listening -> Running <-> Degraded -> Stopping -> Stopped.
type State int32

const (
	StateInit State = iota
	StateListening
	StateRunning
	StateDegraded
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateListening:
		return "Listening"
	case StateRunning:
		return "Running"
	case StateDegraded:
		return "Degraded"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

type Config struct {
	ServerID      string
	Addr          types.Addr
	DirectoryAddr types.Addr
	MaxCapacity   int64
	DataDir       string // empty means memory-only
}

type ChunkServer struct {
	cfg   Config
	store *store
	disk  *diskStore // nil when running memory-only

	mu       sync.RWMutex
	state    State
	listener net.Listener
	shutdown chan struct{}
	wg       sync.WaitGroup

	replicationQueue int32
}

// New constructs a chunk server in StateInit; call Start to bring up the
// listener, worker pool and heartbeat loop.
func New(cfg Config) *ChunkServer {
	if cfg.ServerID == "" {
		cfg.ServerID = common.NewServerID()
	}
	if cfg.MaxCapacity == 0 {
		cfg.MaxCapacity = common.ChunkSizeBytes * 1024
	}
	cs := &ChunkServer{
		cfg:      cfg,
		store:    newStore(cfg.MaxCapacity),
		shutdown: make(chan struct{}),
	}
	if cfg.DataDir != "" {
		cs.disk = newDiskStore(cfg.DataDir)
	}
	return cs
}

// Addr returns the node's listening address, resolved to an actual port
// once Start has run even if Config.Addr asked for an ephemeral one.
func (cs *ChunkServer) Addr() types.Addr {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.cfg.Addr
}

func (cs *ChunkServer) State() State {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.state
}

func (cs *ChunkServer) setState(s State) {
	cs.mu.Lock()
	cs.state = s
	cs.mu.Unlock()
}

// Start brings the node up: loads any persisted chunks, opens the
// listener, and launches the accept loop and heartbeat loop as
// background goroutines sized to hardware parallelism per spec.md 4.2
// ("worker pool sized to the machine's hardware parallelism").
func (cs *ChunkServer) Start() error {
	if cs.disk != nil {
		if err := cs.disk.loadInto(cs.store); err != nil {
			common.LWarn("chunkserver %v: failed loading persisted chunks: %v", cs.cfg.ServerID, err)
		}
	}

	l, err := net.Listen("tcp", string(cs.cfg.Addr))
	if err != nil {
		return err
	}
	cs.listener = l
	cs.cfg.Addr = types.Addr(l.Addr().String())
	cs.setState(StateListening)

	workers := runtime.GOMAXPROCS(0)
	connCh := make(chan net.Conn, workers)
	for i := 0; i < workers; i++ {
		cs.wg.Add(1)
		go cs.workerLoop(connCh)
	}

	cs.setState(StateRunning)
	common.LInfo("chunkserver %v listening on %v (%d workers)", cs.cfg.ServerID, cs.cfg.Addr, workers)

	cs.wg.Add(1)
	go cs.acceptLoop(connCh)

	if cs.cfg.DirectoryAddr != "" {
		cs.wg.Add(1)
		go cs.heartbeatLoop()
	}

	return nil
}

func (cs *ChunkServer) acceptLoop(connCh chan<- net.Conn) {
	defer cs.wg.Done()
	for {
		conn, err := cs.listener.Accept()
		if err != nil {
			select {
			case <-cs.shutdown:
				close(connCh)
				return
			default:
				common.LWarn("chunkserver %v: accept error: %v", cs.cfg.ServerID, err)
				continue
			}
		}
		select {
		case connCh <- conn:
		case <-cs.shutdown:
			conn.Close()
			close(connCh)
			return
		}
	}
}

func (cs *ChunkServer) workerLoop(connCh <-chan net.Conn) {
	defer cs.wg.Done()
	for raw := range connCh {
		cs.handleConnection(raw)
	}
}

// handleConnection serves frames from one TCP connection in order until
// the peer disconnects or a frame fails verification, per the ordering
// guarantee in spec.md 5(a) and the "no partial parsing" rule in 4.1.
func (cs *ChunkServer) handleConnection(raw net.Conn) {
	defer raw.Close()
	conn := wire.NewConn(raw)
	for {
		req, err := conn.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				common.LTrace("chunkserver %v: connection from %v closed: %v", cs.cfg.ServerID, raw.RemoteAddr(), err)
			}
			return
		}
		resp, err := cs.dispatch(req)
		if err != nil {
			common.LWarn("chunkserver %v: dispatch %v error: %v", cs.cfg.ServerID, req.Type, err)
			return
		}
		if err := conn.WriteFrame(resp); err != nil {
			common.LTrace("chunkserver %v: write to %v failed: %v", cs.cfg.ServerID, raw.RemoteAddr(), err)
			return
		}
	}
}

// Stop performs the graceful shutdown in spec.md 5: stop accepting,
// let in-flight handlers finish (bounded by NETWORK_TIMEOUT_MS per read),
// then join the worker pool.
func (cs *ChunkServer) Stop() {
	cs.setState(StateStopping)
	close(cs.shutdown)
	if cs.listener != nil {
		cs.listener.Close()
	}
	cs.wg.Wait()
	cs.setState(StateStopped)
	common.LInfo("chunkserver %v stopped", cs.cfg.ServerID)
}

func (cs *ChunkServer) Status() types.ChunkServerStatus {
	used, total, healthy := cs.store.snapshotStatus()
	return types.ChunkServerStatus{
		ServerID:            cs.cfg.ServerID,
		Addr:                cs.cfg.Addr,
		TotalCapacity:       total,
		UsedCapacity:        used,
		HealthyChunks:       healthy,
		ReplicationQueueLen: int(cs.replicationQueue),
		LastHeartbeat:       time.Now(),
		Healthy:             cs.State() == StateRunning || cs.State() == StateDegraded,
	}
}
