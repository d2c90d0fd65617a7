package directory

import (
	"errors"
	"io"
	"net"
	"runtime"
	"sync"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

// Directory serves the external collaborator contract of spec.md 4.4
// over the same framed wire protocol the storage node speaks. Grounded
// on chunkserver.ChunkServer's accept-loop/worker-pool shape, since both
// processes share the same "listen, fan connections out to a fixed
// worker pool, dispatch by message type" structure.
type Directory struct {
	ns       *namespace
	registry *registry
	alloc    *allocator

	addr     types.Addr
	listener net.Listener
	shutdown chan struct{}
	wg       sync.WaitGroup
}

func New(addr types.Addr) *Directory {
	reg := newRegistry()
	return &Directory{
		ns:       newNamespace(),
		registry: reg,
		alloc:    newAllocator(reg),
		addr:     addr,
		shutdown: make(chan struct{}),
	}
}

// Addr returns the directory's listening address, resolved to an actual
// port once Start has run even if it was constructed with an ephemeral
// one.
func (d *Directory) Addr() types.Addr {
	return d.addr
}

func (d *Directory) Start() error {
	l, err := net.Listen("tcp", string(d.addr))
	if err != nil {
		return err
	}
	d.listener = l
	d.addr = types.Addr(l.Addr().String())

	workers := runtime.GOMAXPROCS(0)
	connCh := make(chan net.Conn, workers)
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.workerLoop(connCh)
	}

	d.wg.Add(1)
	go d.acceptLoop(connCh)

	common.LInfo("directory listening on %v (%d workers)", d.addr, workers)
	return nil
}

func (d *Directory) acceptLoop(connCh chan<- net.Conn) {
	defer d.wg.Done()
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				close(connCh)
				return
			default:
				common.LWarn("directory: accept error: %v", err)
				continue
			}
		}
		select {
		case connCh <- conn:
		case <-d.shutdown:
			conn.Close()
			close(connCh)
			return
		}
	}
}

func (d *Directory) workerLoop(connCh <-chan net.Conn) {
	defer d.wg.Done()
	for raw := range connCh {
		d.handleConnection(raw)
	}
}

func (d *Directory) handleConnection(raw net.Conn) {
	defer raw.Close()
	conn := wire.NewConn(raw)
	for {
		req, err := conn.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				common.LTrace("directory: connection from %v closed: %v", raw.RemoteAddr(), err)
			}
			return
		}
		resp := d.dispatch(req)
		if resp == nil {
			continue // OP_HEARTBEAT: fire-and-forget, no reply frame
		}
		if err := conn.WriteFrame(resp); err != nil {
			common.LTrace("directory: write to %v failed: %v", raw.RemoteAddr(), err)
			return
		}
	}
}

func (d *Directory) Stop() {
	close(d.shutdown)
	if d.listener != nil {
		d.listener.Close()
	}
	d.wg.Wait()
	common.LInfo("directory stopped")
}
