package client

import (
	"sync"

	"chunkstore/internal/common"
	"chunkstore/internal/wire"
)

// connPool is a bounded pool of dialled connections keyed by "ip:port",
// grounded on the teacher's internal/common/rpc.ClientEnd's
// "dial lazily, reuse, redial on failure" shape but made concurrency-safe
// for sharing across goroutines and bounded at ConnPoolSize idle
// connections per endpoint, the way a connection pool in the rest of the
// pack (rather than the teacher's single unpooled ClientEnd) would be
// shaped.
type connPool struct {
	mu    sync.Mutex
	idle  map[string][]*wire.Conn
	limit int
}

func newConnPool(limit int) *connPool {
	if limit <= 0 {
		limit = common.ConnPoolSize
	}
	return &connPool{idle: make(map[string][]*wire.Conn), limit: limit}
}

// acquire returns an idle connection to addr if one is pooled, otherwise
// dials a fresh one.
func (p *connPool) acquire(addr string) (*wire.Conn, error) {
	p.mu.Lock()
	if conns := p.idle[addr]; len(conns) > 0 {
		conn := conns[len(conns)-1]
		p.idle[addr] = conns[:len(conns)-1]
		p.mu.Unlock()
		return conn, nil
	}
	p.mu.Unlock()
	return wire.Dial(addr)
}

// release returns conn to the pool, or closes it outright when the
// endpoint's idle list is already at limit.
func (p *connPool) release(addr string, conn *wire.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle[addr]) >= p.limit {
		conn.Close()
		return
	}
	p.idle[addr] = append(p.idle[addr], conn)
}

// discard closes conn without returning it to the pool, for use after a
// roundtrip error where the connection's state is no longer trustworthy.
func (p *connPool) discard(conn *wire.Conn) {
	conn.Close()
}

func (p *connPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, conns := range p.idle {
		for _, c := range conns {
			c.Close()
		}
	}
	p.idle = make(map[string][]*wire.Conn)
}
