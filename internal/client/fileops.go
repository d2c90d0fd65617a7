package client

import (
	"io"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

// dialDirectory acquires a pooled connection to the directory and sends
// req, returning the raw reply frame; the caller unmarshals it. Grounded
// on the teacher's do()'s "dial, call, return" shape, minus the
// leader-redirect loop since this system has exactly one directory.
func (c *Client) dialDirectory(req *wire.Frame) (*wire.Frame, error) {
	conn, err := c.pool.acquire(string(c.directoryAddr))
	if err != nil {
		return nil, types.ErrDirectoryUnreachable
	}
	resp, err := conn.Roundtrip(req)
	if err != nil {
		c.pool.discard(conn)
		return nil, err
	}
	c.pool.release(string(c.directoryAddr), conn)
	return resp, nil
}

// CreateFile creates path with the given permission bits.
func (c *Client) CreateFile(path string, permissions uint32) error {
	req := wire.NewFrame(wire.OpFileCreate, wire.MarshalFileCreateRequest(&types.FileCreateRequest{Path: path, Permissions: permissions}))
	respFrame, err := c.dialDirectory(req)
	if err != nil {
		return err
	}
	resp, err := wire.UnmarshalFileCreateResponse(respFrame.Payload)
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Error != nil {
			return resp.Error.AsError()
		}
		return types.ErrFileExists
	}
	c.metaCache.invalidate(path)
	return nil
}

// DeleteFile removes path.
func (c *Client) DeleteFile(path string) error {
	req := wire.NewFrame(wire.OpFileDelete, wire.MarshalFileDeleteRequest(&types.FileDeleteRequest{Path: path}))
	respFrame, err := c.dialDirectory(req)
	if err != nil {
		return err
	}
	resp, err := wire.UnmarshalFileDeleteResponse(respFrame.Payload)
	if err != nil {
		return err
	}
	c.metaCache.invalidate(path)
	if !resp.Success && resp.Error != nil {
		return resp.Error.AsError()
	}
	return nil
}

// Mkdir creates path and any missing parent directories.
func (c *Client) Mkdir(path string) error {
	req := wire.NewFrame(wire.OpMkdir, wire.MarshalMkdirRequest(&types.MkdirRequest{Path: path}))
	respFrame, err := c.dialDirectory(req)
	if err != nil {
		return err
	}
	resp, err := wire.UnmarshalMkdirResponse(respFrame.Payload)
	if err != nil {
		return err
	}
	if !resp.Success && resp.Error != nil {
		return resp.Error.AsError()
	}
	return nil
}

// Stat fetches path's metadata, consulting and refreshing the client's
// metadata cache per MetadataCacheTTL.
func (c *Client) Stat(path string) (types.FileMetadata, error) {
	if meta, ok := c.metaCache.get(path); ok {
		return meta, nil
	}
	req := wire.NewFrame(wire.OpMetadataQuery, wire.MarshalMetadataQueryRequest(&types.MetadataQueryRequest{Path: path}))
	respFrame, err := c.dialDirectory(req)
	if err != nil {
		return types.FileMetadata{}, err
	}
	resp, err := wire.UnmarshalMetadataQueryResponse(respFrame.Payload)
	if err != nil {
		return types.FileMetadata{}, err
	}
	if !resp.Success {
		if resp.Error != nil {
			return types.FileMetadata{}, resp.Error.AsError()
		}
		return types.FileMetadata{}, types.ErrFileNotFound
	}
	c.metaCache.put(path, resp.Meta)
	return resp.Meta, nil
}

// allocateChunk asks the directory to mint and place a new chunk for
// path, via the reference directory's OpAllocateChunk extension.
func (c *Client) allocateChunk(path string) (types.ChunkHandle, error) {
	req := wire.NewFrame(wire.OpAllocateChunk, wire.MarshalAllocateChunkRequest(&types.AllocateChunkRequest{Path: path}))
	respFrame, err := c.dialDirectory(req)
	if err != nil {
		return types.ChunkHandle{}, err
	}
	resp, err := wire.UnmarshalAllocateChunkResponse(respFrame.Payload)
	if err != nil {
		return types.ChunkHandle{}, err
	}
	if !resp.Success {
		if resp.Error != nil {
			return types.ChunkHandle{}, resp.Error.AsError()
		}
		return types.ChunkHandle{}, types.ErrNoChunkServers
	}
	c.metaCache.invalidate(path)
	return resp.Handle, nil
}

// Open returns a file descriptor for path, fetching (and caching) its
// metadata up front the way the teacher's NewFile/Client.Read pairing
// does implicitly on first access.
func (c *Client) Open(path string, writable bool) (int, error) {
	meta, err := c.Stat(path)
	if err != nil {
		return 0, err
	}
	h := c.openFiles.open(path, meta.FileID, meta.Chunks, writable)
	return h.FD, nil
}

// CloseFile releases fd; it is a client-local operation only, it does
// not notify the directory.
func (c *Client) CloseFile(fd int) error {
	if !c.openFiles.close(fd) {
		return types.ErrClosedHandle
	}
	return nil
}

// Read fills buf starting at offset, routing each chunk-sized span to
// the chunk holding it and stopping at io.EOF once the file's recorded
// chunks are exhausted, mirroring the teacher's Client.Read loop
// (index = offset / chunk size, walk chunk by chunk) over this system's
// wire chunk ops instead of net/rpc ChunkServer calls.
func (c *Client) Read(fd int, offset int64, buf []byte) (int, error) {
	h, ok := c.openFiles.get(fd)
	if !ok {
		return 0, types.ErrClosedHandle
	}

	read := 0
	for read < len(buf) {
		idx := int(offset / common.ChunkSizeBytes)
		chunkOffset := offset % common.ChunkSizeBytes
		if idx >= len(h.Chunks) {
			if read == 0 {
				return 0, io.EOF
			}
			return read, io.EOF
		}
		chunk := h.Chunks[idx]

		want := len(buf) - read
		if int64(want) > common.ChunkSizeBytes-chunkOffset {
			want = int(common.ChunkSizeBytes - chunkOffset)
		}

		var got []byte
		err := withRetry(chunk.Replicas, c.picker, func(loc types.ChunkLocation) error {
			conn, derr := c.pool.acquire(string(loc.Addr))
			if derr != nil {
				return derr
			}
			req := wire.NewFrame(wire.OpRead, wire.MarshalReadRequest(&types.ReadRequest{
				ChunkID: chunk.ChunkID,
				Offset:  chunkOffset,
				Length:  int32(want),
			}))
			respFrame, rerr := conn.Roundtrip(req)
			if rerr != nil {
				c.pool.discard(conn)
				return rerr
			}
			resp, uerr := wire.UnmarshalReadResponse(respFrame.Payload)
			if uerr != nil {
				c.pool.discard(conn)
				return uerr
			}
			c.pool.release(string(loc.Addr), conn)
			if !resp.Success {
				if resp.Error != nil {
					return resp.Error.AsError()
				}
				return types.ErrChunkNotFound
			}
			got = resp.Data
			return nil
		})
		if err != nil {
			if read == 0 {
				return 0, err
			}
			return read, err
		}

		copy(buf[read:], got)
		read += len(got)
		offset += int64(len(got))
		if len(got) < want {
			return read, io.EOF
		}
	}
	return read, nil
}

// Write pushes data to fd at offset, allocating new chunks from the
// directory as the write runs past the handle's last known chunk,
// mirroring the teacher's Client.Write loop's chunk-boundary splitting.
func (c *Client) Write(fd int, offset int64, data []byte) (int, error) {
	h, ok := c.openFiles.get(fd)
	if !ok {
		return 0, types.ErrClosedHandle
	}
	if !h.Writable {
		return 0, types.ErrNotWritable
	}

	written := 0
	for written < len(data) {
		idx := int(offset / common.ChunkSizeBytes)
		chunkOffset := offset % common.ChunkSizeBytes

		for idx >= len(h.Chunks) {
			handle, err := c.allocateChunk(h.Path)
			if err != nil {
				return written, err
			}
			h.Chunks = append(h.Chunks, handle)
		}
		chunk := h.Chunks[idx]

		want := len(data) - written
		if int64(want) > common.ChunkSizeBytes-chunkOffset {
			want = int(common.ChunkSizeBytes - chunkOffset)
		}
		payload := data[written : written+want]

		err := withRetry(chunk.Replicas, c.picker, func(loc types.ChunkLocation) error {
			conn, derr := c.pool.acquire(string(loc.Addr))
			if derr != nil {
				return derr
			}
			req := wire.NewFrame(wire.OpWrite, wire.MarshalWriteRequest(&types.WriteRequest{
				ChunkID: chunk.ChunkID,
				Offset:  chunkOffset,
				Data:    payload,
			}))
			respFrame, werr := conn.Roundtrip(req)
			if werr != nil {
				c.pool.discard(conn)
				return werr
			}
			resp, uerr := wire.UnmarshalWriteResponse(respFrame.Payload)
			if uerr != nil {
				c.pool.discard(conn)
				return uerr
			}
			c.pool.release(string(loc.Addr), conn)
			if !resp.Success {
				if resp.Error != nil {
					return resp.Error.AsError()
				}
				return types.ErrOutOfCapacity
			}
			return nil
		})
		if err != nil {
			return written, err
		}

		written += want
		offset += int64(want)
	}
	return written, nil
}
