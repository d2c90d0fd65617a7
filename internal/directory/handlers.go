package directory

import (
	"fmt"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

// dispatch answers the OP_* set spec.md 4.4 names for the directory:
// OP_FILE_CREATE, OP_FILE_DELETE, OP_MKDIR, OP_METADATA_QUERY, and
// unsolicited OP_HEARTBEAT (no reply frame), plus the OpAllocateChunk
// extension. Anything else gets a generic OP_ACK failure, the same
// fallback the storage node's dispatch uses.
func (d *Directory) dispatch(req *wire.Frame) *wire.Frame {
	switch req.Type {
	case wire.OpFileCreate:
		return d.handleFileCreate(req)
	case wire.OpFileDelete:
		return d.handleFileDelete(req)
	case wire.OpMkdir:
		return d.handleMkdir(req)
	case wire.OpMetadataQuery:
		return d.handleMetadataQuery(req)
	case wire.OpHeartbeat:
		d.handleHeartbeat(req)
		return nil
	case wire.OpAllocateChunk:
		return d.handleAllocateChunk(req)
	default:
		ack := &types.Ack{Success: false, Error: types.NewWireError(fmt.Errorf("unsupported op %#x", req.Type))}
		return wire.NewFrame(wire.OpAck, wire.MarshalAck(ack))
	}
}

func (d *Directory) handleFileCreate(req *wire.Frame) *wire.Frame {
	r, err := wire.UnmarshalFileCreateRequest(req.Payload)
	if err != nil {
		return wire.NewFrame(wire.OpAck, wire.MarshalFileCreateResponse(&types.FileCreateResponse{Error: types.NewWireError(err)}))
	}
	resp := &types.FileCreateResponse{}
	meta, cerr := d.ns.createFile(r.Path, r.Permissions)
	if cerr != nil {
		resp.Error = types.NewWireError(cerr)
	} else {
		resp.Success = true
		resp.FileID = meta.FileID
		common.LInfo("directory: created %v (file_id %d)", r.Path, meta.FileID)
	}
	return wire.NewFrame(wire.OpAck, wire.MarshalFileCreateResponse(resp))
}

func (d *Directory) handleFileDelete(req *wire.Frame) *wire.Frame {
	r, err := wire.UnmarshalFileDeleteRequest(req.Payload)
	if err != nil {
		return wire.NewFrame(wire.OpAck, wire.MarshalFileDeleteResponse(&types.FileDeleteResponse{Error: types.NewWireError(err)}))
	}
	resp := &types.FileDeleteResponse{}
	if derr := d.ns.deleteFile(r.Path); derr != nil {
		resp.Error = types.NewWireError(derr)
	} else {
		resp.Success = true
		common.LInfo("directory: deleted %v", r.Path)
	}
	return wire.NewFrame(wire.OpAck, wire.MarshalFileDeleteResponse(resp))
}

func (d *Directory) handleMkdir(req *wire.Frame) *wire.Frame {
	r, err := wire.UnmarshalMkdirRequest(req.Payload)
	if err != nil {
		return wire.NewFrame(wire.OpAck, wire.MarshalMkdirResponse(&types.MkdirResponse{Error: types.NewWireError(err)}))
	}
	resp := &types.MkdirResponse{}
	if merr := d.ns.mkdir(r.Path); merr != nil {
		resp.Error = types.NewWireError(merr)
	} else {
		resp.Success = true
	}
	return wire.NewFrame(wire.OpAck, wire.MarshalMkdirResponse(resp))
}

func (d *Directory) handleMetadataQuery(req *wire.Frame) *wire.Frame {
	r, err := wire.UnmarshalMetadataQueryRequest(req.Payload)
	if err != nil {
		return wire.NewFrame(wire.OpAck, wire.MarshalMetadataQueryResponse(&types.MetadataQueryResponse{Error: types.NewWireError(err)}))
	}
	resp := &types.MetadataQueryResponse{}
	meta, qerr := d.ns.lookup(r.Path)
	if qerr != nil {
		resp.Error = types.NewWireError(qerr)
	} else {
		resp.Success = true
		resp.Meta = meta
	}
	return wire.NewFrame(wire.OpAck, wire.MarshalMetadataQueryResponse(resp))
}

func (d *Directory) handleHeartbeat(req *wire.Frame) {
	msg, err := wire.UnmarshalHeartbeat(req.Payload)
	if err != nil {
		common.LWarn("directory: malformed heartbeat: %v", err)
		return
	}
	d.registry.observeHeartbeat(msg)
}

func (d *Directory) handleAllocateChunk(req *wire.Frame) *wire.Frame {
	r, err := wire.UnmarshalAllocateChunkRequest(req.Payload)
	if err != nil {
		return wire.NewFrame(wire.OpAck, wire.MarshalAllocateChunkResponse(&types.AllocateChunkResponse{Error: types.NewWireError(err)}))
	}
	resp := &types.AllocateChunkResponse{}
	handle, aerr := d.AllocateChunk(r.Path)
	if aerr != nil {
		resp.Error = types.NewWireError(aerr)
	} else {
		resp.Success = true
		resp.Handle = handle
	}
	return wire.NewFrame(wire.OpAck, wire.MarshalAllocateChunkResponse(resp))
}

// AllocateChunk mints and places a new chunk for path, then records it
// against the file's metadata.
func (d *Directory) AllocateChunk(path string) (types.ChunkHandle, error) {
	handle, err := d.alloc.allocate()
	if err != nil {
		return types.ChunkHandle{}, err
	}
	if err := d.ns.appendChunk(path, handle); err != nil {
		return types.ChunkHandle{}, err
	}
	return handle, nil
}
