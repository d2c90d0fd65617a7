package chunkserver

import (
	"fmt"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
	"chunkstore/internal/wire"
)

// dispatch decodes one request frame, runs the matching handler against
// the chunk table, and encodes the reply frame. Grounded on the
// teacher's per-op RPCRead/RPCWrite/RPCDelete methods on ChunkServer,
// collapsed into one switch because there is no net/rpc method registry
// to hang separate exported methods off of.
func (cs *ChunkServer) dispatch(req *wire.Frame) (*wire.Frame, error) {
	switch req.Type {
	case wire.OpWrite:
		return cs.handleWrite(req)
	case wire.OpRead:
		return cs.handleRead(req)
	case wire.OpDelete:
		return cs.handleDelete(req)
	case wire.OpReplicate:
		return cs.handleReplicate(req)
	default:
		ack := &types.Ack{Success: false, Error: types.NewWireError(fmt.Errorf("unsupported op %#x", req.Type))}
		return wire.NewFrame(wire.OpAck, wire.MarshalAck(ack)), nil
	}
}

func (cs *ChunkServer) handleWrite(req *wire.Frame) (*wire.Frame, error) {
	r, err := wire.UnmarshalWriteRequest(req.Payload)
	if err != nil {
		return nil, err
	}
	resp := &types.WriteResponse{ChunkID: r.ChunkID}
	chunk, werr := cs.store.write(r.ChunkID, r.Offset, r.Data)
	if werr != nil {
		resp.Success = false
		resp.Error = types.NewWireError(werr)
		common.LWarn("chunkserver %v: write chunk %d failed: %v", cs.cfg.ServerID, r.ChunkID, werr)
	} else {
		resp.Success = true
		common.LInfo("chunkserver %v: wrote chunk %d offset %d len %d -> version %d", cs.cfg.ServerID, r.ChunkID, r.Offset, len(r.Data), chunk.Version)
		if cs.disk != nil {
			if err := cs.disk.persist(chunk); err != nil {
				common.LWarn("chunkserver %v: persisting chunk %d failed: %v", cs.cfg.ServerID, r.ChunkID, err)
			}
		}
	}
	return wire.NewFrame(wire.OpAck, wire.MarshalWriteResponse(resp)), nil
}

func (cs *ChunkServer) handleRead(req *wire.Frame) (*wire.Frame, error) {
	r, err := wire.UnmarshalReadRequest(req.Payload)
	if err != nil {
		return nil, err
	}
	resp := &types.ReadResponse{ChunkID: r.ChunkID, Offset: r.Offset}
	_, data, rerr := cs.store.read(r.ChunkID, r.Offset, r.Length)
	if rerr != nil {
		resp.Success = false
		resp.Error = types.NewWireError(rerr)
	} else {
		resp.Success = true
		resp.Data = data
	}
	return wire.NewFrame(wire.OpAck, wire.MarshalReadResponse(resp)), nil
}

func (cs *ChunkServer) handleDelete(req *wire.Frame) (*wire.Frame, error) {
	r, err := wire.UnmarshalDeleteRequest(req.Payload)
	if err != nil {
		return nil, err
	}
	cs.store.delete(r.ChunkID)
	if cs.disk != nil {
		cs.disk.remove(r.ChunkID)
	}
	resp := &types.DeleteResponse{Success: true}
	return wire.NewFrame(wire.OpAck, wire.MarshalDeleteResponse(resp)), nil
}

// handleReplicate implements spec.md 4.2's OP_REPLICATE contract: the
// node looks the chunk up locally and pushes it to the target as a
// fresh OP_WRITE, rather than the target pulling from it.
func (cs *ChunkServer) handleReplicate(req *wire.Frame) (*wire.Frame, error) {
	r, err := wire.UnmarshalReplicateRequest(req.Payload)
	if err != nil {
		return nil, err
	}
	resp := &types.ReplicateResponse{}

	chunk, ok := cs.store.get(r.ChunkID)
	if !ok {
		resp.Error = types.NewWireError(types.ErrChunkNotFound)
		return wire.NewFrame(wire.OpAck, wire.MarshalReplicateResponse(resp)), nil
	}

	target, err := wire.Dial(string(r.TargetAddr))
	if err != nil {
		resp.Error = types.NewWireError(err)
		return wire.NewFrame(wire.OpAck, wire.MarshalReplicateResponse(resp)), nil
	}
	defer target.Close()

	writeReq := wire.NewFrame(wire.OpWrite, wire.MarshalWriteRequest(&types.WriteRequest{
		ChunkID: chunk.ChunkID,
		Offset:  0,
		Data:    chunk.Bytes,
	}))
	replyFrame, err := target.Roundtrip(writeReq)
	if err != nil {
		resp.Error = types.NewWireError(err)
		return wire.NewFrame(wire.OpAck, wire.MarshalReplicateResponse(resp)), nil
	}
	writeResp, err := wire.UnmarshalWriteResponse(replyFrame.Payload)
	if err != nil {
		return nil, err
	}
	resp.Success = writeResp.Success
	resp.Error = writeResp.Error
	return wire.NewFrame(wire.OpAck, wire.MarshalReplicateResponse(resp)), nil
}
