package wire

import (
	"bytes"
	"testing"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
)

func TestCRC32ReferenceVectors(t *testing.T) {
	if got := common.CRC32(nil); got != 0 {
		t.Fatalf("CRC32(\"\") = %#x, want 0", got)
	}
	if got := common.CRC32([]byte("123456789")); got != 0xCBF43926 {
		t.Fatalf("CRC32(123456789) = %#x, want 0xCBF43926", got)
	}
	if got := common.CRC32([]byte("Hello")); got != 0xF7D18982 {
		t.Fatalf("CRC32(Hello) = %#x, want 0xF7D18982", got)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F}
	f := NewFrame(OpWrite, payload)
	if f.Magic != 0xDEADBEEF || f.Version != 1 || f.Checksum != 0xF7D18982 {
		t.Fatalf("unexpected frame header %+v", f)
	}

	wire := f.Encode()
	got, err := DecodeHeader(wire[:HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if err := got.VerifyPayload(wire[HeaderSize:]); err != nil {
		t.Fatalf("VerifyPayload: %v", err)
	}
	if got.Magic != f.Magic || got.Version != f.Version || got.Type != f.Type ||
		got.PayloadSize != f.PayloadSize || got.Checksum != f.Checksum ||
		!bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, f)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	f := NewFrame(OpRead, []byte("x"))
	wire := f.Encode()
	wire[0] ^= 0xFF
	if _, err := DecodeHeader(wire[:HeaderSize]); err != types.ErrBadMagic {
		t.Fatalf("DecodeHeader with flipped magic = %v, want ErrBadMagic", err)
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	f := NewFrame(OpRead, []byte("x"))
	wire := f.Encode()
	wire[4] = 2
	if _, err := DecodeHeader(wire[:HeaderSize]); err != types.ErrBadVersion {
		t.Fatalf("DecodeHeader with bad version = %v, want ErrBadVersion", err)
	}
}

func TestVerifyPayloadRejectsChecksumMismatch(t *testing.T) {
	f := NewFrame(OpRead, []byte("hello"))
	wire := f.Encode()
	hdr, err := DecodeHeader(wire[:HeaderSize])
	if err != nil {
		t.Fatal(err)
	}
	corrupt := append([]byte{}, wire[HeaderSize:]...)
	corrupt[0] ^= 0xFF
	if err := hdr.VerifyPayload(corrupt); err != types.ErrChecksum {
		t.Fatalf("VerifyPayload with corrupt payload = %v, want ErrChecksum", err)
	}
}

func TestDecodeRejectsOversizePayload(t *testing.T) {
	f := NewFrame(OpWrite, []byte("x"))
	wire := f.Encode()
	// Claim a payload_size larger than CHUNK_SIZE_BYTES without supplying it.
	wire[8], wire[9], wire[10], wire[11] = 0xFF, 0xFF, 0xFF, 0x7F
	if _, err := DecodeHeader(wire[:HeaderSize]); err != types.ErrPayloadSize {
		t.Fatalf("DecodeHeader with oversize payload_size = %v, want ErrPayloadSize", err)
	}
}

func TestMessageRoundTrips(t *testing.T) {
	wr := &types.WriteRequest{ChunkID: 42, Offset: 0, Data: []byte("ABCDE"), VersionHint: 1}
	got, err := UnmarshalWriteRequest(MarshalWriteRequest(wr))
	if err != nil {
		t.Fatal(err)
	}
	if got.ChunkID != wr.ChunkID || got.Offset != wr.Offset || !bytes.Equal(got.Data, wr.Data) {
		t.Fatalf("WriteRequest round trip mismatch: got %+v, want %+v", got, wr)
	}

	meta := types.FileMetadata{
		Path:        "/a/b.txt",
		FileID:      7,
		Permissions: 0644,
		FileSize:    128,
		Chunks: []types.ChunkHandle{
			{ChunkID: 1, Version: 3, Size: 128, Replicas: []types.ChunkLocation{
				{ServerID: "s1", Addr: "127.0.0.1:9001", Generation: 1},
			}},
		},
		Replication: 3,
		Owner:       "root",
	}
	mresp := &types.MetadataQueryResponse{Meta: meta, Success: true}
	gotMeta, err := UnmarshalMetadataQueryResponse(MarshalMetadataQueryResponse(mresp))
	if err != nil {
		t.Fatal(err)
	}
	if gotMeta.Meta.Path != meta.Path || gotMeta.Meta.FileSize != meta.FileSize ||
		len(gotMeta.Meta.Chunks) != 1 || gotMeta.Meta.Chunks[0].ChunkID != 1 ||
		gotMeta.Meta.Chunks[0].Replicas[0].Addr != "127.0.0.1:9001" {
		t.Fatalf("MetadataQueryResponse round trip mismatch: %+v", gotMeta)
	}
}
