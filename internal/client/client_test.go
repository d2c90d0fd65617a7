package client

import (
	"io"
	"testing"
	"time"

	"chunkstore/internal/chunkserver"
	"chunkstore/internal/directory"
	"chunkstore/internal/types"
)

// startTestDirectory brings up a reference directory on a loopback
// ephemeral port and returns its address plus a stop function.
func startTestDirectory(t *testing.T) (types.Addr, func()) {
	t.Helper()
	d := directory.New(types.Addr("127.0.0.1:0"))
	if err := d.Start(); err != nil {
		t.Fatalf("directory start: %v", err)
	}
	return d.Addr(), d.Stop
}

func startTestChunkServer(t *testing.T, dirAddr types.Addr) (types.Addr, func()) {
	t.Helper()
	cs := chunkserver.New(chunkserver.Config{
		ServerID:      "test-cs",
		Addr:          types.Addr("127.0.0.1:0"),
		DirectoryAddr: dirAddr,
		MaxCapacity:   1 << 20,
	})
	if err := cs.Start(); err != nil {
		t.Fatalf("chunkserver start: %v", err)
	}
	return cs.Addr(), cs.Stop
}

func TestClientCreateWriteReadRoundTrip(t *testing.T) {
	dirAddr, stopDir := startTestDirectory(t)
	defer stopDir()
	csAddr, stopCS := startTestChunkServer(t, dirAddr)
	defer stopCS()

	// allow one heartbeat so the directory has a placement candidate.
	time.Sleep(50 * time.Millisecond)
	_ = csAddr

	c := New(dirAddr)
	defer c.Close()

	if err := c.CreateFile("/hello.txt", 0644); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	fd, err := c.Open("/hello.txt", true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	n, err := c.Write(fd, 0, []byte("hello, chunkstore"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len("hello, chunkstore") {
		t.Fatalf("expected to write %d bytes, wrote %d", len("hello, chunkstore"), n)
	}

	buf := make([]byte, n)
	read, err := c.Read(fd, 0, buf)
	if err != nil && err != io.EOF {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:read]) != "hello, chunkstore" {
		t.Fatalf("expected %q, got %q", "hello, chunkstore", buf[:read])
	}

	if err := c.CloseFile(fd); err != nil {
		t.Fatalf("CloseFile: %v", err)
	}
}

func TestClientMkdirAndStat(t *testing.T) {
	dirAddr, stopDir := startTestDirectory(t)
	defer stopDir()

	c := New(dirAddr)
	defer c.Close()

	if err := c.Mkdir("/a/b"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := c.CreateFile("/a/b/f.txt", 0600); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	meta, err := c.Stat("/a/b/f.txt")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if meta.Permissions != 0600 {
		t.Fatalf("expected permissions 0600, got %o", meta.Permissions)
	}
}

func TestClientDeleteFile(t *testing.T) {
	dirAddr, stopDir := startTestDirectory(t)
	defer stopDir()

	c := New(dirAddr)
	defer c.Close()

	c.CreateFile("/gone.txt", 0644)
	if err := c.DeleteFile("/gone.txt"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if _, err := c.Stat("/gone.txt"); err != types.ErrFileNotFound {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestClientReadUnopenedHandleFails(t *testing.T) {
	dirAddr, stopDir := startTestDirectory(t)
	defer stopDir()

	c := New(dirAddr)
	defer c.Close()

	if _, err := c.Read(999, 0, make([]byte, 4)); err != types.ErrClosedHandle {
		t.Fatalf("expected ErrClosedHandle, got %v", err)
	}
}

func TestClientWriteRejectsReadOnlyHandle(t *testing.T) {
	dirAddr, stopDir := startTestDirectory(t)
	defer stopDir()

	c := New(dirAddr)
	defer c.Close()

	c.CreateFile("/ro.txt", 0644)
	fd, err := c.Open("/ro.txt", false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := c.Write(fd, 0, []byte("x")); err != types.ErrNotWritable {
		t.Fatalf("expected ErrNotWritable, got %v", err)
	}
}
