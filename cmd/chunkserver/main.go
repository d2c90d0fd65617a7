// Command chunkserver starts one storage node, grounded on the
// teacher's root chunkserver.go (NewChunkServer: resolve this node's
// config by server id, fall back to an env var, then
// MustNewAndServe) adapted to this package's flag-based startup and
// signal-driven graceful shutdown instead of config-file-only lookup.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"chunkstore/internal/chunkserver"
	"chunkstore/internal/common"
	"chunkstore/internal/types"
)

func main() {
	var (
		dataDir  = flag.String("data", "", "on-disk chunk directory (memory-only when empty)")
		dirAddr  = flag.String("dir", "", "directory endpoint, host:port")
		capacity = flag.Int64("capacity", 0, "max bytes this node will store (0 = default)")
	)
	flag.Parse()
	args := flag.Args()
	if len(args) < 3 {
		log.Fatal("usage: chunkserver <server_id> <ip> <port> [-data dir] [-dir directory-endpoint] [-capacity bytes]")
	}
	serverID, ip, port := args[0], args[1], args[2]

	if *capacity < 0 {
		log.Fatal("capacity must be non-negative")
	}

	cfg := chunkserver.Config{
		ServerID:      serverID,
		Addr:          types.Addr(ip + ":" + port),
		DirectoryAddr: types.Addr(*dirAddr),
		MaxCapacity:   *capacity,
		DataDir:       *dataDir,
	}

	if cfg.DirectoryAddr == "" {
		if env := os.Getenv("CHUNKSTORE_DIRECTORY"); env != "" {
			cfg.DirectoryAddr = types.Addr(env)
		}
	}

	common.LInfo("starting chunk server %v on %v (capacity=%v data_dir=%q)", serverID, cfg.Addr, strconv.FormatInt(cfg.MaxCapacity, 10), cfg.DataDir)

	cs := chunkserver.New(cfg)
	if err := cs.Start(); err != nil {
		log.Fatalf("chunkserver: start failed: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	common.LInfo("chunk server %v received shutdown signal", serverID)
	cs.Stop()
}
