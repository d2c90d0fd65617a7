// Command directory starts the reference directory implementation
// (SPEC_FULL.md 4.4A), grounded on the teacher's root master.go entry
// point shape (resolve this process's endpoint, then MustNewAndServe)
// but with no Raft peer set to resolve — this directory has exactly one
// process, not a quorum.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chunkstore/internal/common"
	"chunkstore/internal/directory"
	"chunkstore/internal/types"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		log.Fatal("usage: directory <ip> <port>")
	}
	ip, port := args[0], args[1]

	d := directory.New(types.Addr(ip + ":" + port))
	if err := d.Start(); err != nil {
		log.Fatalf("directory: start failed: %v", err)
	}
	common.LInfo("directory listening on %v", d.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	common.LInfo("directory received shutdown signal")
	d.Stop()
}
