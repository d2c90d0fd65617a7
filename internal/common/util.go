package common

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"
)

func PathParent(path string) ([]string, string) {
	if path == "/" {
		return []string{""}, ""
	}
	if path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	tokens := strings.Split(path, "/")
	return tokens[:len(tokens)-1], tokens[len(tokens)-1]
}

func IsExist(f string) bool {
	_, err := os.Stat(f)
	return err == nil || os.IsExist(err)
}

// SplitEndPoint splits "ip:port", grounded on the teacher's
// common.SplitEndPoint. The client's connection pool and config loading
// do not call it; both keep "ip:port" strings whole.
func SplitEndPoint(endpoint string) (string, string) {
	idx := strings.LastIndex(endpoint, ":")
	return endpoint[:idx], endpoint[idx+1:]
}

// Nrand draws a random non-negative int64, grounded on the teacher's
// common.Nrand (crypto/rand over a 62-bit range).
func Nrand() int64 {
	max := big.NewInt(int64(1) << 62)
	bigx, _ := crand.Int(crand.Reader, max)
	return bigx.Int64()
}

// NewChunkID mints a 64-bit chunk_id: a nanosecond timestamp XORed with a
// random low word. Only the upper 32 bits follow the clock, so ids are
// time-ordered at a granularity of about 4 seconds, not call by call;
// the random low word makes collisions between concurrent callers
// unlikely but does not rule them out. Grounded on the teacher's common.GetChunkHandleId
// (time.Now().UnixNano()) strengthened with common.Nrand.
func NewChunkID() int64 {
	return time.Now().UnixNano() ^ (Nrand() & 0xffffffff)
}

// NewServerID mints a server id for a chunk server that was not given one
// explicitly at startup, grounded on the teacher's common.Uuid but backed
// by a real UUID library (github.com/satori/go.uuid) instead of a
// hand-rolled charset generator seeded off the wall clock.
func NewServerID() string {
	return uuidString()
}

func JoinErrors(errs ...error) error {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			parts = append(parts, err.Error())
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}
