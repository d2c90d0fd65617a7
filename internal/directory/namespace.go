// Package directory implements the minimal reference metadata authority
// that answers the external directory contract of spec.md 4.4:
// OP_FILE_CREATE, OP_FILE_DELETE, OP_MKDIR, OP_METADATA_QUERY and
// unsolicited OP_HEARTBEAT. It is not a specified module — the
// distributed-consensus namespace authority the spec treats as an
// external collaborator — and carries none of the Raft/WAL machinery the
// teacher's internal/master package builds around its own namespace
// tree. It exists only so the storage-node and client packages have a
// real peer to dial end to end.
package directory

import (
	"strings"
	"sync"
	"time"

	"chunkstore/internal/common"
	"chunkstore/internal/types"
)

// namespace is an in-memory path -> FileMetadata tree guarded by one
// lock, grounded on the teacher's NameSpaceControlor/NameSpaceTreeNode
// shape (a tree of named nodes, directories carrying children) but
// without per-node locking or WAL replay: this directory keeps no
// durable log, so a single RWMutex over the whole tree is sufficient.
type namespace struct {
	mu    sync.RWMutex
	root  *node
	files uint64 // fileID counter
}

type node struct {
	name     string
	isDir    bool
	meta     types.FileMetadata
	children map[string]*node
}

func newNamespace() *namespace {
	return &namespace{
		root: &node{name: "/", isDir: true, children: make(map[string]*node)},
	}
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// walk returns the node at path, or nil plus ErrFileNotFound /
// ErrNotDirectory when the path does not fully exist.
func (ns *namespace) walk(path string) (*node, error) {
	parts := splitPath(path)
	cur := ns.root
	for _, p := range parts {
		if !cur.isDir {
			return nil, types.ErrNotDirectory
		}
		next, ok := cur.children[p]
		if !ok {
			return nil, types.ErrFileNotFound
		}
		cur = next
	}
	return cur, nil
}

func (ns *namespace) mkdir(path string) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.mkdirLocked(path)
}

// mkdirLocked creates every missing directory component along path,
// the way mkdir -p behaves, matching the teacher's MkdirImpl's
// recursive-create branch without its WAL replay step.
func (ns *namespace) mkdirLocked(path string) error {
	parts := splitPath(path)
	cur := ns.root
	for _, p := range parts {
		if !cur.isDir {
			return types.ErrNotDirectory
		}
		next, ok := cur.children[p]
		if !ok {
			next = &node{name: p, isDir: true, children: make(map[string]*node)}
			cur.children[p] = next
		} else if !next.isDir {
			return types.ErrNotDirectory
		}
		cur = next
	}
	return nil
}

func (ns *namespace) createFile(path string, permissions uint32) (*types.FileMetadata, error) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, types.ErrIsDirectory
	}
	parentParts, name := parts[:len(parts)-1], parts[len(parts)-1]

	parent := ns.root
	for _, p := range parentParts {
		next, ok := parent.children[p]
		if !ok {
			// create missing parent directories implicitly, grounded on
			// the teacher's MkdirImpl "r bool" recursive-create flag.
			next = &node{name: p, isDir: true, children: make(map[string]*node)}
			parent.children[p] = next
		}
		parent = next
	}

	if _, exists := parent.children[name]; exists {
		return nil, types.ErrFileExists
	}

	ns.files++
	meta := types.FileMetadata{
		Path:         path,
		FileID:       ns.files,
		Permissions:  permissions,
		CreationTime: time.Now(),
		ModTime:      time.Now(),
		Replication:  common.ReplicationFactor,
	}
	parent.children[name] = &node{name: name, isDir: false, meta: meta}
	return &meta, nil
}

func (ns *namespace) deleteFile(path string) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	parts := splitPath(path)
	if len(parts) == 0 {
		return types.ErrIsDirectory
	}
	parentParts, name := parts[:len(parts)-1], parts[len(parts)-1]

	parent := ns.root
	for _, p := range parentParts {
		next, ok := parent.children[p]
		if !ok {
			return types.ErrFileNotFound
		}
		parent = next
	}
	target, ok := parent.children[name]
	if !ok {
		return types.ErrFileNotFound
	}
	if target.isDir {
		return types.ErrIsDirectory
	}
	delete(parent.children, name)
	return nil
}

func (ns *namespace) lookup(path string) (types.FileMetadata, error) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	if path == "" || path == "/" {
		return types.FileMetadata{Path: "/", IsDirectory: true}, nil
	}
	n, err := ns.walk(path)
	if err != nil {
		return types.FileMetadata{}, err
	}
	meta := n.meta
	meta.Path = path
	meta.IsDirectory = n.isDir
	return meta, nil
}

// appendChunk records a newly allocated chunk against path's metadata,
// updating file size and mod time the way the teacher's
// MustAddLength/MustAddChunks pair does, minus the WAL append.
func (ns *namespace) appendChunk(path string, handle types.ChunkHandle) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	n, err := ns.walk(path)
	if err != nil {
		return err
	}
	if n.isDir {
		return types.ErrIsDirectory
	}
	n.meta.Chunks = append(n.meta.Chunks, handle)
	n.meta.FileSize += handle.Size
	n.meta.ModTime = time.Now()
	return nil
}
