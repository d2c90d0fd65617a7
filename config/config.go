// Package config loads cluster topology from an XML file, grounded on
// the teacher's config.Configuartion (a Node/ClusterConfig tree decoded
// with encoding/xml, cached behind a lazily-initialized singleton) with
// the field set replaced end to end: this system's nodes carry storage
// capacity and data directories, not the teacher's Raft quorum fields.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"sync"

	"chunkstore/internal/common"
)

// Node describes one process in the cluster: a storage node or the
// directory, keyed by role.
type Node struct {
	ServerID string `xml:"server_id"`
	Role     string `xml:"role"` // "chunkserver" or "directory"
	Address  string `xml:"address"`
	Port     string `xml:"port"`
	DataDir  string `xml:"data_dir"`
	Capacity int64  `xml:"capacity"`
}

// ClusterConfig is the top-level XML document shape: the directory's own
// endpoint plus the fleet of storage nodes that will dial it.
type ClusterConfig struct {
	Directory Node   `xml:"directory"`
	Nodes     []Node `xml:"chunkserver"`
}

// Configuration is the root element, kept distinct from ClusterConfig
// the way the teacher nests Configuartion.Cluster, so a future top-level
// field (version, cluster name) has somewhere to live without reshaping
// ClusterConfig.
type Configuration struct {
	Version string        `xml:"version,attr"`
	Cluster ClusterConfig `xml:"cluster"`
}

var (
	path string = "config.xml"
	conf *Configuration
	once sync.Once
)

// SetPath overrides the XML file path read by GetClusterConfig. Must be
// called before the first GetClusterConfig call to have any effect,
// matching the teacher's SetPath/path pairing.
func SetPath(p string) {
	path = p
}

func load() (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cc := &Configuration{}
	if err := xml.NewDecoder(f).Decode(cc); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	applyDefaults(cc)
	return cc, nil
}

// applyDefaults fills capacity with the package default when the XML
// document leaves it at zero, the same way the teacher falls back to
// common.MaxChunkSize when a node omits a field.
func applyDefaults(cc *Configuration) {
	for i := range cc.Cluster.Nodes {
		if cc.Cluster.Nodes[i].Capacity == 0 {
			cc.Cluster.Nodes[i].Capacity = common.ChunkSizeBytes * 1024
		}
	}
}

// GetClusterConfig lazily loads and caches the cluster config, panicking
// on first access if the file is missing or malformed — grounded on the
// teacher's GetClusterConfig, which panics for the same reason: there is
// no sane fallback for "no topology was given".
func GetClusterConfig() *Configuration {
	once.Do(func() {
		cc, err := load()
		if err != nil {
			panic(err)
		}
		conf = cc
	})
	return conf
}
