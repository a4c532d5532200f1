package generator

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"

	"github.com/bwmarrin/snowflake"
)

// IDbyIP packs an IPv4 address into a uint32. Other input yields 0.
func IDbyIP(ip string) uint32 {
	v4 := net.ParseIP(ip).To4()
	if v4 == nil {
		return 0
	}

	return binary.BigEndian.Uint32(v4)
}

// NodeID maps ip onto the snowflake node range.
func NodeID(ip string) int64 {
	return int64(IDbyIP(ip)) & (1<<snowflake.NodeBits - 1)
}

// LocalIP returns the first non-loopback IPv4 address of the host.
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}

	for _, a := range addrs {
		if n, ok := a.(*net.IPNet); ok && !n.IP.IsLoopback() && n.IP.To4() != nil {
			return n.IP.String()
		}
	}

	return ""
}

// RunIDs hands out crawl run identifiers.
type RunIDs struct {
	node *snowflake.Node
}

func NewRunIDs(nodeID int64) (*RunIDs, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}

	return &RunIDs{node: node}, nil
}

func (r *RunIDs) Next() snowflake.ID {
	return r.node.Generate()
}

// NewRunID returns one identifier for this process, using the host IP
// (or the pid when no address is found) as the node id.
func NewRunID() (string, error) {
	nodeID := NodeID(LocalIP())
	if nodeID == 0 {
		nodeID = int64(os.Getpid()) & (1<<snowflake.NodeBits - 1)
	}

	ids, err := NewRunIDs(nodeID)
	if err != nil {
		return "", err
	}

	return ids.Next().String(), nil
}
