package connector

import (
	"errors"
	"fmt"
)

var (
	ErrSelfLoop      = errors.New("edge connects a node to itself")
	ErrDuplicateEdge = errors.New("edge already exists")
	ErrMissingNode   = errors.New("edge references a missing node")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrNoSurface     = errors.New("no surface factory configured")
)

// ConnectionKey is the tuple that must be unique across an edge list.
type ConnectionKey struct {
	SourceNode, TargetNode string
	SourceSide, TargetSide string
}

// KeyOf returns the uniqueness tuple of an edge.
func KeyOf(e Edge) ConnectionKey {
	return ConnectionKey{
		SourceNode: e.Source.NodeID,
		TargetNode: e.Target.NodeID,
		SourceSide: string(e.Source.Side),
		TargetSide: string(e.Target.Side),
	}
}

// ValidateConnection checks a candidate edge against the current edge list.
// The edge with id excludeID is ignored, so a reconnection can keep its own tuple.
// nodes may be nil when node presence should not be checked.
func ValidateConnection(nodes map[string]Node, edges []Edge, candidate Edge, excludeID string) error {
	if candidate.Source.NodeID == candidate.Target.NodeID {
		return fmt.Errorf("connect %s: %w", candidate.Source.NodeID, ErrSelfLoop)
	}
	if nodes != nil {
		for _, id := range []string{candidate.Source.NodeID, candidate.Target.NodeID} {
			if _, ok := nodes[id]; !ok {
				return fmt.Errorf("connect %s: %w", id, ErrMissingNode)
			}
		}
	}
	key := KeyOf(candidate)
	for _, e := range edges {
		if e.ID == excludeID {
			continue
		}
		if KeyOf(e) == key {
			return fmt.Errorf("connect %s -> %s: %w", key.SourceNode, key.TargetNode, ErrDuplicateEdge)
		}
	}
	return nil
}
