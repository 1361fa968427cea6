package service

import (
	"sync"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

// DefaultDedupCapacity bounds the recency window when no capacity is configured.
const DefaultDedupCapacity = 65535

type scopeClass uint8

const (
	scopeCell scopeClass = iota + 1
	scopeLA
	scopePLMN
)

type dedupKey struct {
	serial int
	plmn   string
	scope  scopeClass
	lac    int
	cid    int
}

// dedupKeyFor derives the duplicate-detection key of a record. LAC and CID take
// part only when the geographical scope makes them meaningful, and the scope class
// keeps a PLMN-wide key apart from a cell-wide one with the same serial.
func dedupKeyFor(record models.BroadcastRecord) dedupKey {
	key := dedupKey{
		serial: record.SerialNumber,
		plmn:   record.Location.PLMN,
		lac:    models.LocationUnknown,
		cid:    models.LocationUnknown,
	}
	switch {
	case record.GeographicalScope.UsesCID():
		key.scope = scopeCell
	case record.GeographicalScope.UsesLAC():
		key.scope = scopeLA
	default:
		key.scope = scopePLMN
	}
	if record.GeographicalScope.UsesLAC() {
		key.lac = record.Location.LAC
	}
	if record.GeographicalScope.UsesCID() {
		key.cid = record.Location.CID
	}
	return key
}

// DedupGate remembers the most recent broadcast keys for the life of the process.
// When full, the oldest key is forgotten first.
type DedupGate struct {
	mu       sync.Mutex
	capacity int
	seen     map[dedupKey]struct{}
	ring     []dedupKey
	next     int
}

// NewDedupGate constructs a gate holding at most capacity keys.
func NewDedupGate(capacity int) *DedupGate {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	return &DedupGate{
		capacity: capacity,
		seen:     make(map[dedupKey]struct{}),
		ring:     make([]dedupKey, 0, min(capacity, 1024)),
	}
}

// Admit reports whether record is new and remembers it. A false result means the
// broadcast is a duplicate and must be discarded.
func (g *DedupGate) Admit(record models.BroadcastRecord) bool {
	key := dedupKeyFor(record)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, dup := g.seen[key]; dup {
		return false
	}
	if len(g.ring) < g.capacity {
		g.ring = append(g.ring, key)
	} else {
		delete(g.seen, g.ring[g.next])
		g.ring[g.next] = key
		g.next = (g.next + 1) % g.capacity
	}
	g.seen[key] = struct{}{}
	return true
}

// Len returns the number of remembered keys.
func (g *DedupGate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// Reset forgets every key.
func (g *DedupGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = make(map[dedupKey]struct{})
	g.ring = g.ring[:0]
	g.next = 0
}
