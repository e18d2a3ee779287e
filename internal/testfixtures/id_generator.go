package testfixtures

import (
	"strconv"
	"sync"
)

// IDGenerator hands out sequential identifiers ("res-1", "res-2", ...) so
// tests can refer to the records a service created by a stable ID instead of
// capturing UUIDs.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued uint64
}

// NewIDGenerator returns a generator for the given prefix, defaulting to "id"
// when the prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next issues the following identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.prefix + "-" + strconv.FormatUint(g.issued, 10)
}

// NextFunc adapts the generator to the func() string shape the services take.
// A nil generator yields empty identifiers.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued reports how many identifiers the generator has handed out.
func (g *IDGenerator) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued
}
