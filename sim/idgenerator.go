package sim

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewSequentialIDGenerator returns a generator that produces 1, 2, 3, ...
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewXIDGenerator returns a generator that produces globally unique IDs. The
// IDs are not deterministic.
func NewXIDGenerator() IDGenerator {
	return xidGenerator{}
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	id := strconv.FormatUint(idNumber, 10)

	return id
}

type xidGenerator struct {
}

func (g xidGenerator) Generate() string {
	return xid.New().String()
}
