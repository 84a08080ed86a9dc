package blocks

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator allocates identities for newly created sequence children.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string { return f() }

// UUIDGenerator allocates random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequentialIDs allocates prefix-1, prefix-2, ... and is meant for
// deterministic output such as tests and golden files.
type SequentialIDs struct {
	Prefix string
	next   int
}

// NewSequentialIDs returns a generator starting at prefix-1.
func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{Prefix: prefix}
}

func (s *SequentialIDs) NewID() string {
	s.next++
	if s.Prefix == "" {
		return strconv.Itoa(s.next)
	}
	return s.Prefix + "-" + strconv.Itoa(s.next)
}
