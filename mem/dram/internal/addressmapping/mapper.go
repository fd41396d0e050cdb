// Package addressmapping converts channel addresses into DRAM locations.
package addressmapping

import (
	"fmt"
	"log"
)

// Location is the position of a burst in a DRAM channel. Column counts
// bursts within the row.
type Location struct {
	Rank      int
	BankGroup int
	Bank      int
	Row       int
	Column    int
}

func (l Location) String() string {
	return fmt.Sprintf("r%d.bg%d.b%d row %d col %d",
		l.Rank, l.BankGroup, l.Bank, l.Row, l.Column)
}

// SameBank returns true if both locations are in the same bank.
func (l Location) SameBank(o Location) bool {
	return l.Rank == o.Rank && l.BankGroup == o.BankGroup && l.Bank == o.Bank
}

// Scheme lists the address fields from the most significant to the least.
type Scheme int

// Schemes. Ro is row, Ra is rank, Ba is bank (bank group in the lower
// digits), Co is column.
const (
	// RoRaBaCo keeps consecutive bursts in the same row, which favors row
	// hits for sequential traffic.
	RoRaBaCo Scheme = iota

	// RoCoRaBa spreads consecutive bursts across bank groups, banks and
	// ranks, which favors bank-level parallelism.
	RoCoRaBa
)

// ParseScheme converts a scheme name into a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch s {
	case "RoRaBaCo":
		return RoRaBaCo, nil
	case "RoCoRaBa":
		return RoCoRaBa, nil
	}

	return 0, fmt.Errorf("unknown address mapping %q", s)
}

func (s Scheme) String() string {
	switch s {
	case RoRaBaCo:
		return "RoRaBaCo"
	case RoCoRaBa:
		return "RoCoRaBa"
	}

	return fmt.Sprintf("Scheme(%d)", int(s))
}

// A Mapper can convert from a physical address to a DRAM location.
type Mapper interface {
	Map(addr uint64) Location
	Capacity() uint64
}

type field int

const (
	fieldRank field = iota
	fieldBankGroup
	fieldBank
	fieldRow
	fieldColumn
)

type mapperImpl struct {
	burstSize uint64
	order     []field // least significant first
	radix     map[field]uint64
}

// Map decomposes the address into a location. Addresses beyond the capacity
// wrap around.
func (m *mapperImpl) Map(addr uint64) Location {
	loc := Location{}
	n := addr / m.burstSize

	for _, f := range m.order {
		r := m.radix[f]
		v := int(n % r)
		n /= r

		switch f {
		case fieldRank:
			loc.Rank = v
		case fieldBankGroup:
			loc.BankGroup = v
		case fieldBank:
			loc.Bank = v
		case fieldRow:
			loc.Row = v
		case fieldColumn:
			loc.Column = v
		}
	}

	return loc
}

// Capacity returns the number of bytes the mapper addresses.
func (m *mapperImpl) Capacity() uint64 {
	c := m.burstSize
	for _, r := range m.radix {
		c *= r
	}

	return c
}

// Builder can build address mappers.
type Builder struct {
	scheme       Scheme
	burstSize    uint64
	numRank      int
	numBankGroup int
	numBank      int
	numRow       int
	numCol       int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		scheme:       RoRaBaCo,
		burstSize:    64,
		numRank:      1,
		numBankGroup: 1,
		numBank:      1,
		numRow:       1,
		numCol:       1,
	}
}

// WithScheme sets the order of the address fields.
func (b Builder) WithScheme(s Scheme) Builder {
	b.scheme = s
	return b
}

// WithBurstSize sets the number of bytes a burst transfers.
func (b Builder) WithBurstSize(n uint64) Builder {
	b.burstSize = n
	return b
}

// WithNumRank sets the number of ranks.
func (b Builder) WithNumRank(n int) Builder {
	b.numRank = n
	return b
}

// WithNumBankGroup sets the number of bank groups per rank.
func (b Builder) WithNumBankGroup(n int) Builder {
	b.numBankGroup = n
	return b
}

// WithNumBank sets the number of banks per bank group.
func (b Builder) WithNumBank(n int) Builder {
	b.numBank = n
	return b
}

// WithNumRow sets the number of rows per bank.
func (b Builder) WithNumRow(n int) Builder {
	b.numRow = n
	return b
}

// WithNumCol sets the number of bursts per row.
func (b Builder) WithNumCol(n int) Builder {
	b.numCol = n
	return b
}

// Build creates the mapper.
func (b Builder) Build() Mapper {
	for _, n := range []int{
		b.numRank, b.numBankGroup, b.numBank, b.numRow, b.numCol,
	} {
		if n <= 0 {
			log.Panic("address mapping dimensions must be positive")
		}
	}

	if b.burstSize == 0 {
		log.Panic("burst size must be positive")
	}

	m := &mapperImpl{
		burstSize: b.burstSize,
		radix: map[field]uint64{
			fieldRank:      uint64(b.numRank),
			fieldBankGroup: uint64(b.numBankGroup),
			fieldBank:      uint64(b.numBank),
			fieldRow:       uint64(b.numRow),
			fieldColumn:    uint64(b.numCol),
		},
	}

	switch b.scheme {
	case RoRaBaCo:
		m.order = []field{
			fieldColumn, fieldBankGroup, fieldBank, fieldRank, fieldRow,
		}
	case RoCoRaBa:
		m.order = []field{
			fieldBankGroup, fieldBank, fieldRank, fieldColumn, fieldRow,
		}
	default:
		log.Panicf("unknown address mapping scheme %d", b.scheme)
	}

	return m
}
