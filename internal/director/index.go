package director

import "fmt"

// IndexPath is a flat (section, row) address as used by the widget.
type IndexPath struct {
	Section int
	Row     int
}

func (p IndexPath) String() string { return fmt.Sprintf("[%d,%d]", p.Section, p.Row) }

// Region identifies which row source an address belongs to.
type Region int

const (
	RegionBefore Region = iota
	RegionData
	RegionAfter
)

func (r Region) String() string {
	switch r {
	case RegionBefore:
		return "before"
	case RegionData:
		return "data"
	case RegionAfter:
		return "after"
	default:
		return fmt.Sprintf("region(%d)", int(r))
	}
}

// Address is an IndexPath translated into its row source. Index is the
// position in the before or after list and is always 0 for RegionData.
type Address struct {
	Region Region
	Index  int
	Row    int
}

// IndexMap translates between flat and internal addresses.
type IndexMap struct {
	before int
	after  int
}

// NewIndexMap builds the map for the given number of before and after sections.
func NewIndexMap(before, after int) IndexMap {
	if before < 0 || after < 0 {
		panic(fmt.Sprintf("director: negative section count (before=%d after=%d)", before, after))
	}
	return IndexMap{before: before, after: after}
}

// DataSection is the flat index of the live-query section.
func (m IndexMap) DataSection() int { return m.before }

// SectionCount is the number of flat sections, the data section included.
func (m IndexMap) SectionCount() int { return m.before + m.after + 1 }

// Contains reports whether section is a valid flat section index.
func (m IndexMap) Contains(section int) bool {
	return section >= 0 && section < m.SectionCount()
}

// ToInternal resolves a flat address.
func (m IndexMap) ToInternal(p IndexPath) Address {
	switch {
	case p.Section == m.before:
		return Address{Region: RegionData, Row: p.Row}
	case p.Section < m.before:
		return Address{Region: RegionBefore, Index: p.Section, Row: p.Row}
	default:
		return Address{Region: RegionAfter, Index: p.Section - m.before - 1, Row: p.Row}
	}
}

// ToFlat is the inverse of ToInternal.
func (m IndexMap) ToFlat(a Address) IndexPath {
	switch a.Region {
	case RegionBefore:
		return IndexPath{Section: a.Index, Row: a.Row}
	case RegionData:
		return IndexPath{Section: m.before, Row: a.Row}
	default:
		return IndexPath{Section: m.before + 1 + a.Index, Row: a.Row}
	}
}
