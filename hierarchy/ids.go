package hierarchy

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
	xset "github.com/xtgo/set"
)

// TypeID is the dense index of a type in its Hierarchy, in declaration order
type TypeID uint32

func newTypeID(index int) TypeID {
	id, err := safecast.Conv[uint32](index)
	if err != nil {
		panic(fmt.Errorf("too many types in hierarchy: %w", err))
	}
	return TypeID(id)
}

// idSet is a sorted list of unique TypeIDs
type idSet []TypeID

func (s idSet) Len() int           { return len(s) }
func (s idSet) Less(i, j int) bool { return s[i] < s[j] }
func (s idSet) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func (s idSet) contains(id TypeID) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

// union returns a new idSet with the elements of both s and other
func (s idSet) union(other idSet) idSet {
	data := make(idSet, 0, len(s)+len(other))
	data = append(data, s...)
	data = append(data, other...)
	size := xset.Union(data, len(s))
	return data[:size]
}
