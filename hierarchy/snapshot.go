package hierarchy

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cottand/slottype/typeexpr"
)

// snapshotSchemaVersion must be incremented whenever snapshot changes shape
const snapshotSchemaVersion uint16 = 1

// snapshot is a pre-processed Hierarchy, so that loading it skips pre-processing
type snapshot struct {
	Schema uint16
	Types  []snapshotType
	Topo   []TypeID
	NCA    [][][]TypeID
	NCD    [][][]TypeID
}

type snapshotType struct {
	Name             string
	Params           []snapshotParam
	Supers           []string
	SuperIDs         []TypeID
	SubIDs           []TypeID
	Ancestors        []TypeID
	Descendants      []TypeID
	AncestorParams   map[TypeID][]string
	DescendantParams map[TypeID][]string
}

type snapshotParam struct {
	Name     string
	Variance Variance
}

// WriteSnapshot writes h, tables included, to w in msgpack
func (h *Hierarchy) WriteSnapshot(w io.Writer) error {
	snap := snapshot{
		Schema: snapshotSchemaVersion,
		Types:  make([]snapshotType, len(h.defs)),
		Topo:   h.topo,
		NCA:    h.nca,
		NCD:    h.ncd,
	}
	for i, d := range h.defs {
		st := snapshotType{
			Name:             d.name,
			Supers:           typeexpr.Strings(d.supers),
			SuperIDs:         d.superIDs,
			SubIDs:           d.subIDs,
			Ancestors:        d.ancestors,
			Descendants:      d.descendants,
			AncestorParams:   make(map[TypeID][]string, len(d.ancestorParams)),
			DescendantParams: make(map[TypeID][]string, len(d.descendantParams)),
		}
		for _, p := range d.params {
			st.Params = append(st.Params, snapshotParam{Name: p.Name, Variance: p.Variance})
		}
		for id, params := range d.ancestorParams {
			st.AncestorParams[id] = typeexpr.Strings(params)
		}
		for id, params := range d.descendantParams {
			// zero Exprs render as the empty string
			st.DescendantParams[id] = typeexpr.Strings(params)
		}
		snap.Types[i] = st
	}
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(&snap); err != nil {
		return fmt.Errorf("encode hierarchy snapshot: %w", err)
	}
	return nil
}

// checkIDs makes sure every TypeID refers to one of the types, and that the
// nearest common tables are square
func (snap *snapshot) checkIDs() error {
	n := len(snap.Types)
	inRange := func(what string, ids []TypeID) error {
		for _, id := range ids {
			if int64(id) >= int64(n) {
				return fmt.Errorf("%s refers to type %d of %d", what, id, n)
			}
		}
		return nil
	}
	if err := inRange("topological order", snap.Topo); err != nil {
		return err
	}
	for table, rows := range map[string][][][]TypeID{"NCA": snap.NCA, "NCD": snap.NCD} {
		for i, row := range rows {
			if len(row) != n {
				return fmt.Errorf("%s row %d has %d entries, want %d", table, i, len(row), n)
			}
			for j, cell := range row {
				if err := inRange(fmt.Sprintf("%s[%d][%d]", table, i, j), cell); err != nil {
					return err
				}
			}
		}
	}
	for _, st := range snap.Types {
		for what, ids := range map[string][]TypeID{
			"supertypes": st.SuperIDs, "subtypes": st.SubIDs,
			"ancestors": st.Ancestors, "descendants": st.Descendants,
		} {
			if err := inRange(what+" of '"+st.Name+"'", ids); err != nil {
				return err
			}
		}
		for id := range st.AncestorParams {
			if err := inRange("ancestor params of '"+st.Name+"'", []TypeID{id}); err != nil {
				return err
			}
		}
		for id := range st.DescendantParams {
			if err := inRange("descendant params of '"+st.Name+"'", []TypeID{id}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadSnapshot loads a Hierarchy written by WriteSnapshot
func ReadSnapshot(r io.Reader) (*Hierarchy, error) {
	var snap snapshot
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode hierarchy snapshot: %w", err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("hierarchy snapshot has schema version %d, but only %d is supported", snap.Schema, snapshotSchemaVersion)
	}
	n := len(snap.Types)
	if len(snap.Topo) != n || len(snap.NCA) != n || len(snap.NCD) != n {
		return nil, fmt.Errorf("hierarchy snapshot is inconsistent: %d types but tables of %d, %d and %d", n, len(snap.Topo), len(snap.NCA), len(snap.NCD))
	}
	if err := snap.checkIDs(); err != nil {
		return nil, fmt.Errorf("hierarchy snapshot is inconsistent: %w", err)
	}

	h := &Hierarchy{
		defs:   make([]*typeDef, n),
		byName: make(map[string]TypeID, n),
		topo:   snap.Topo,
		nca:    snap.NCA,
		ncd:    snap.NCD,
	}
	for i, st := range snap.Types {
		supers, err := typeexpr.ParseAll(st.Supers...)
		if err != nil {
			return nil, fmt.Errorf("supertypes of '%s' in snapshot: %w", st.Name, err)
		}
		d := &typeDef{
			id:               newTypeID(i),
			name:             st.Name,
			params:           make([]Param, 0, len(st.Params)),
			supers:           supers,
			superIDs:         st.SuperIDs,
			subIDs:           st.SubIDs,
			ancestors:        st.Ancestors,
			descendants:      st.Descendants,
			ancestorParams:   make(map[TypeID][]typeexpr.Expr, len(st.AncestorParams)),
			descendantParams: make(map[TypeID][]typeexpr.Expr, len(st.DescendantParams)),
		}
		for _, p := range st.Params {
			d.params = append(d.params, Param{Name: p.Name, Variance: p.Variance})
		}
		for id, texts := range st.AncestorParams {
			params, err := typeexpr.ParseAll(texts...)
			if err != nil {
				return nil, fmt.Errorf("ancestor params of '%s' in snapshot: %w", st.Name, err)
			}
			d.ancestorParams[id] = params
		}
		for id, texts := range st.DescendantParams {
			params := make([]typeexpr.Expr, len(texts))
			for j, text := range texts {
				if text == "" {
					continue
				}
				if params[j], err = typeexpr.Parse(text); err != nil {
					return nil, fmt.Errorf("descendant params of '%s' in snapshot: %w", st.Name, err)
				}
			}
			d.descendantParams[id] = params
		}
		h.defs[i] = d
		h.byName[d.name] = d.id
	}
	if len(h.byName) != n {
		return nil, fmt.Errorf("hierarchy snapshot declares some types more than once")
	}
	logger.Info("loaded type hierarchy snapshot", "types", n)
	return h, nil
}
