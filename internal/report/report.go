// Package report snapshots laid-out declarations into plain values that
// can be rendered, serialized and cached.
package report

import (
	"ccabi/internal/arch"
	"ccabi/internal/decl"
	"ccabi/internal/mpa"
	"ccabi/internal/types"
)

// SchemaVersion changes whenever the shape of File changes.
const SchemaVersion uint16 = 1

// File is the layout report of one declaration file.
type File struct {
	Schema  uint16   `msgpack:"schema" json:"-"`
	Path    string   `msgpack:"path" json:"path"`
	Target  string   `msgpack:"target" json:"target"`
	Records []Record `msgpack:"records" json:"records"`
}

// Record is a laid-out struct or union, or an evaluated enum.
type Record struct {
	Kind   string `msgpack:"kind" json:"kind"`
	Name   string `msgpack:"name" json:"name"`
	Failed bool   `msgpack:"failed,omitempty" json:"failed,omitempty"`

	// Size and Align are in bytes.
	Size  uint64 `msgpack:"size" json:"size"`
	Align uint64 `msgpack:"align" json:"align"`

	Fields      []Field      `msgpack:"fields,omitempty" json:"fields,omitempty"`
	Underlying  string       `msgpack:"underlying,omitempty" json:"underlying,omitempty"`
	Enumerators []Enumerator `msgpack:"enumerators,omitempty" json:"enumerators,omitempty"`
}

// Field is one placed member. Offset is in bytes from the start of the
// enclosing record, BitPos the bit within that byte.
type Field struct {
	Name   string `msgpack:"name" json:"name"`
	Type   string `msgpack:"type" json:"type"`
	Offset uint64 `msgpack:"offset" json:"offset"`
	BitPos int    `msgpack:"bitpos,omitempty" json:"bitpos,omitempty"`
	// Bits is the width of a bit-field, -1 for other members.
	Bits int    `msgpack:"bits" json:"bits"`
	Size uint64 `msgpack:"size" json:"size"`
	// Members of an anonymous struct or union, offsets relative to it.
	Fields []Field `msgpack:"fields,omitempty" json:"fields,omitempty"`
}

// Enumerator is one enum constant with its converted value and type.
type Enumerator struct {
	Name  string `msgpack:"name" json:"name"`
	Value string `msgpack:"value" json:"value"`
	Type  string `msgpack:"type" json:"type"`
}

// FromFile builds the report of a loaded declaration file.
func FromFile(a arch.Architecture, f *decl.File) File {
	out := File{Schema: SchemaVersion, Path: f.Path, Target: a.Triple()}
	for _, d := range f.Decls {
		out.Records = append(out.Records, FromDecl(a, d))
	}
	return out
}

// FromDecl builds the report of one declaration.
func FromDecl(abi types.ABI, d *decl.Decl) Record {
	r := Record{Kind: d.Kind.String(), Name: d.Name, Failed: d.Failed}
	switch {
	case d.Failed:
	case d.Record != nil && d.Record.IsLaidOut():
		r.Size = toUint64(d.Record.Size())
		r.Align = uint64(1) << d.Record.Alignment()
		r.Fields = fields(abi, d.Record)
	case d.Enum != nil && d.Enum.IsEvaluated():
		u := d.Enum.Underlying()
		r.Underlying = u.String()
		r.Size = toUint64(u.Size(abi))
		r.Align = uint64(1) << types.EffectiveAlignment(u, abi)
		for _, m := range d.Enum.Members {
			r.Enumerators = append(r.Enumerators, Enumerator{Name: m.Name, Value: m.Value.String(), Type: m.Type.String()})
		}
	default:
		r.Failed = true
	}
	return r
}

func fields(abi types.ABI, c *types.RecordContent) []Field {
	var out []Field
	for _, m := range c.Members {
		off, _ := m.Offset()
		f := Field{Name: m.Name, Type: m.Type.String(), Offset: toUint64(off), BitPos: m.BitPos(), Bits: -1}
		switch t := m.Type.(type) {
		case *types.Bitfield:
			f.Bits = t.Width
			f.Size = toUint64(t.Base.Size(abi))
		case types.ObjectType:
			if t.IsComplete() && t.IsSizeConstant() {
				f.Size = toUint64(t.Size(abi))
			}
			if rec, ok := t.(types.Record); ok && m.Name == "" {
				f.Fields = fields(abi, rec.Content)
			}
		}
		out = append(out, f)
	}
	return out
}

// toUint64 converts a size or offset of a declaration that did not fail.
// decl rejects records whose sizes or offsets need more than 64 bits, so
// the saturation only covers member types of such records.
func toUint64(l mpa.Limbs) uint64 {
	v, err := l.Uint64()
	if err != nil {
		return ^uint64(0)
	}
	return v
}
