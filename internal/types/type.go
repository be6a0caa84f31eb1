package types

import (
	"fmt"

	"ccabi/internal/mpa"
)

// Type is any C type.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// ObjectType is a type describing objects: everything but void and
// bitfields.
type ObjectType interface {
	Type
	MemberType
	// IsComplete reports whether the size is known.
	IsComplete() bool
	// IsSizeConstant reports whether the size is a compile time constant.
	// Only meaningful for complete types.
	IsSizeConstant() bool
	// Size returns the size in bytes. Only valid for complete types of
	// constant size.
	Size(abi ABI) mpa.Limbs
	// TypeAlignment returns the natural alignment as log2 bytes.
	TypeAlignment(abi ABI) int
	// UserAlignment returns the alignment requested by an aligned
	// attribute.
	UserAlignment() Alignment
	// WithUserAlignment returns a copy with the user alignment replaced.
	WithUserAlignment(a Alignment) ObjectType
}

// IntegerType is an object type usable as a bitfield base.
type IntegerType interface {
	ObjectType
	// IsSigned reports the signedness on the given target.
	IsSigned(abi ABI) bool
	// Width returns the number of value and sign bits.
	Width(abi ABI) int
	isInteger()
}

// EffectiveAlignment returns the user alignment if one is set and the
// natural alignment otherwise, as log2 bytes.
func EffectiveAlignment(t ObjectType, abi ABI) int {
	if log2, ok := t.UserAlignment().Log2(); ok {
		return log2
	}
	return t.TypeAlignment(abi)
}

func mustComplete(t ObjectType) {
	if !t.IsComplete() || !t.IsSizeConstant() {
		panic(fmt.Errorf("types: size of %s requested, which is incomplete or of variable size", t))
	}
}

func withAlign(s string, a Alignment) string {
	if !a.IsSet() {
		return s
	}
	return fmt.Sprintf("%s __attribute__((aligned(%d)))", s, a.Bytes())
}

// Void is the void type.
type Void struct{}

func (Void) Kind() Kind     { return KindVoid }
func (Void) String() string { return "void" }
func (Void) isType()        {}

// Bool is _Bool.
type Bool struct {
	Align Alignment
}

func (Bool) Kind() Kind                 { return KindBool }
func (b Bool) String() string           { return withAlign("_Bool", b.Align) }
func (Bool) isType()                    {}
func (Bool) isMember()                  {}
func (Bool) isInteger()                 {}
func (Bool) IsComplete() bool           { return true }
func (Bool) IsSizeConstant() bool       { return true }
func (Bool) Size(ABI) mpa.Limbs         { return mpa.FromUint64(1) }
func (Bool) TypeAlignment(ABI) int      { return 0 }
func (b Bool) UserAlignment() Alignment { return b.Align }
func (Bool) IsSigned(ABI) bool          { return false }
func (Bool) Width(ABI) int              { return 1 }
func (b Bool) WithUserAlignment(a Alignment) ObjectType {
	b.Align = a
	return b
}

// PlainChar is char without a signedness specifier.
type PlainChar struct {
	Align Alignment
}

func (PlainChar) Kind() Kind                 { return KindInt }
func (c PlainChar) String() string           { return withAlign("char", c.Align) }
func (PlainChar) isType()                    {}
func (PlainChar) isMember()                  {}
func (PlainChar) isInteger()                 {}
func (PlainChar) IsComplete() bool           { return true }
func (PlainChar) IsSizeConstant() bool       { return true }
func (PlainChar) Size(ABI) mpa.Limbs         { return mpa.FromUint64(1) }
func (PlainChar) TypeAlignment(ABI) int      { return 0 }
func (c PlainChar) UserAlignment() Alignment { return c.Align }
func (PlainChar) IsSigned(abi ABI) bool      { return abi.IsCharSigned() }
func (PlainChar) Width(abi ABI) int          { return abi.IntWidth(IntChar) }
func (c PlainChar) WithUserAlignment(a Alignment) ObjectType {
	c.Align = a
	return c
}

// Int is a signed or unsigned standard or extended integer type.
type Int struct {
	IntKind IntKind
	Signed  bool
	Align   Alignment
}

// Integer types used for enumerators.
var (
	SignedInt    = Int{IntKind: IntInt, Signed: true}
	UnsignedInt  = Int{IntKind: IntInt}
	SignedLong   = Int{IntKind: IntLong, Signed: true}
	UnsignedLong = Int{IntKind: IntLong}
)

func (Int) Kind() Kind { return KindInt }
func (i Int) String() string {
	s := i.IntKind.String()
	switch {
	case !i.Signed:
		s = "unsigned " + s
	case i.IntKind == IntChar:
		s = "signed " + s
	}
	return withAlign(s, i.Align)
}
func (Int) isType()                     {}
func (Int) isMember()                   {}
func (Int) isInteger()                  {}
func (Int) IsComplete() bool            { return true }
func (Int) IsSizeConstant() bool        { return true }
func (i Int) Size(abi ABI) mpa.Limbs    { return abi.IntSize(i.IntKind) }
func (i Int) TypeAlignment(abi ABI) int { return abi.IntAlignment(i.IntKind) }
func (i Int) UserAlignment() Alignment  { return i.Align }
func (i Int) IsSigned(ABI) bool         { return i.Signed }
func (i Int) Width(abi ABI) int         { return abi.IntWidth(i.IntKind) }
func (i Int) WithUserAlignment(a Alignment) ObjectType {
	i.Align = a
	return i
}

// Float is a real or complex floating type.
type Float struct {
	FloatKind FloatKind
	Complex   bool
	Align     Alignment
}

func (Float) Kind() Kind { return KindFloat }
func (f Float) String() string {
	s := f.FloatKind.String()
	if f.Complex {
		s = "_Complex " + s
	}
	return withAlign(s, f.Align)
}
func (Float) isType()                     {}
func (Float) isMember()                   {}
func (Float) IsComplete() bool            { return true }
func (Float) IsSizeConstant() bool        { return true }
func (f Float) Size(abi ABI) mpa.Limbs    { return abi.FloatSize(f.FloatKind, f.Complex) }
func (f Float) TypeAlignment(abi ABI) int { return abi.FloatAlignment(f.FloatKind, f.Complex) }
func (f Float) UserAlignment() Alignment  { return f.Align }
func (f Float) WithUserAlignment(a Alignment) ObjectType {
	f.Align = a
	return f
}

// Pointer is a pointer to Target, which may be any type including Void.
type Pointer struct {
	Target Type
	Align  Alignment
}

func (Pointer) Kind() Kind { return KindPointer }
func (p Pointer) String() string {
	target := "void"
	if p.Target != nil {
		target = p.Target.String()
	}
	return withAlign(target+" *", p.Align)
}
func (Pointer) isType()                    {}
func (Pointer) isMember()                  {}
func (Pointer) IsComplete() bool           { return true }
func (Pointer) IsSizeConstant() bool       { return true }
func (Pointer) Size(abi ABI) mpa.Limbs     { return abi.PointerSize() }
func (Pointer) TypeAlignment(abi ABI) int  { return abi.PointerAlignment() }
func (p Pointer) UserAlignment() Alignment { return p.Align }
func (p Pointer) WithUserAlignment(a Alignment) ObjectType {
	p.Align = a
	return p
}

// Array is an array of Elem. An array without a length is incomplete unless
// it is a variable length array.
type Array struct {
	Elem      ObjectType
	Length    mpa.Limbs
	HasLength bool
	VLA       bool
	Align     Alignment
}

// ArrayOf returns a complete array type of constant length.
func ArrayOf(elem ObjectType, length mpa.Limbs) Array {
	return Array{Elem: elem, Length: length, HasLength: true}
}

// IncompleteArrayOf returns an array type of unknown length, as used for
// flexible array members.
func IncompleteArrayOf(elem ObjectType) Array {
	return Array{Elem: elem}
}

// VLAOf returns a variable length array type.
func VLAOf(elem ObjectType) Array {
	return Array{Elem: elem, VLA: true}
}

func (Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	var s string
	switch {
	case a.HasLength:
		s = fmt.Sprintf("%s[%s]", a.Elem, a.Length)
	case a.VLA:
		s = fmt.Sprintf("%s[*]", a.Elem)
	default:
		s = fmt.Sprintf("%s[]", a.Elem)
	}
	return withAlign(s, a.Align)
}
func (Array) isType()   {}
func (Array) isMember() {}

func (a Array) IsComplete() bool {
	return a.Elem.IsComplete() && (a.HasLength || a.VLA)
}

func (a Array) IsSizeConstant() bool {
	return a.HasLength && !a.VLA && a.Elem.IsSizeConstant()
}

func (a Array) Size(abi ABI) mpa.Limbs {
	mustComplete(a)
	return a.Length.Mul(a.Elem.Size(abi))
}

func (a Array) TypeAlignment(abi ABI) int {
	return EffectiveAlignment(a.Elem, abi)
}

func (a Array) UserAlignment() Alignment { return a.Align }

func (a Array) WithUserAlignment(al Alignment) ObjectType {
	a.Align = al
	return a
}

// Record is a struct or union type.
type Record struct {
	Union   bool
	Tag     string
	Content *RecordContent
	Align   Alignment
}

func (r Record) Kind() Kind {
	if r.Union {
		return KindUnion
	}
	return KindStruct
}

func (r Record) String() string {
	kw := "struct"
	if r.Union {
		kw = "union"
	}
	tag := r.Tag
	if tag == "" {
		tag = "<anonymous>"
	}
	return withAlign(kw+" "+tag, r.Align)
}

func (Record) isType()   {}
func (Record) isMember() {}

func (r Record) IsComplete() bool {
	return r.Content != nil && r.Content.IsLaidOut()
}

func (r Record) IsSizeConstant() bool {
	return r.IsComplete() && r.Content.IsSizeConstant()
}

func (r Record) Size(ABI) mpa.Limbs {
	mustComplete(r)
	return r.Content.Size()
}

func (r Record) TypeAlignment(ABI) int {
	if !r.IsComplete() {
		panic(fmt.Errorf("types: alignment of incomplete %s requested", r))
	}
	return r.Content.Alignment()
}

func (r Record) UserAlignment() Alignment { return r.Align }

func (r Record) WithUserAlignment(a Alignment) ObjectType {
	r.Align = a
	return r
}

// Enum is an enumerated type.
type Enum struct {
	Tag     string
	Content *EnumContent
	Align   Alignment
}

func (e Enum) Kind() Kind { return KindEnum }

func (e Enum) String() string {
	tag := e.Tag
	if tag == "" {
		tag = "<anonymous>"
	}
	return withAlign("enum "+tag, e.Align)
}

func (Enum) isType()    {}
func (Enum) isMember()  {}
func (Enum) isInteger() {}

func (e Enum) IsComplete() bool {
	return e.Content != nil && e.Content.IsEvaluated()
}

func (e Enum) IsSizeConstant() bool { return true }

func (e Enum) underlying() Int {
	if !e.IsComplete() {
		panic(fmt.Errorf("types: underlying type of incomplete %s requested", e))
	}
	return e.Content.Underlying()
}

func (e Enum) Size(abi ABI) mpa.Limbs {
	return e.underlying().Size(abi)
}

// TypeAlignment is the effective alignment of the underlying type.
func (e Enum) TypeAlignment(abi ABI) int {
	return EffectiveAlignment(e.underlying(), abi)
}

func (e Enum) IsSigned(abi ABI) bool { return e.underlying().IsSigned(abi) }

func (e Enum) Width(abi ABI) int { return e.underlying().Width(abi) }

func (e Enum) UserAlignment() Alignment { return e.Align }

func (e Enum) WithUserAlignment(a Alignment) ObjectType {
	e.Align = a
	return e
}
