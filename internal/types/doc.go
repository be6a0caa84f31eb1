// Package types models the C types that take part in ABI layout.
//
// The set of types is closed. Every Type is one of Void, Bool, PlainChar,
// Int, Float, Pointer, Array, Record or Enum; struct and union members may
// additionally be a Bitfield. Call sites dispatch with type switches over
// these concrete types.
//
// Types are small immutable values. Records and enums refer to a content
// object (RecordContent, EnumContent) which is filled in by the layout engine
// and shared by every type value referring to it.
package types
