// Package layout places struct and union members and evaluates enum
// underlying types the way gcc 4.8 does on its LP64 targets.
//
// The algorithms are parameterized by a Target, which supplies type sizes
// and alignments. Results are written back into the types.RecordContent
// and types.EnumContent passed in.
//
// Alignments inside the record layout are kept as "ffs of a bit count": an
// alignment of 2^k bytes is 2^(k+3) bits and is represented as k+4, while 1
// means bit alignment. This mirrors gcc's DECL_ALIGN handling and keeps
// bitfields and byte-aligned members in one scale.
package layout
