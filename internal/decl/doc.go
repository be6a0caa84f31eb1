// Package decl loads *.abi.toml declaration files: structs, unions and
// enums described with C type names, resolved against an architecture and
// laid out in declaration order.
//
// Problems are reported as diagnostics; a declaration with errors is
// marked Failed and every declaration that depends on it by value fails as
// well. Only a file that cannot be decoded at all yields an *Error.
package decl
