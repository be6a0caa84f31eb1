package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Declaration file loading
	DeclInfo                   Code = 1000
	DeclSyntax                 Code = 1001
	DeclUnknownKey             Code = 1002
	DeclMissingName            Code = 1003
	DeclDuplicateTag           Code = 1004
	DeclDuplicateMember        Code = 1005
	DeclBadType                Code = 1006
	DeclUnknownTag             Code = 1007
	DeclIncompleteMember       Code = 1008
	DeclBitfieldBase           Code = 1009
	DeclBitfieldIncompleteEnum Code = 1010
	DeclBitfieldWidth          Code = 1011
	DeclBitfieldNegative       Code = 1012
	DeclZeroWidthNamed         Code = 1013
	DeclBadAlignment           Code = 1014
	DeclBadValue               Code = 1015
	DeclBadMode                Code = 1016
	DeclDuplicateEnumerator    Code = 1017

	// Layout and enum evaluation
	LayoutInfo           Code = 2000
	EnumValueOutOfBounds Code = 2001
	EnumValueExceedsMode Code = 2002
	LayoutFailed         Code = 2003
	LayoutTooLarge       Code = 2004

	// I/O
	IOLoadFileError Code = 3001
	IOCacheError    Code = 3002

	// Project configuration
	ConfigInvalid    Code = 4001
	ConfigUnknownKey Code = 4002

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                "Unknown error",
	DeclInfo:                   "Declaration information",
	DeclSyntax:                 "malformed declaration file",
	DeclUnknownKey:             "unknown key in declaration file",
	DeclMissingName:            "declaration without a name",
	DeclDuplicateTag:           "tag already declared",
	DeclDuplicateMember:        "member already declared",
	DeclBadType:                "invalid type",
	DeclUnknownTag:             "reference to undeclared tag",
	DeclIncompleteMember:       "incomplete type for member",
	DeclBitfieldBase:           "invalid bitfield base type",
	DeclBitfieldIncompleteEnum: "bitfield base type is an incomplete enum type",
	DeclBitfieldWidth:          "bit-field width exceeds underlying type's width",
	DeclBitfieldNegative:       "negative bit-field width",
	DeclZeroWidthNamed:         "zero width bit-field shall not have a declarator",
	DeclBadAlignment:           "requested alignment is not a positive power of 2",
	DeclBadValue:               "invalid enumerator value",
	DeclBadMode:                "unknown machine mode",
	DeclDuplicateEnumerator:    "enumerator already declared",
	LayoutInfo:                 "Layout information",
	EnumValueOutOfBounds:       "enumerator value out of bounds",
	EnumValueExceedsMode:       "enumerator value exceeds specified integer mode",
	LayoutFailed:               "layout failed",
	LayoutTooLarge:             "size of type is too large",
	IOLoadFileError:            "I/O load file error",
	IOCacheError:               "layout cache error",
	ConfigInvalid:              "invalid project configuration",
	ConfigUnknownKey:           "unknown key in project configuration",
	ObsInfo:                    "Observability information",
	ObsTimings:                 "Layout timings",
}

// ID returns the stable identifier, e.g. "DCL1005".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
