package ndarray

// AttrType is the semantic value type of an attribute.
type AttrType int

// The recognized attribute value types.  AttrUndefined marks an attribute
// with no value; such attributes are skipped by consumers rather than
// treated as errors.
const (
	AttrUndefined AttrType = iota
	AttrInt8
	AttrUInt8
	AttrInt16
	AttrUInt16
	AttrInt32
	AttrUInt32
	AttrFloat32
	AttrFloat64
	AttrString
)

// Attr is a single named metadata entry attached to an Array.  Exactly one
// of Ival, Fval, Sval is meaningful, selected by Type.
type Attr struct {
	// Name is the unique identifier of the attribute.
	Name string

	// Description is an optional human-readable comment.
	Description string

	// Type selects the value payload and its width.
	Type AttrType

	// Ival holds the value for the six integer types.
	Ival int64

	// Fval holds the value for the two float types.
	Fval float64

	// Sval holds the value for AttrString.
	Sval string
}

// Int8Attr returns an int8-typed attribute.
func Int8Attr(name, desc string, v int8) Attr {
	return Attr{Name: name, Description: desc, Type: AttrInt8, Ival: int64(v)}
}

// Uint8Attr returns a uint8-typed attribute.
func Uint8Attr(name, desc string, v uint8) Attr {
	return Attr{Name: name, Description: desc, Type: AttrUInt8, Ival: int64(v)}
}

// Int16Attr returns an int16-typed attribute.
func Int16Attr(name, desc string, v int16) Attr {
	return Attr{Name: name, Description: desc, Type: AttrInt16, Ival: int64(v)}
}

// Uint16Attr returns a uint16-typed attribute.
func Uint16Attr(name, desc string, v uint16) Attr {
	return Attr{Name: name, Description: desc, Type: AttrUInt16, Ival: int64(v)}
}

// Int32Attr returns an int32-typed attribute.
func Int32Attr(name, desc string, v int32) Attr {
	return Attr{Name: name, Description: desc, Type: AttrInt32, Ival: int64(v)}
}

// Uint32Attr returns a uint32-typed attribute.
func Uint32Attr(name, desc string, v uint32) Attr {
	return Attr{Name: name, Description: desc, Type: AttrUInt32, Ival: int64(v)}
}

// Float32Attr returns a float32-typed attribute.
func Float32Attr(name, desc string, v float32) Attr {
	return Attr{Name: name, Description: desc, Type: AttrFloat32, Fval: float64(v)}
}

// Float64Attr returns a float64-typed attribute.
func Float64Attr(name, desc string, v float64) Attr {
	return Attr{Name: name, Description: desc, Type: AttrFloat64, Fval: v}
}

// StringAttr returns a string-typed attribute.
func StringAttr(name, desc, v string) Attr {
	return Attr{Name: name, Description: desc, Type: AttrString, Sval: v}
}

// UndefinedAttr returns an attribute with no value.
func UndefinedAttr(name, desc string) Attr {
	return Attr{Name: name, Description: desc, Type: AttrUndefined}
}
