package log

import (
	"fmt"
	"strconv"
)

// FieldType selects which ZField member carries the value.
type FieldType uint8

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeInt
	FieldTypeUint
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeError
	FieldTypeStringer
)

// ZField is a single key/value pair of an EntryZ. Integers of every width
// share the Integer member.
type ZField struct {
	Type FieldType
	Key  string

	String    string
	Integer   uint64
	Boolean   bool
	Error     error
	Interface fmt.Stringer
}

// hexWidth is the number of digits printed for hex fields, so that register
// and address dumps line up.
var hexWidth = [...]int{FieldTypeHex8: 2, FieldTypeHex16: 4}

func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		return strconv.FormatBool(f.Boolean)
	case FieldTypeString:
		return f.String
	case FieldTypeInt:
		return strconv.FormatInt(int64(f.Integer), 10)
	case FieldTypeUint:
		return strconv.FormatUint(f.Integer, 10)
	case FieldTypeHex8, FieldTypeHex16:
		return fmt.Sprintf("%0*x", hexWidth[f.Type], f.Integer)
	case FieldTypeError:
		if f.Error == nil {
			return "<nil>"
		}
		return f.Error.Error()
	case FieldTypeStringer:
		if f.Interface == nil {
			return "<nil>"
		}
		return f.Interface.String()
	}
	return ""
}
