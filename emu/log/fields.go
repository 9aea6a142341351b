package log

import (
	"fmt"
	"strconv"
)

type FieldType uint8

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeStringer
	FieldTypeInt
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeError
)

// ZField is a single EntryZ field. Depending on Type, the value is held in
// Integer (bool, int, hex), String or Interface (fmt.Stringer, error).
type ZField struct {
	Type      FieldType
	Key       string
	Integer   int64
	String    string
	Interface any
}

// hexWidth is the number of digits of hex fields.
var hexWidth = [...]int{FieldTypeHex8: 2, FieldTypeHex16: 4}

// Value formats the field value as it appears in the log.
func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		return strconv.FormatBool(f.Integer != 0)
	case FieldTypeString:
		return f.String
	case FieldTypeInt:
		return strconv.FormatInt(f.Integer, 10)
	case FieldTypeHex8, FieldTypeHex16:
		return fmt.Sprintf("%0*x", hexWidth[f.Type], uint64(f.Integer))
	case FieldTypeStringer:
		if f.Interface == nil {
			return "<nil>"
		}
		return f.Interface.(fmt.Stringer).String()
	case FieldTypeError:
		if f.Interface == nil {
			return "<nil>"
		}
		return f.Interface.(error).Error()
	}
	return "<unknown>"
}
