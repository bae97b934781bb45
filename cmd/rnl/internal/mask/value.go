package mask

import (
	"bytes"
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindError
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindError:
		return "error"
	case KindTimestamp:
		return "timestamp"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Field is a single key/value pair of an Object.
type Field struct {
	Key   string
	Value Value
}

// F builds a Field.
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// ErrorInfo is the loggable form of an error.
type ErrorInfo struct {
	Message string
	Name    string
	Stack   string
}

// Value is a log payload node. The zero Value is Null.
//
// Values are immutable: constructors copy nothing, but no method mutates the
// slices a Value holds, and Mask always builds new ones.
type Value struct {
	kind   Kind
	b      bool
	isInt  bool
	i      int64
	f      float64
	s      string
	items  []Value
	fields []Field
	err    *ErrorInfo
	t      time.Time
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Int(i int64) Value { return Value{kind: KindNumber, isInt: true, i: i} }

func Float(f float64) Value { return Value{kind: KindNumber, f: f} }

func String(s string) Value { return Value{kind: KindString, s: s} }

func Array(items ...Value) Value { return Value{kind: KindArray, items: items} }

// Object builds an object from fields in the given order. A repeated key
// keeps its first position and its last value.
func Object(fields ...Field) Value {
	seen := make(map[string]int, len(fields))
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if i, ok := seen[f.Key]; ok {
			out[i].Value = f.Value
			continue
		}
		seen[f.Key] = len(out)
		out = append(out, f)
	}
	return Value{kind: KindObject, fields: out}
}

func Error(info ErrorInfo) Value {
	return Value{kind: KindError, err: &info}
}

func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() bool { return v.b }

// Float returns the number as float64 whatever its representation.
func (v Value) Float() float64 {
	if v.isInt {
		return float64(v.i)
	}
	return v.f
}

// Int returns the number truncated to int64.
func (v Value) Int() int64 {
	if v.isInt {
		return v.i
	}
	return int64(v.f)
}

// Str returns the string payload of a String value.
func (v Value) Str() string { return v.s }

func (v Value) Items() []Value { return v.items }

func (v Value) Fields() []Field { return v.fields }

func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.fields)
	default:
		return 0
	}
}

// Keys returns the object's keys in order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.fields))
	for i, f := range v.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (v Value) ErrorInfo() ErrorInfo {
	if v.err == nil {
		return ErrorInfo{}
	}
	return *v.err
}

func (v Value) Time() time.Time { return v.t }

// Equal reports deep equality. Numbers compare by value regardless of
// integer or float representation.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if v.isInt && o.isInt {
			return v.i == o.i
		}
		return v.Float() == o.Float()
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Key != o.fields[i].Key || !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	case KindError:
		return v.ErrorInfo() == o.ErrorInfo()
	case KindTimestamp:
		return v.t.Equal(o.t)
	}
	return false
}

// Interface converts the value back to plain Go data: nil, bool, int64,
// float64, string, []any, map[string]any, or time.Time. An ErrorInfo
// becomes its {error, name, stack} map.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if v.isInt {
			return v.i
		}
		return v.f
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	case KindError:
		return errorObject(v.ErrorInfo()).Interface()
	case KindTimestamp:
		return v.t
	default:
		return nil
	}
}

// MarshalJSON encodes the value keeping object field order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if v.isInt {
			buf.WriteString(strconv.FormatInt(v.i, 10))
			return nil
		}
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, v.f)
	case KindString:
		return writeJSON(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindError:
		return errorObject(v.ErrorInfo()).encode(buf)
	case KindTimestamp:
		return writeJSON(buf, v.t)
	}
	return nil
}

func writeJSON(buf *bytes.Buffer, x any) error {
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// errorObject is the flattened {error, name, stack} form of an error.
func errorObject(info ErrorInfo) Value {
	return Object(
		F("error", String(info.Message)),
		F("name", String(info.Name)),
		F("stack", String(info.Stack)),
	)
}
