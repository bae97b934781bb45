package mask

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
	"unsafe"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
)

// visitKey identifies a map, slice or pointer currently being converted.
type visitKey struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

type converter struct {
	maxDepth int
	active   map[visitKey]struct{}
}

// FromAny converts arbitrary Go data into a Value.
//
// Maps become objects with sorted keys, structs honour their json tags,
// errors become ErrorInfo and time.Time becomes a Timestamp. A reference back
// to a container that is still being converted fails with
// ErrCyclicStructure; nesting beyond maxDepth fails with ErrMaxDepth. A
// maxDepth of zero or less uses constants.DefaultMaxDepth.
func FromAny(x any, maxDepth int) (Value, error) {
	if maxDepth <= 0 {
		maxDepth = constants.DefaultMaxDepth
	}
	c := &converter{maxDepth: maxDepth, active: make(map[visitKey]struct{})}
	return c.convert(x, 0, "$")
}

func (c *converter) convert(x any, depth int, path string) (Value, error) {
	if depth > c.maxDepth {
		return Value{}, fmt.Errorf("%w (%d) at %s", ErrMaxDepth, c.maxDepth, path)
	}

	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case json.Number:
		return fromNumberLiteral(v), nil
	case time.Time:
		return Timestamp(v), nil
	case *time.Time:
		if v == nil {
			return Null(), nil
		}
		return Timestamp(*v), nil
	case ErrorInfo:
		return Error(v), nil
	case error:
		return FromError(v), nil
	case []byte:
		return fromBytes(v), nil
	case json.Marshaler:
		return c.fromMarshaler(v, depth, path)
	}

	return c.convertReflect(reflect.ValueOf(x), depth, path)
}

func (c *converter) convertReflect(rv reflect.Value, depth int, path string) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return c.convertValue(rv.Elem(), depth, path)
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		leave, err := c.enter(visitKey{typ: rv.Type(), ptr: rv.Pointer()}, path)
		if err != nil {
			return Value{}, err
		}
		defer leave()
		return c.convertValue(rv.Elem(), depth, path)
	case reflect.Map:
		return c.convertMap(rv, depth, path)
	case reflect.Slice:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return fromBytes(rv.Bytes()), nil
		}
		if rv.Len() > 0 {
			leave, err := c.enter(visitKey{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}, path)
			if err != nil {
				return Value{}, err
			}
			defer leave()
		}
		return c.convertList(rv, depth, path)
	case reflect.Array:
		return c.convertList(rv, depth, path)
	case reflect.Struct:
		if !rv.CanAddr() && rv.CanInterface() {
			// Copy so fields of unexported embedded structs can be read by address.
			cp := reflect.New(rv.Type()).Elem()
			cp.Set(rv)
			rv = cp
		}
		return c.convertStruct(rv, depth, path)
	default:
		// chan, func, complex and unsafe pointers have no JSON form.
		return String(rv.Type().String()), nil
	}
}

// convertValue converts rv. Values read through unexported embedded fields
// cannot be turned into interfaces by reflect, so addressable ones are
// re-read through an alias and the rest are walked reflectively.
func (c *converter) convertValue(rv reflect.Value, depth int, path string) (Value, error) {
	if !rv.CanInterface() && rv.CanAddr() {
		rv = reflect.NewAt(rv.Type(), unsafe.Pointer(rv.UnsafeAddr())).Elem()
	}
	if rv.CanInterface() {
		return c.convert(rv.Interface(), depth, path)
	}
	if depth > c.maxDepth {
		return Value{}, fmt.Errorf("%w (%d) at %s", ErrMaxDepth, c.maxDepth, path)
	}
	return c.convertReflect(rv, depth, path)
}

// enter marks key as being converted and returns the function that unmarks it.
func (c *converter) enter(key visitKey, path string) (func(), error) {
	if _, ok := c.active[key]; ok {
		return nil, fmt.Errorf("%w at %s", ErrCyclicStructure, path)
	}
	c.active[key] = struct{}{}
	return func() { delete(c.active, key) }, nil
}

func (c *converter) convertMap(rv reflect.Value, depth int, path string) (Value, error) {
	if rv.IsNil() {
		return Null(), nil
	}
	leave, err := c.enter(visitKey{typ: rv.Type(), ptr: rv.Pointer()}, path)
	if err != nil {
		return Value{}, err
	}
	defer leave()

	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: mapKey(iter.Key()), val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.key, b.key) })

	fields := make([]Field, 0, len(entries))
	for _, e := range entries {
		v, err := c.convertValue(e.val, depth+1, path+"."+e.key)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, F(e.key, v))
	}
	return Object(fields...), nil
}

func (c *converter) convertList(rv reflect.Value, depth int, path string) (Value, error) {
	items := make([]Value, rv.Len())
	for i := range items {
		v, err := c.convertValue(rv.Index(i), depth+1, path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return Value{}, err
		}
		items[i] = v
	}
	return Array(items...), nil
}

// convertStruct follows encoding/json field rules: exported fields only,
// json tag names, "-" skipped, omitempty honoured, embedded structs
// flattened. Exported fields of an unexported embedded struct are promoted.
func (c *converter) convertStruct(rv reflect.Value, depth int, path string) (Value, error) {
	var fields []Field
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Anonymous {
			t := sf.Type
			if t.Kind() == reflect.Pointer {
				t = t.Elem()
			}
			if !sf.IsExported() && t.Kind() != reflect.Struct {
				continue
			}
		} else if !sf.IsExported() {
			continue
		}
		name, omitEmpty, skip := parseTag(sf)
		if skip {
			continue
		}
		fv := rv.Field(i)

		if sf.Anonymous && name == "" {
			nested, ok, err := c.convertEmbedded(fv, depth, path)
			if err != nil {
				return Value{}, err
			}
			if ok {
				fields = append(fields, nested...)
				continue
			}
		}

		if omitEmpty && fv.IsZero() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		v, err := c.convertValue(fv, depth+1, path+"."+name)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, F(name, v))
	}
	return Object(fields...), nil
}

// convertEmbedded flattens an embedded struct or pointer to struct. ok is
// false when fv is neither and must be emitted as a regular field.
func (c *converter) convertEmbedded(fv reflect.Value, depth int, path string) (fields []Field, ok bool, err error) {
	if fv.Kind() == reflect.Pointer {
		if fv.Type().Elem().Kind() != reflect.Struct {
			return nil, false, nil
		}
		if fv.IsNil() {
			return nil, true, nil
		}
		if depth+1 > c.maxDepth {
			return nil, false, fmt.Errorf("%w (%d) at %s", ErrMaxDepth, c.maxDepth, path)
		}
		leave, err := c.enter(visitKey{typ: fv.Type(), ptr: fv.Pointer()}, path)
		if err != nil {
			return nil, false, err
		}
		defer leave()
		depth++
		fv = fv.Elem()
	}
	if fv.Kind() != reflect.Struct {
		return nil, false, nil
	}
	nested, err := c.convertStruct(fv, depth, path)
	if err != nil {
		return nil, false, err
	}
	return nested.Fields(), true, nil
}

// fromMarshaler round-trips a custom JSON type through its own encoding.
func (c *converter) fromMarshaler(m json.Marshaler, depth int, path string) (Value, error) {
	if rv := reflect.ValueOf(m); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null(), nil
	}
	raw, err := m.MarshalJSON()
	if err != nil {
		return String(constants.MaskPlaceholder), nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return String(constants.MaskPlaceholder), nil
	}
	return c.convert(decoded, depth, path)
}

func parseTag(sf reflect.StructField) (name string, omitEmpty, skip bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	return name, strings.Contains(","+opts+",", ",omitempty,"), false
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return fmt.Sprint(k.Interface())
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

func fromNumberLiteral(n json.Number) Value {
	if i, err := n.Int64(); err == nil {
		return Int(i)
	}
	f, err := n.Float64()
	switch {
	case err == nil:
		return Float(f)
	case errors.Is(err, strconv.ErrRange):
		// Out-of-range literals stay numbers at the nearest finite value.
		if math.IsInf(f, 0) {
			return Float(math.Copysign(math.MaxFloat64, f))
		}
		return Float(f)
	default:
		return String(n.String())
	}
}

func fromBytes(b []byte) Value {
	if utf8.Valid(b) {
		return String(string(b))
	}
	return String(base64.StdEncoding.EncodeToString(b))
}
