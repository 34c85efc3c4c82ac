package equality

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrNotEncodable is returned when an argument has no canonical encoding,
// for example a function, a channel, or a cyclic structure. Callers must
// treat this as a failed call, never as a hit or a miss.
var ErrNotEncodable = errors.New("argument is not encodable")

// Keys longer than this are replaced by an xxhash digest of the full
// encoding to keep stored keys bounded.
const keyDigestThreshold = 96

// EncodeKey computes the canonical string encoding of an argument list.
// The encoding is deterministic for structurally identical values: map keys
// are emitted in sorted order and struct fields in declaration order with
// their names.
func EncodeKey(args []any) (string, error) {
	if len(args) == 0 {
		return "()", nil
	}

	enc := &encoder{seen: make(map[visit]struct{})}
	parts := make([]string, len(args))
	for i, arg := range args {
		part, err := enc.encode(arg)
		if err != nil {
			return "", fmt.Errorf("arg %d: %w", i, err)
		}
		parts[i] = part
	}

	combined := strings.Join(parts, "|")
	if len(combined) <= keyDigestThreshold {
		return combined, nil
	}
	return "x:" + strconv.FormatUint(xxhash.Sum64String(combined), 16), nil
}

// visit identifies a composite value already on the encoding path. The type
// is part of the identity because a struct and its first field share an
// address.
type visit struct {
	ptr uintptr
	typ reflect.Type
}

type encoder struct {
	seen map[visit]struct{}
}

func (e *encoder) encode(arg any) (string, error) {
	if arg == nil {
		return "nil", nil
	}
	return e.encodeValue(reflect.ValueOf(arg))
}

func (e *encoder) encodeValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return "s:" + strconv.Quote(v.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "i:" + strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "u:" + strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return "f:" + strconv.FormatFloat(v.Float(), 'g', -1, 64), nil
	case reflect.Complex64, reflect.Complex128:
		return "c:" + strconv.FormatComplex(v.Complex(), 'g', -1, 128), nil
	case reflect.Bool:
		return "b:" + strconv.FormatBool(v.Bool()), nil
	case reflect.Pointer:
		return e.encodePointer(v)
	case reflect.Slice, reflect.Array:
		return e.encodeSequence(v)
	case reflect.Map:
		return e.encodeMap(v)
	case reflect.Struct:
		return e.encodeStruct(v)
	case reflect.Interface:
		if v.IsNil() {
			return "nil", nil
		}
		return e.encodeValue(v.Elem())
	default:
		// Func, Chan, UnsafePointer have no value-based encoding.
		return "", fmt.Errorf("%w: %s", ErrNotEncodable, v.Type())
	}
}

func (e *encoder) encodePointer(v reflect.Value) (string, error) {
	if v.IsNil() {
		return "ptr:nil", nil
	}

	id := visit{ptr: v.Pointer(), typ: v.Type()}
	if _, ok := e.seen[id]; ok {
		return "", fmt.Errorf("%w: cycle through %s", ErrNotEncodable, v.Type())
	}
	e.seen[id] = struct{}{}
	defer delete(e.seen, id)

	elem, err := e.encodeValue(v.Elem())
	if err != nil {
		return "", err
	}
	return "ptr:" + elem, nil
}

func (e *encoder) encodeSequence(v reflect.Value) (string, error) {
	if v.Kind() == reflect.Slice {
		if v.IsNil() {
			return "seq:nil", nil
		}
		id := visit{ptr: v.Pointer(), typ: v.Type()}
		if _, ok := e.seen[id]; ok {
			return "", fmt.Errorf("%w: cycle through %s", ErrNotEncodable, v.Type())
		}
		e.seen[id] = struct{}{}
		defer delete(e.seen, id)
	}

	parts := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		part, err := e.encodeValue(v.Index(i))
		if err != nil {
			return "", err
		}
		parts[i] = part
	}
	return "seq:[" + strings.Join(parts, ",") + "]", nil
}

func (e *encoder) encodeMap(v reflect.Value) (string, error) {
	if v.IsNil() {
		return "map:nil", nil
	}

	id := visit{ptr: v.Pointer(), typ: v.Type()}
	if _, ok := e.seen[id]; ok {
		return "", fmt.Errorf("%w: cycle through %s", ErrNotEncodable, v.Type())
	}
	e.seen[id] = struct{}{}
	defer delete(e.seen, id)

	iter := v.MapRange()
	pairs := make([]string, 0, v.Len())
	for iter.Next() {
		key, err := e.encodeValue(iter.Key())
		if err != nil {
			return "", err
		}
		val, err := e.encodeValue(iter.Value())
		if err != nil {
			return "", err
		}
		pairs = append(pairs, key+"="+val)
	}

	// Sorted pairs make the encoding independent of map iteration order.
	sort.Strings(pairs)
	return "map:{" + strings.Join(pairs, ",") + "}", nil
}

func (e *encoder) encodeStruct(v reflect.Value) (string, error) {
	t := v.Type()
	parts := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		val, err := e.encodeValue(v.Field(i))
		if err != nil {
			return "", err
		}
		parts = append(parts, field.Name+":"+val)
	}

	name := t.Name()
	if name == "" {
		name = "anon"
	}
	return "struct:" + name + "{" + strings.Join(parts, ",") + "}", nil
}
