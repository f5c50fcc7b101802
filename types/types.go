// Package types defines the element types that container values are
// parameterized over: coercion from plain Go values into a canonical
// element form, total ordering, hashing, wire encoding and textual
// rendering.
package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/changhiskhan/object-database/wire"
)

// Type describes one element type. Containers delegate all
// element-level behavior here.
type Type interface {
	// Name returns the canonical name of the type, unique per
	// parameterization.
	Name() string
	// Coerce converts a plain Go value to the type's canonical element
	// form. The caller owns the returned element.
	Coerce(v interface{}) (interface{}, error)
	// Order compares two canonical elements, reporting <0, 0 or >0, or
	// an error when the elements do not admit an order.
	Order(a, b interface{}) (int, error)
	// Hash returns a stable 64-bit hash of a canonical element. Equal
	// elements hash equal.
	Hash(v interface{}) uint64
	// EncodeTo writes a canonical element as field num.
	EncodeTo(e *wire.Encoder, num wire.Number, v interface{})
	// DecodeFrom reads one element from a field body of wire type wt.
	// The caller owns the returned element.
	DecodeFrom(d *wire.Decoder, num wire.Number, wt wire.Type) (interface{}, error)
	// AppendRepr renders a canonical element in display form.
	AppendRepr(dst []byte, v interface{}) []byte
	// Compatible reports whether other describes the same type shape.
	Compatible(other Type) bool
	// Retain takes an additional reference to any refcounted storage
	// behind a canonical element. Scalar elements have none.
	Retain(v interface{})
	// Release drops a reference taken by Coerce, DecodeFrom or Retain.
	Release(v interface{})
}

// Singleton instances of the scalar types.
var (
	Bool    Type = boolType{}
	Int64   Type = int64Type{}
	UInt64  Type = uint64Type{}
	Float64 Type = float64Type{}
	String  Type = stringType{}
	Bytes   Type = bytesType{}
)

func coerceError(t Type, v interface{}) error {
	return fmt.Errorf("cannot coerce %T to %s", v, t.Name())
}

func wireTypeError(t Type, wt wire.Type) error {
	return fmt.Errorf("%s: unexpected wire type %d", t.Name(), wt)
}

// scalar provides the no-op reference management shared by all types
// whose elements are plain values.
type scalar struct{}

func (scalar) Retain(interface{})  {}
func (scalar) Release(interface{}) {}

type boolType struct{ scalar }

func (boolType) Name() string { return "Bool" }

func (t boolType) Coerce(v interface{}) (interface{}, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return nil, coerceError(t, v)
}

func (boolType) Order(a, b interface{}) (int, error) {
	x, y := a.(bool), b.(bool)
	switch {
	case x == y:
		return 0, nil
	case !x:
		return -1, nil
	}
	return 1, nil
}

func (boolType) Hash(v interface{}) uint64 {
	if v.(bool) {
		return hash8([]byte{1})
	}
	return hash8([]byte{0})
}

func (boolType) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	e.WriteBool(num, v.(bool))
}

func (t boolType) DecodeFrom(d *wire.Decoder, _ wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.Varint {
		return nil, wireTypeError(t, wt)
	}
	b, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (boolType) AppendRepr(dst []byte, v interface{}) []byte {
	return strconv.AppendBool(dst, v.(bool))
}

func (boolType) Compatible(other Type) bool {
	_, ok := other.(boolType)
	return ok
}

type int64Type struct{ scalar }

func (int64Type) Name() string { return "Int64" }

func (t int64Type) Coerce(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows %s", x, t.Name())
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows %s", x, t.Name())
		}
		return int64(x), nil
	}
	return nil, coerceError(t, v)
}

func (int64Type) Order(a, b interface{}) (int, error) {
	x, y := a.(int64), b.(int64)
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

func (int64Type) Hash(v interface{}) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v.(int64)))
	return hash8(buf[:])
}

func (int64Type) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	e.WriteVarint(num, v.(int64))
}

func (t int64Type) DecodeFrom(d *wire.Decoder, _ wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.Varint {
		return nil, wireTypeError(t, wt)
	}
	x, err := d.ReadVarint()
	if err != nil {
		return nil, err
	}
	return x, nil
}

func (int64Type) AppendRepr(dst []byte, v interface{}) []byte {
	return strconv.AppendInt(dst, v.(int64), 10)
}

func (int64Type) Compatible(other Type) bool {
	_, ok := other.(int64Type)
	return ok
}

type uint64Type struct{ scalar }

func (uint64Type) Name() string { return "UInt64" }

func (t uint64Type) Coerce(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case uint64:
		return x, nil
	case uint:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case int:
		if x < 0 {
			return nil, fmt.Errorf("%d underflows %s", x, t.Name())
		}
		return uint64(x), nil
	case int64:
		if x < 0 {
			return nil, fmt.Errorf("%d underflows %s", x, t.Name())
		}
		return uint64(x), nil
	}
	return nil, coerceError(t, v)
}

func (uint64Type) Order(a, b interface{}) (int, error) {
	x, y := a.(uint64), b.(uint64)
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

func (uint64Type) Hash(v interface{}) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v.(uint64))
	return hash8(buf[:])
}

func (uint64Type) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	e.WriteUvarint(num, v.(uint64))
}

func (t uint64Type) DecodeFrom(d *wire.Decoder, _ wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.Varint {
		return nil, wireTypeError(t, wt)
	}
	x, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	return x, nil
}

func (uint64Type) AppendRepr(dst []byte, v interface{}) []byte {
	return strconv.AppendUint(dst, v.(uint64), 10)
}

func (uint64Type) Compatible(other Type) bool {
	_, ok := other.(uint64Type)
	return ok
}

type float64Type struct{ scalar }

func (float64Type) Name() string { return "Float64" }

func (t float64Type) Coerce(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return nil, coerceError(t, v)
}

func (t float64Type) Order(a, b interface{}) (int, error) {
	x, y := a.(float64), b.(float64)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, fmt.Errorf("%s order undefined for NaN", t.Name())
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	}
	return 0, nil
}

func (float64Type) Hash(v interface{}) uint64 {
	x := v.(float64)
	if x == 0 {
		x = 0 // -0 hashes as 0, keeping Hash consistent with Order
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(x))
	return hash8(buf[:])
}

func (float64Type) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	e.WriteFixed64(num, math.Float64bits(v.(float64)))
}

func (t float64Type) DecodeFrom(d *wire.Decoder, _ wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.Fixed64 {
		return nil, wireTypeError(t, wt)
	}
	bits, err := d.ReadFixed64()
	if err != nil {
		return nil, err
	}
	return math.Float64frombits(bits), nil
}

func (float64Type) AppendRepr(dst []byte, v interface{}) []byte {
	return strconv.AppendFloat(dst, v.(float64), 'g', -1, 64)
}

func (float64Type) Compatible(other Type) bool {
	_, ok := other.(float64Type)
	return ok
}

type stringType struct{ scalar }

func (stringType) Name() string { return "String" }

func (t stringType) Coerce(v interface{}) (interface{}, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return nil, coerceError(t, v)
}

func (stringType) Order(a, b interface{}) (int, error) {
	return strings.Compare(a.(string), b.(string)), nil
}

func (stringType) Hash(v interface{}) uint64 {
	return hash8([]byte(v.(string)))
}

func (stringType) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	e.WriteString(num, v.(string))
}

func (t stringType) DecodeFrom(d *wire.Decoder, _ wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.Bytes {
		return nil, wireTypeError(t, wt)
	}
	s, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (stringType) AppendRepr(dst []byte, v interface{}) []byte {
	return strconv.AppendQuote(dst, v.(string))
}

func (stringType) Compatible(other Type) bool {
	_, ok := other.(stringType)
	return ok
}

type bytesType struct{ scalar }

func (bytesType) Name() string { return "Bytes" }

func (t bytesType) Coerce(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		return []byte(x), nil
	}
	return nil, coerceError(t, v)
}

func (bytesType) Order(a, b interface{}) (int, error) {
	return bytes.Compare(a.([]byte), b.([]byte)), nil
}

func (bytesType) Hash(v interface{}) uint64 {
	return hash8(v.([]byte))
}

func (bytesType) EncodeTo(e *wire.Encoder, num wire.Number, v interface{}) {
	e.WriteBytes(num, v.([]byte))
}

func (t bytesType) DecodeFrom(d *wire.Decoder, _ wire.Number, wt wire.Type) (interface{}, error) {
	if wt != wire.Bytes {
		return nil, wireTypeError(t, wt)
	}
	b, err := d.ReadBytes()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (bytesType) AppendRepr(dst []byte, v interface{}) []byte {
	return strconv.AppendQuote(dst, string(v.([]byte)))
}

func (bytesType) Compatible(other Type) bool {
	_, ok := other.(bytesType)
	return ok
}
