// Package wire implements the tagged buffer format shared by every
// encodable container type. It is a thin layer over protobuf wire
// encoding: compound values are framed as groups, and scalar fields
// use the standard varint, fixed64 and length-delimited
// representations.
//
// Field numbers inside a compound carry no meaning of their own;
// readers assign meaning to fields by arrival order.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Number identifies a field. The smallest valid number is 1.
type Number = protowire.Number

// Type is the wire type of an encoded field.
type Type = protowire.Type

const (
	Varint     = protowire.VarintType
	Fixed64    = protowire.Fixed64Type
	Bytes      = protowire.BytesType
	StartGroup = protowire.StartGroupType
	EndGroup   = protowire.EndGroupType
)

// Encoder appends fields to a byte buffer.
type Encoder struct {
	b []byte
}

// NewEncoder returns an Encoder appending to dst. dst may be nil.
func NewEncoder(dst []byte) *Encoder {
	return &Encoder{b: dst}
}

// Finish returns the encoded buffer.
func (e *Encoder) Finish() []byte { return e.b }

// Len returns the number of bytes encoded so far.
func (e *Encoder) Len() int { return len(e.b) }

// BeginCompound opens a compound value as field num.
func (e *Encoder) BeginCompound(num Number) {
	e.b = protowire.AppendTag(e.b, num, StartGroup)
}

// EndCompound closes a compound value opened with the same num.
func (e *Encoder) EndCompound(num Number) {
	e.b = protowire.AppendTag(e.b, num, EndGroup)
}

// WriteUvarint writes an unsigned varint field.
func (e *Encoder) WriteUvarint(num Number, v uint64) {
	e.b = protowire.AppendTag(e.b, num, Varint)
	e.b = protowire.AppendVarint(e.b, v)
}

// WriteVarint writes a signed varint field, zigzag encoded.
func (e *Encoder) WriteVarint(num Number, v int64) {
	e.b = protowire.AppendTag(e.b, num, Varint)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeZigZag(v))
}

// WriteBool writes a boolean varint field.
func (e *Encoder) WriteBool(num Number, v bool) {
	e.b = protowire.AppendTag(e.b, num, Varint)
	e.b = protowire.AppendVarint(e.b, protowire.EncodeBool(v))
}

// WriteFixed64 writes an eight-byte field.
func (e *Encoder) WriteFixed64(num Number, v uint64) {
	e.b = protowire.AppendTag(e.b, num, Fixed64)
	e.b = protowire.AppendFixed64(e.b, v)
}

// WriteBytes writes a length-delimited field.
func (e *Encoder) WriteBytes(num Number, v []byte) {
	e.b = protowire.AppendTag(e.b, num, Bytes)
	e.b = protowire.AppendBytes(e.b, v)
}

// WriteString writes a length-delimited string field.
func (e *Encoder) WriteString(num Number, v string) {
	e.b = protowire.AppendTag(e.b, num, Bytes)
	e.b = protowire.AppendString(e.b, v)
}

// Decoder consumes fields from a byte buffer.
type Decoder struct {
	b []byte
}

// NewDecoder returns a Decoder reading from b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{b: b}
}

// Len returns the number of bytes not yet consumed.
func (d *Decoder) Len() int { return len(d.b) }

func (d *Decoder) advance(n int) error {
	if n < 0 {
		return protowire.ParseError(n)
	}
	d.b = d.b[n:]
	return nil
}

// BeginCompound consumes a compound start tag and returns its field
// number.
func (d *Decoder) BeginCompound() (Number, error) {
	num, wt, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if wt != StartGroup {
		return 0, fmt.Errorf("expected compound start, got wire type %d", wt)
	}
	d.b = d.b[n:]
	return num, nil
}

// NextField consumes the next field tag inside compound num. done
// reports that the compound's end tag was consumed instead of a field.
func (d *Decoder) NextField(num Number) (wt Type, done bool, err error) {
	got, wt, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		return 0, false, protowire.ParseError(n)
	}
	d.b = d.b[n:]
	if wt == EndGroup {
		if got != num {
			return 0, false, fmt.Errorf("compound end for field %d inside field %d", got, num)
		}
		return wt, true, nil
	}
	return wt, false, nil
}

// ReadUvarint consumes an unsigned varint field body.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(d.b)
	if err := d.advance(n); err != nil {
		return 0, err
	}
	return v, nil
}

// ReadVarint consumes a zigzag-encoded signed varint field body.
func (d *Decoder) ReadVarint() (int64, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	return protowire.DecodeZigZag(v), nil
}

// ReadBool consumes a boolean varint field body.
func (d *Decoder) ReadBool() (bool, error) {
	v, err := d.ReadUvarint()
	if err != nil {
		return false, err
	}
	return protowire.DecodeBool(v), nil
}

// ReadFixed64 consumes an eight-byte field body.
func (d *Decoder) ReadFixed64() (uint64, error) {
	v, n := protowire.ConsumeFixed64(d.b)
	if err := d.advance(n); err != nil {
		return 0, err
	}
	return v, nil
}

// ReadBytes consumes a length-delimited field body. The returned slice
// aliases the decoder's buffer.
func (d *Decoder) ReadBytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.b)
	if err := d.advance(n); err != nil {
		return nil, err
	}
	return v, nil
}

// ReadString consumes a length-delimited field body as a string.
func (d *Decoder) ReadString() (string, error) {
	v, n := protowire.ConsumeString(d.b)
	if err := d.advance(n); err != nil {
		return "", err
	}
	return v, nil
}
