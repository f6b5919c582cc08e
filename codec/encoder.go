package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"
)

// Encoder borsh encodes to a given io.Writer.
type Encoder struct {
	encodeState
}

// NewEncoder creates a new encoder with the given writer.
func NewEncoder(writer io.Writer) (encoder *Encoder) {
	return &Encoder{
		encodeState: encodeState{
			Writer:                 writer,
			fieldBorshIndicesCache: cache,
		},
	}
}

// Encode borsh encodes value to the encoder writer.
func (e *Encoder) Encode(value interface{}) (err error) {
	return e.marshal(value)
}

// Marshal takes in an interface{} and attempts to marshal into []byte
func Marshal(v interface{}) (b []byte, err error) {
	buffer := bytes.NewBuffer(nil)
	es := encodeState{
		Writer:                 buffer,
		fieldBorshIndicesCache: cache,
	}
	err = es.marshal(v)
	if err != nil {
		return
	}
	b = buffer.Bytes()
	return
}

// Marshaler is the interface for custom Borsh marshalling for a given type
type Marshaler interface {
	MarshalBorsh() ([]byte, error)
}

// MustMarshal runs Marshal and panics on error.
func MustMarshal(v interface{}) (b []byte) {
	b, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

type encodeState struct {
	io.Writer
	*fieldBorshIndicesCache
}

func (es *encodeState) marshal(in interface{}) (err error) {
	marshaler, ok := in.(Marshaler)
	if ok {
		var bytes []byte
		bytes, err = marshaler.MarshalBorsh()
		if err != nil {
			return
		}
		_, err = es.Write(bytes)
		return
	}

	vdt, ok := in.(EncodeVaryingDataType)
	if ok {
		err = es.encodeVaryingDataType(vdt)
		return
	}

	switch in := in.(type) {
	case Uint128:
		err = es.encodeUint128(in)
	case int8, uint8, int16, uint16, int32, uint32, int64, uint64:
		err = es.encodeFixedWidthInt(in)
	case []byte:
		err = es.encodeBytes(in)
	case string:
		err = es.encodeBytes([]byte(in))
	case bool:
		err = es.encodeBool(in)
	default:
		switch reflect.TypeOf(in).Kind() {
		case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32,
			reflect.Int64, reflect.String, reflect.Uint8, reflect.Uint16,
			reflect.Uint32, reflect.Uint64:
			err = es.encodeCustomPrimitive(in)
		case reflect.Ptr:
			// A pointer is a Borsh Option capturing {nil, T}
			elem := reflect.ValueOf(in).Elem()
			switch elem.IsValid() {
			case false:
				_, err = es.Write([]byte{0})
			default:
				_, err = es.Write([]byte{1})
				if err != nil {
					return
				}
				err = es.marshal(elem.Interface())
			}
		case reflect.Struct:
			err = es.encodeStruct(in)
		case reflect.Array:
			err = es.encodeArray(in)
		case reflect.Slice:
			err = es.encodeSlice(in)
		default:
			err = fmt.Errorf("%w: %T", ErrUnsupportedType, in)
		}
	}
	return
}

// encodeCustomPrimitive encodes named types whose underlying kind is a basic Go primitive
func (es *encodeState) encodeCustomPrimitive(in interface{}) (err error) {
	switch reflect.TypeOf(in).Kind() {
	case reflect.Bool:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(false)).Interface()
	case reflect.Int8:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(int8(0))).Interface()
	case reflect.Int16:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(int16(0))).Interface()
	case reflect.Int32:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(int32(0))).Interface()
	case reflect.Int64:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(int64(0))).Interface()
	case reflect.String:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf("")).Interface()
	case reflect.Uint8:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(uint8(0))).Interface()
	case reflect.Uint16:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(uint16(0))).Interface()
	case reflect.Uint32:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(uint32(0))).Interface()
	case reflect.Uint64:
		in = reflect.ValueOf(in).Convert(reflect.TypeOf(uint64(0))).Interface()
	default:
		err = fmt.Errorf("%w: %T", ErrUnsupportedCustomPrimitive, in)
		return
	}
	err = es.marshal(in)
	return
}

// encodeVaryingDataType encodes a tagged union as a u8 discriminant followed by the value
func (es *encodeState) encodeVaryingDataType(vdt EncodeVaryingDataType) (err error) {
	index, value, err := vdt.IndexValue()
	if err != nil {
		return
	}
	_, err = es.Write([]byte{byte(index)})
	if err != nil {
		return
	}
	if value == nil {
		// unit variant
		return
	}
	err = es.marshal(value)
	return
}

// encodeSlice encodes a sequence with a u32 element-count prefix
func (es *encodeState) encodeSlice(in interface{}) (err error) {
	v := reflect.ValueOf(in)
	err = es.encodeLength(v.Len())
	if err != nil {
		return
	}
	for i := 0; i < v.Len(); i++ {
		err = es.marshal(v.Index(i).Interface())
		if err != nil {
			return
		}
	}
	return
}

// encodeArray encodes a fixed-size array without a length prefix
func (es *encodeState) encodeArray(in interface{}) (err error) {
	v := reflect.ValueOf(in)
	for i := 0; i < v.Len(); i++ {
		err = es.marshal(v.Index(i).Interface())
		if err != nil {
			return
		}
	}
	return
}

// encodeBool encodes a boolean value as a single byte
func (es *encodeState) encodeBool(l bool) (err error) {
	switch l {
	case true:
		_, err = es.Write([]byte{0x01})
	case false:
		_, err = es.Write([]byte{0x00})
	}
	return
}

// encodeBytes encodes a byte string with a u32 length prefix
func (es *encodeState) encodeBytes(b []byte) (err error) {
	err = es.encodeLength(len(b))
	if err != nil {
		return
	}

	_, err = es.Write(b)
	return
}

// encodeFixedWidthInt encodes fixed width integers in little-endian order
func (es *encodeState) encodeFixedWidthInt(i interface{}) (err error) {
	switch i := i.(type) {
	case int8:
		err = binary.Write(es, binary.LittleEndian, byte(i))
	case uint8:
		err = binary.Write(es, binary.LittleEndian, i)
	case int16:
		err = binary.Write(es, binary.LittleEndian, uint16(i))
	case uint16:
		err = binary.Write(es, binary.LittleEndian, i)
	case int32:
		err = binary.Write(es, binary.LittleEndian, uint32(i))
	case uint32:
		err = binary.Write(es, binary.LittleEndian, i)
	case int64:
		err = binary.Write(es, binary.LittleEndian, uint64(i))
	case uint64:
		err = binary.Write(es, binary.LittleEndian, i)
	default:
		err = fmt.Errorf("invalid type: %T", i)
	}
	return
}

// encodeStruct encodes exported struct fields in declaration order
func (es *encodeState) encodeStruct(in interface{}) (err error) {
	v, indices, err := es.fieldBorshIndices(in)
	if err != nil {
		return
	}
	for _, i := range indices {
		field := v.Field(i.fieldIndex)
		if !field.CanInterface() {
			continue
		}
		err = es.marshal(field.Interface())
		if err != nil {
			return
		}
	}
	return
}

// encodeLength encodes the length of a collection as a u32
func (es *encodeState) encodeLength(l int) (err error) {
	if l < 0 || int64(l) > math.MaxUint32 {
		return fmt.Errorf("%w: %d", ErrLengthOutOfRange, l)
	}
	return binary.Write(es, binary.LittleEndian, uint32(l))
}

// encodeUint128 encodes a Uint128 as 16 little-endian bytes
func (es *encodeState) encodeUint128(i Uint128) (err error) {
	err = binary.Write(es, binary.LittleEndian, i.Bytes())
	return
}
