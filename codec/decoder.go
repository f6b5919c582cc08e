package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// indirect walks down v allocating pointers as needed, until it gets to a non-pointer.
func indirect(dstv reflect.Value) (elem reflect.Value) {
	dstv0 := dstv
	haveAddr := false
	for {
		if dstv.Kind() == reflect.Interface && !dstv.IsNil() {
			e := dstv.Elem()
			if e.Kind() == reflect.Ptr && !e.IsNil() && e.Elem().Kind() == reflect.Ptr {
				haveAddr = false
				dstv = e
				continue
			}
		}
		if dstv.Kind() != reflect.Ptr {
			break
		}
		if dstv.CanSet() {
			break
		}
		if dstv.Elem().Kind() == reflect.Interface && dstv.Elem().Elem() == dstv {
			dstv = dstv.Elem()
			break
		}
		if dstv.IsNil() {
			dstv.Set(reflect.New(dstv.Type().Elem()))
		}
		if haveAddr {
			dstv = dstv0
			haveAddr = false
		} else {
			dstv = dstv.Elem()
		}
	}
	elem = dstv
	return
}

// Unmarshal takes data and a destination pointer to unmarshal the data to.
func Unmarshal(data []byte, dst interface{}) (err error) {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		err = fmt.Errorf("%w: %T", ErrUnsupportedDestination, dst)
		return
	}

	ds := decodeState{}

	ds.Reader = bytes.NewBuffer(data)

	err = ds.unmarshal(indirect(dstv))
	if err != nil {
		return
	}
	return
}

// Unmarshaler is the interface for custom Borsh decoding for a given type
type Unmarshaler interface {
	UnmarshalBorsh(io.Reader) error
}

// Decoder is used to decode from an io.Reader
type Decoder struct {
	decodeState
}

// Decode accepts a pointer to a destination and decodes into the supplied destination
func (d *Decoder) Decode(dst interface{}) (err error) {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		err = fmt.Errorf("%w: %T", ErrUnsupportedDestination, dst)
		return
	}

	err = d.unmarshal(indirect(dstv))
	if err != nil {
		return
	}
	return nil
}

// NewDecoder is constructor for Decoder
func NewDecoder(r io.Reader) (d *Decoder) {
	d = &Decoder{
		decodeState{r},
	}
	return
}

// ReadU8 reads a single byte.
func (d *Decoder) ReadU8() (byte, error) {
	return d.ReadByte()
}

// ReadU32 reads a little-endian u32.
func (d *Decoder) ReadU32() (out uint32, err error) {
	buf := make([]byte, 4)
	_, err = io.ReadFull(d.Reader, buf)
	if err != nil {
		return
	}
	out = binary.LittleEndian.Uint32(buf)
	return
}

// ReadU64 reads a little-endian u64.
func (d *Decoder) ReadU64() (out uint64, err error) {
	buf := make([]byte, 8)
	_, err = io.ReadFull(d.Reader, buf)
	if err != nil {
		return
	}
	out = binary.LittleEndian.Uint64(buf)
	return
}

// ReadU128 reads a little-endian u128.
func (d *Decoder) ReadU128() (out Uint128, err error) {
	buf := make([]byte, 16)
	_, err = io.ReadFull(d.Reader, buf)
	if err != nil {
		return
	}
	return NewUint128(buf)
}

// ReadBytes reads a u32 length prefix followed by that many bytes.
func (d *Decoder) ReadBytes() (out []byte, err error) {
	length, err := d.ReadU32()
	if err != nil {
		return
	}
	out = make([]byte, length)
	_, err = io.ReadFull(d.Reader, out)
	return
}

// SkipBytes consumes a u32 length prefix and the bytes it covers without
// materializing them. Used when scanning a buffer for a later entry.
func (d *Decoder) SkipBytes() (err error) {
	length, err := d.ReadU32()
	if err != nil {
		return
	}
	_, err = io.CopyN(io.Discard, d.Reader, int64(length))
	return
}

type decodeState struct {
	io.Reader
}

func (ds *decodeState) unmarshal(dstv reflect.Value) (err error) {
	unmarshalerType := reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	if dstv.CanAddr() && dstv.Addr().Type().Implements(unmarshalerType) {
		methodVal := dstv.Addr().MethodByName("UnmarshalBorsh")
		values := methodVal.Call([]reflect.Value{reflect.ValueOf(ds.Reader)})
		if !values[0].IsNil() {
			errIn := values[0].Interface()
			err := errIn.(error)
			return err
		}
		return
	}

	if dstv.CanAddr() {
		addr := dstv.Addr()
		vdt, ok := addr.Interface().(VaryingDataType)
		if ok {
			err = ds.decodeVaryingDataType(vdt)
			return
		}
	}

	in := dstv.Interface()
	switch in.(type) {
	case Uint128:
		err = ds.decodeUint128(dstv)
	case int8, uint8, int16, uint16, int32, uint32, int64, uint64:
		err = ds.decodeFixedWidthInt(dstv)
	case []byte:
		err = ds.decodeBytes(dstv)
	case string:
		err = ds.decodeBytes(dstv)
	case bool:
		err = ds.decodeBool(dstv)
	default:
		t := reflect.TypeOf(in)
		switch t.Kind() {
		case reflect.Bool, reflect.Int8, reflect.Int16, reflect.Int32,
			reflect.Int64, reflect.String, reflect.Uint8, reflect.Uint16,
			reflect.Uint32, reflect.Uint64:
			err = ds.decodeCustomPrimitive(dstv)
		case reflect.Ptr:
			err = ds.decodePointer(dstv)
		case reflect.Struct:
			err = ds.decodeStruct(dstv)
		case reflect.Array:
			err = ds.decodeArray(dstv)
		case reflect.Slice:
			err = ds.decodeSlice(dstv)
		default:
			err = fmt.Errorf("%w: %T", ErrUnsupportedType, in)
		}
	}
	return
}

func (ds *decodeState) decodeCustomPrimitive(dstv reflect.Value) (err error) {
	in := dstv.Interface()
	inType := reflect.TypeOf(in)
	var temp reflect.Value
	switch inType.Kind() {
	case reflect.Bool:
		temp = reflect.New(reflect.TypeOf(false))
	case reflect.Int8:
		temp = reflect.New(reflect.TypeOf(int8(0)))
	case reflect.Int16:
		temp = reflect.New(reflect.TypeOf(int16(0)))
	case reflect.Int32:
		temp = reflect.New(reflect.TypeOf(int32(0)))
	case reflect.Int64:
		temp = reflect.New(reflect.TypeOf(int64(0)))
	case reflect.String:
		temp = reflect.New(reflect.TypeOf(""))
	case reflect.Uint8:
		temp = reflect.New(reflect.TypeOf(uint8(0)))
	case reflect.Uint16:
		temp = reflect.New(reflect.TypeOf(uint16(0)))
	case reflect.Uint32:
		temp = reflect.New(reflect.TypeOf(uint32(0)))
	case reflect.Uint64:
		temp = reflect.New(reflect.TypeOf(uint64(0)))
	default:
		err = fmt.Errorf("%w: %T", ErrUnsupportedType, in)
		return
	}
	err = ds.unmarshal(temp.Elem())
	if err != nil {
		return
	}
	dstv.Set(temp.Elem().Convert(inType))
	return
}

func (ds *decodeState) ReadByte() (byte, error) {
	b := make([]byte, 1)
	_, err := io.ReadFull(ds.Reader, b)
	return b[0], err
}

func (ds *decodeState) decodePointer(dstv reflect.Value) (err error) {
	var rb byte
	rb, err = ds.ReadByte()
	if err != nil {
		return
	}
	switch rb {
	case 0x00:
		// nil case
	case 0x01:
		switch dstv.IsZero() {
		case false:
			if dstv.Elem().Kind() == reflect.Ptr {
				err = ds.unmarshal(dstv.Elem().Elem())
			} else {
				err = ds.unmarshal(dstv.Elem())
			}
		case true:
			elemType := reflect.TypeOf(dstv.Interface()).Elem()
			tempElem := reflect.New(elemType)
			err = ds.unmarshal(tempElem.Elem())
			if err != nil {
				return
			}
			dstv.Set(tempElem)
		}
	default:
		err = fmt.Errorf("%w: value: %v", ErrUnsupportedOption, rb)
	}
	return
}

func (ds *decodeState) decodeVaryingDataType(vdt VaryingDataType) (err error) {
	var b byte
	b, err = ds.ReadByte()
	if err != nil {
		return
	}

	val, err := vdt.ValueAt(uint(b))
	if err != nil {
		err = fmt.Errorf("%w: for key %d %v", ErrUnknownVaryingDataTypeValue, uint(b), err)
		return
	}
	if val == nil {
		// unit variant
		err = vdt.SetValue(nil)
		return
	}

	tempVal := reflect.New(reflect.TypeOf(val))
	tempVal.Elem().Set(reflect.ValueOf(val))
	err = ds.unmarshal(tempVal.Elem())
	if err != nil {
		return
	}
	err = vdt.SetValue(tempVal.Elem().Interface())
	return
}

func (ds *decodeState) decodeSlice(dstv reflect.Value) (err error) {
	l, err := ds.decodeLength()
	if err != nil {
		return
	}
	in := dstv.Interface()
	temp := reflect.New(reflect.ValueOf(in).Type())
	for i := uint32(0); i < l; i++ {
		tempElemType := reflect.TypeOf(in).Elem()
		tempElem := reflect.New(tempElemType).Elem()

		err = ds.unmarshal(tempElem)
		if err != nil {
			return
		}
		temp.Elem().Set(reflect.Append(temp.Elem(), tempElem))
	}
	dstv.Set(temp.Elem())

	return
}

func (ds *decodeState) decodeArray(dstv reflect.Value) (err error) {
	in := dstv.Interface()
	temp := reflect.New(reflect.ValueOf(in).Type())
	for i := 0; i < temp.Elem().Len(); i++ {
		elem := temp.Elem().Index(i)
		err = ds.unmarshal(elem)
		if err != nil {
			return
		}
	}
	dstv.Set(temp.Elem())
	return
}

// FieldIndex represents an index of a field within a struct.
type FieldIndex struct {
	fieldIndex int
}

// fieldBorshIndicesCache is a placeholder for caching information about field indices.
type fieldBorshIndicesCache struct{}

// fieldBorshIndices retrieves the indices of all exported fields in the struct.
func (c *fieldBorshIndicesCache) fieldBorshIndices(v interface{}) (reflect.Value, []FieldIndex, error) {
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("expected a struct, got %T", v)
	}

	typ := value.Type()
	var indices []FieldIndex
	for i := 0; i < value.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath == "" { // PkgPath is empty for exported fields
			indices = append(indices, FieldIndex{fieldIndex: i})
		}
	}
	return value, indices, nil
}

// A global cache variable
var cache = &fieldBorshIndicesCache{}

// decodeStruct decodes a Borsh tuple. The order of data is determined by the
// struct field declaration order, matching the source tuple on the host side.
func (ds *decodeState) decodeStruct(dstv reflect.Value) (err error) {
	in := dstv.Interface()
	v, indices, err := cache.fieldBorshIndices(in)
	if err != nil {
		return fmt.Errorf("failed to get field indices: %w", err)
	}

	temp := reflect.New(v.Type()).Elem()
	for _, index := range indices {
		field := temp.Field(index.fieldIndex)
		if !field.CanInterface() {
			continue
		}

		err = ds.unmarshal(field)
		if err != nil {
			return fmt.Errorf("failed to unmarshal field at index %d: %w", index.fieldIndex, err)
		}
	}
	dstv.Set(temp)
	return nil
}

// decodeBool accepts a byte representing a Borsh encoded bool and decodes it.
// Anything other than 0x00 or 0x01 is an error.
func (ds *decodeState) decodeBool(dstv reflect.Value) (err error) {
	rb, err := ds.ReadByte()
	if err != nil {
		return
	}

	var b bool
	switch rb {
	case 0x00:
	case 0x01:
		b = true
	default:
		err = fmt.Errorf("%w", errDecodeBool)
	}
	dstv.Set(reflect.ValueOf(b))
	return
}

// decodeLength reads a u32 collection-length prefix
func (ds *decodeState) decodeLength() (l uint32, err error) {
	buf := make([]byte, 4)
	_, err = io.ReadFull(ds.Reader, buf)
	if err != nil {
		return 0, fmt.Errorf("reading length: %w", err)
	}
	l = binary.LittleEndian.Uint32(buf)
	return
}

// decodeBytes is used to decode with a destination of []byte or string type
func (ds *decodeState) decodeBytes(dstv reflect.Value) (err error) {
	length, err := ds.decodeLength()
	if err != nil {
		return
	}

	b := make([]byte, length)

	if length > 0 {
		_, err = io.ReadFull(ds.Reader, b)
		if err != nil {
			return
		}
	}

	in := dstv.Interface()
	inType := reflect.TypeOf(in)
	dstv.Set(reflect.ValueOf(b).Convert(inType))
	return
}

// decodeFixedWidthInt decodes fixed width integers by reading the bytes in little endian
func (ds *decodeState) decodeFixedWidthInt(dstv reflect.Value) (err error) {
	in := dstv.Interface()
	var out interface{}
	switch in.(type) {
	case int8:
		var b byte
		b, err = ds.ReadByte()
		if err != nil {
			return
		}
		out = int8(b)
	case uint8:
		var b byte
		b, err = ds.ReadByte()
		if err != nil {
			return
		}
		out = b
	case int16:
		buf := make([]byte, 2)
		_, err = io.ReadFull(ds.Reader, buf)
		if err != nil {
			return
		}
		out = int16(binary.LittleEndian.Uint16(buf))
	case uint16:
		buf := make([]byte, 2)
		_, err = io.ReadFull(ds.Reader, buf)
		if err != nil {
			return
		}
		out = binary.LittleEndian.Uint16(buf)
	case int32:
		buf := make([]byte, 4)
		_, err = io.ReadFull(ds.Reader, buf)
		if err != nil {
			return
		}
		out = int32(binary.LittleEndian.Uint32(buf))
	case uint32:
		buf := make([]byte, 4)
		_, err = io.ReadFull(ds.Reader, buf)
		if err != nil {
			return
		}
		out = binary.LittleEndian.Uint32(buf)
	case int64:
		buf := make([]byte, 8)
		_, err = io.ReadFull(ds.Reader, buf)
		if err != nil {
			return
		}
		out = int64(binary.LittleEndian.Uint64(buf))
	case uint64:
		buf := make([]byte, 8)
		_, err = io.ReadFull(ds.Reader, buf)
		if err != nil {
			return
		}
		out = binary.LittleEndian.Uint64(buf)
	default:
		err = fmt.Errorf("invalid type: %T", in)
		return
	}
	dstv.Set(reflect.ValueOf(out))
	return
}

// decodeUint128 reads 16 little-endian bytes into a Uint128
func (ds *decodeState) decodeUint128(dstv reflect.Value) (err error) {
	buf := make([]byte, 16)
	_, err = io.ReadFull(ds.Reader, buf)
	if err != nil {
		return
	}
	ui128, err := NewUint128(buf)
	if err != nil {
		return
	}
	dstv.Set(reflect.ValueOf(ui128))
	return
}

var (
	ErrLengthOutOfRange            = errors.New("collection length out of u32 range")
	ErrUnsupportedCustomPrimitive  = errors.New("unsupported custom primitive")
	ErrUnsupportedDestination      = errors.New("unsupported destination type")
	ErrUnsupportedType             = errors.New("unsupported type")
	ErrUnknownVaryingDataTypeValue = errors.New("unknown varying data type value")
	ErrUnsupportedOption           = errors.New("unsupported option")
	errDecodeBool                  = errors.New("failed to decode bool")
)

// EncodeVaryingDataType is an interface for encoding tagged unions with discriminators.
// A nil value denotes a unit variant.
type EncodeVaryingDataType interface {
	IndexValue() (int, interface{}, error)
}

// VaryingDataType represents a generic interface for types that can vary and need a discriminator.
type VaryingDataType interface {
	ValueAt(index uint) (interface{}, error)
	SetValue(interface{}) error
}
