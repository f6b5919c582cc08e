package codec

import (
	"bytes"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePrimitives(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		expected []byte
	}{
		{"u8", uint8(0x7f), []byte{0x7f}},
		{"u16", uint16(0x0102), []byte{0x02, 0x01}},
		{"u32", uint32(0x01020304), []byte{0x04, 0x03, 0x02, 0x01}},
		{"u64", uint64(0x0102030405060708), []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}},
		{"bool true", true, []byte{0x01}},
		{"bool false", false, []byte{0x00}},
		{"empty string", "", []byte{0x00, 0x00, 0x00, 0x00}},
		{"string", "alice.near", append([]byte{0x0a, 0x00, 0x00, 0x00}, []byte("alice.near")...)},
		{"bytes", []byte{0xaa, 0xbb}, []byte{0x02, 0x00, 0x00, 0x00, 0xaa, 0xbb}},
		{"u128", Uint128{Low: 2, High: 1}, []byte{
			0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := Marshal(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, encoded)
		})
	}
}

func TestEncodeOption(t *testing.T) {
	var none *uint32
	encoded, err := Marshal(none)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, encoded)

	some := uint32(7)
	encoded, err = Marshal(&some)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x07, 0x00, 0x00, 0x00}, encoded)
}

type wireFixture struct {
	Account string
	Payload []byte
	Amount  Uint128
	Gas     uint64
	Tags    []uint16
	Note    *string
}

func TestStructRoundTrip(t *testing.T) {
	note := "memo"
	fixtures := []wireFixture{
		{
			Account: "alice.near",
			Payload: []byte{0x01, 0x02, 0x03},
			Amount:  Uint128{Low: 10, High: 2},
			Gas:     30_000_000_000_000,
			Tags:    []uint16{1, 2, 3},
			Note:    &note,
		},
		{}, // zero value
	}

	for i, fixture := range fixtures {
		t.Run(fmt.Sprintf("fixture_%d", i), func(t *testing.T) {
			encoded, err := Marshal(fixture)
			require.NoError(t, err)

			var decoded wireFixture
			err = Unmarshal(encoded, &decoded)
			require.NoError(t, err)

			// Empty collections decode as empty, not nil.
			if fixture.Payload == nil {
				fixture.Payload = []byte{}
			}
			if fixture.Tags == nil {
				decoded.Tags = []uint16{}
				fixture.Tags = []uint16{}
			}
			assert.Equal(t, fixture, decoded)
		})
	}
}

func TestStructFieldOrder(t *testing.T) {
	type pair struct {
		A uint8
		B uint16
	}
	encoded, err := Marshal(pair{A: 0x01, B: 0x0203})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x03, 0x02}, encoded)
}

type shape struct {
	kind  uint
	value interface{}
}

func (s shape) IndexValue() (int, interface{}, error) {
	return int(s.kind), s.value, nil
}

func (s *shape) ValueAt(index uint) (interface{}, error) {
	switch index {
	case 0:
		return uint32(0), nil
	case 1:
		return "", nil
	default:
		return nil, fmt.Errorf("unknown index %d", index)
	}
}

func (s *shape) SetValue(value interface{}) error {
	s.value = value
	return nil
}

func TestVaryingDataType(t *testing.T) {
	encoded, err := Marshal(shape{kind: 1, value: "ft_transfer"})
	require.NoError(t, err)
	require.Equal(t, byte(0x01), encoded[0])

	var decoded shape
	decoded.kind = 1
	err = Unmarshal(encoded, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ft_transfer", decoded.value)

	_, err = Marshal(shape{kind: 0, value: uint32(42)})
	require.NoError(t, err)
}

func TestDecoderScanning(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	enc := NewEncoder(buf)
	require.NoError(t, enc.Encode(uint32(2)))
	require.NoError(t, enc.Encode(uint8(7)))
	require.NoError(t, enc.Encode([]byte("skip me")))
	require.NoError(t, enc.Encode([]byte("read me")))
	require.NoError(t, enc.Encode(Uint128{Low: 5}))
	require.NoError(t, enc.Encode(uint64(9)))

	d := NewDecoder(bytes.NewReader(buf.Bytes()))

	count, err := d.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)

	tag, err := d.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(7), tag)

	require.NoError(t, d.SkipBytes())

	payload, err := d.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("read me"), payload)

	amount, err := d.ReadU128()
	require.NoError(t, err)
	assert.Equal(t, Uint128{Low: 5}, amount)

	gas, err := d.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), gas)
}

func TestDecodeTruncated(t *testing.T) {
	var s string
	err := Unmarshal([]byte{0x0a, 0x00, 0x00, 0x00, 'a'}, &s)
	assert.Error(t, err)

	d := NewDecoder(bytes.NewReader([]byte{0x05, 0x00, 0x00, 0x00, 0x01}))
	err = d.SkipBytes()
	assert.Error(t, err)
}

func TestUint128(t *testing.T) {
	two, ok := new(big.Int).SetString("2000000000000000000000000", 10)
	require.True(t, ok)

	v, err := Uint128FromBig(two)
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000000000", v.String())
	assert.Equal(t, two, v.Big())

	round, err := NewUint128(v.Bytes())
	require.NoError(t, err)
	assert.Equal(t, v, round)

	sum, overflow := Uint128FromUint64(1).Add(Uint128FromUint64(2))
	require.False(t, overflow)
	assert.Equal(t, Uint128FromUint64(3), sum)

	max := Uint128{Low: ^uint64(0), High: ^uint64(0)}
	_, overflow = max.Add(Uint128FromUint64(1))
	assert.True(t, overflow)

	_, err = Uint128FromBig(new(big.Int).Lsh(big.NewInt(1), 128))
	assert.Error(t, err)
	_, err = Uint128FromBig(big.NewInt(-1))
	assert.Error(t, err)
}
