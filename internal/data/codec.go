package data

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrCorruptKey is returned when stored bytes cannot be decoded into a Key.
var ErrCorruptKey = errors.New("corrupt encoded key")

const (
	escapeByte     = 0x00
	escapedZero    = 0xff
	terminatorByte = 0x01
	signBit        = uint64(1) << 63
)

// EncodeKey returns an encoding of k whose bytewise order matches Key.Compare.
//
// Each byte component is written with 0x00 escaped as 0x00 0xff and terminated by 0x00 0x01.
// The timestamp follows as the complement of its sign-flipped big-endian form so newer versions
// sort first, and a final byte places deletion markers before regular entries.
func EncodeKey(k Key) []byte {
	size := len(k.Row) + len(k.Family) + len(k.Qualifier) + len(k.Visibility) + 8 + 8 + 1
	buf := make([]byte, 0, size)
	buf = appendComponent(buf, k.Row)
	buf = appendComponent(buf, k.Family)
	buf = appendComponent(buf, k.Qualifier)
	buf = appendComponent(buf, k.Visibility)
	buf = binary.BigEndian.AppendUint64(buf, ^(uint64(k.Timestamp) ^ signBit))
	if k.Deleted {
		buf = append(buf, 0x00)
	} else {
		buf = append(buf, 0x01)
	}
	return buf
}

// DecodeKey reverses EncodeKey.
func DecodeKey(b []byte) (Key, error) {
	var (
		k   Key
		err error
	)
	parts := make([][]byte, 4)
	for i := range parts {
		parts[i], b, err = readComponent(b)
		if err != nil {
			return Key{}, err
		}
	}
	if len(b) != 9 {
		return Key{}, fmt.Errorf("%w: expected 9 trailing bytes, got %d", ErrCorruptKey, len(b))
	}
	k.Row, k.Family, k.Qualifier, k.Visibility = parts[0], parts[1], parts[2], parts[3]
	k.Timestamp = int64(^binary.BigEndian.Uint64(b[:8]) ^ signBit)
	switch b[8] {
	case 0x00:
		k.Deleted = true
	case 0x01:
	default:
		return Key{}, fmt.Errorf("%w: bad deletion flag %#x", ErrCorruptKey, b[8])
	}
	return k, nil
}

func appendComponent(buf, part []byte) []byte {
	for _, c := range part {
		if c == escapeByte {
			buf = append(buf, escapeByte, escapedZero)
			continue
		}
		buf = append(buf, c)
	}
	return append(buf, escapeByte, terminatorByte)
}

func readComponent(b []byte) ([]byte, []byte, error) {
	var out []byte
	for i := 0; i < len(b); i++ {
		if b[i] != escapeByte {
			out = append(out, b[i])
			continue
		}
		if i+1 >= len(b) {
			return nil, nil, fmt.Errorf("%w: dangling escape", ErrCorruptKey)
		}
		switch b[i+1] {
		case escapedZero:
			out = append(out, escapeByte)
			i++
		case terminatorByte:
			return out, b[i+2:], nil
		default:
			return nil, nil, fmt.Errorf("%w: bad escape %#x", ErrCorruptKey, b[i+1])
		}
	}
	return nil, nil, fmt.Errorf("%w: unterminated component", ErrCorruptKey)
}
