// Package codec implements the byte layout of a serialized FMU state.
//
// Each signal is stored as the IEEE-754 binary64 bit pattern of its value,
// most significant byte first. Value i occupies bytes [i*Width, (i+1)*Width).
// The layout carries no header: its length alone identifies the signal
// count, and it is stable for a given model.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Width is the encoded size of one real signal.
const Width = 8

var ErrSize = errors.New("codec: buffer size does not match signal count")

// Size returns the encoded length of n signals.
func Size(n int) int { return n * Width }

// Count returns how many signals b holds, or an error if b is not a whole
// number of signals.
func Count(b []byte) (int, error) {
	if len(b)%Width != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrSize, len(b), Width)
	}
	return len(b) / Width, nil
}

// Encode writes values into dst, which must be exactly Size(len(values)).
func Encode(dst []byte, values []float64) error {
	if len(dst) != Size(len(values)) {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrSize, len(dst), Size(len(values)))
	}
	for i, v := range values {
		binary.BigEndian.PutUint64(dst[i*Width:], math.Float64bits(v))
	}
	return nil
}

// Append encodes values onto the end of dst.
func Append(dst []byte, values []float64) []byte {
	for _, v := range values {
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(v))
	}
	return dst
}

// Decode reconstructs values from src, which must be exactly
// Size(len(dst)). Bit patterns are copied verbatim, so NaN payloads and
// signed zeros survive.
func Decode(dst []float64, src []byte) error {
	if len(src) != Size(len(dst)) {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrSize, len(src), Size(len(dst)))
	}
	for i := range dst {
		dst[i] = math.Float64frombits(binary.BigEndian.Uint64(src[i*Width:]))
	}
	return nil
}
