// Package codec converts event parameters into the 32-bit values the host
// expects: packed BCD for radio frequencies and transponder codes, and a
// bit-identical int32 reinterpretation for everything else.
package codec

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidNumber = errors.New("codec: not a decimal number")
	ErrOutOfRange    = errors.New("codec: value out of range")
)

// MaxBCDValue is the largest decimal that fits in 8 packed nibbles.
const MaxBCDValue = 99999999

// plain decimal notation only: no exponent, fraction or base prefix
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// DecToBCD packs each decimal digit of num into one nibble, most significant
// digit in the highest nibble.
func DecToBCD(num uint32) uint32 {
	return horner(num, 10, 0x10)
}

// BCDToDec is the inverse of DecToBCD.
func BCDToDec(num uint32) uint32 {
	return horner(num, 0x10, 10)
}

func horner(num, divider, factor uint32) uint32 {
	quotient := num / divider
	remainder := num % divider
	if quotient == 0 && remainder == 0 {
		return 0
	}
	return horner(quotient, divider, factor)*factor + remainder
}

// EncodeBCDFrequency encodes a frequency such as "118.00" or "174.1" as the
// BCD of the value in hundredths (11800, 17410).
func EncodeBCDFrequency(data string) (uint32, error) {
	return encodeBCD(data, 100)
}

// EncodeBCDInteger encodes a whole number such as a transponder code ("7000")
// as BCD without scaling.
func EncodeBCDInteger(data string) (uint32, error) {
	return encodeBCD(data, 1)
}

func encodeBCD(data string, scale int64) (uint32, error) {
	value, err := parseScaled(data, scale)
	if err != nil {
		return 0, err
	}
	if value > MaxBCDValue {
		return 0, fmt.Errorf("%w: %d exceeds %d BCD digits", ErrOutOfRange, value, 8)
	}
	return DecToBCD(value), nil
}

// parseScaled parses data as an exact decimal, multiplies it by scale and
// truncates toward zero.
func parseScaled(data string, scale int64) (uint32, error) {
	s := normalize(data)
	if !decimalPattern.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, data)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, data)
	}
	r.Mul(r, new(big.Rat).SetInt64(scale))

	truncated := new(big.Int).Quo(r.Num(), r.Denom())
	if truncated.Sign() < 0 || !truncated.IsUint64() || truncated.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, data)
	}
	return uint32(truncated.Uint64()), nil
}

// EncodeRaw parses data as a signed 32-bit integer and returns the same four
// bytes read as unsigned, so "-1" becomes 0xFFFFFFFF.
func EncodeRaw(data string) (uint32, error) {
	s := normalize(data)
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrOutOfRange, data)
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, data)
	}
	return uint32(int32(v)), nil
}

// normalize trims whitespace and maps blank input to "0".
func normalize(data string) string {
	s := strings.TrimSpace(data)
	if s == "" {
		return "0"
	}
	return s
}

// IsAbort reports whether err means the event parameter could not be encoded.
func IsAbort(err error) bool {
	return errors.Is(err, ErrInvalidNumber) || errors.Is(err, ErrOutOfRange)
}
