package cvar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Cost bounds for auth-cost (bcrypt work factor).
const (
	MinCost = 5
	MaxCost = 31
)

// Sentinel is the stored auth-pswd value marking that no password has
// been established yet.
const Sentinel = "?"

// pathRunes is the set of codepoints a path value may contain: printable
// ASCII plus the printable BMP planes, excluding controls, the surrogate
// block, and everything above U+FFFF.
var pathRunes = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0020, Hi: 0x007e, Stride: 1},
		{Lo: 0x00a0, Hi: 0xd7ff, Stride: 1},
		{Lo: 0xe000, Hi: 0xffff, Stride: 1},
	},
	LatinOffset: 1,
}

// Validate checks value against the codec for key and returns the
// canonical stored form. Unknown keys are rejected outright.
func Validate(key Key, value string) (string, error) {
	d, ok := table[key]
	if !ok {
		return "", fmt.Errorf("unknown key %q", key)
	}

	switch d.Codec {
	case CodecWord:
		return validateWord(key, value)
	case CodecDecimal:
		return validateDecimal(key, value)
	case CodecCost:
		return validateCost(key, value)
	case CodecPath:
		return validatePath(key, value)
	case CodecModHex:
		return validateModHex(key, value)
	case CodecEpochHex:
		return validateEpochHex(key, value)
	case CodecSecret, CodecSentinel:
		// Values for these keys are generated, never caller-supplied.
		return "", fmt.Errorf("key %q is not writable with a caller-supplied value", key)
	default:
		return "", fmt.Errorf("key %q has no codec", key)
	}
}

func validateWord(key Key, value string) (string, error) {
	if len(value) < 1 || len(value) > 24 {
		return "", fmt.Errorf("%s: length %d out of range [1, 24]", key, len(value))
	}
	for _, c := range []byte(value) {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return "", fmt.Errorf("%s: character %q not alphanumeric or underscore", key, c)
		}
	}
	return value, nil
}

func validateDecimal(key Key, value string) (string, error) {
	// 0*[1-9][0-9]{0,9}: optional redundant leading zeros, then a
	// nonzero digit and up to nine more. Zero itself is not a value.
	trimmed := strings.TrimLeft(value, "0")
	if trimmed == "" {
		return "", fmt.Errorf("%s: %q is not a positive decimal integer", key, value)
	}
	if len(trimmed) > 10 {
		return "", fmt.Errorf("%s: %q exceeds 10 significant digits", key, value)
	}
	if trimmed[0] < '1' || trimmed[0] > '9' {
		return "", fmt.Errorf("%s: %q is not a positive decimal integer", key, value)
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] < '0' || trimmed[i] > '9' {
			return "", fmt.Errorf("%s: %q is not a positive decimal integer", key, value)
		}
	}
	return trimmed, nil
}

func validateCost(key Key, value string) (string, error) {
	if len(value) < 1 || len(value) > 2 {
		return "", fmt.Errorf("%s: %q is not a 1-2 digit integer", key, value)
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return "", fmt.Errorf("%s: %q is not a 1-2 digit integer", key, value)
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", fmt.Errorf("%s: %q is not a 1-2 digit integer", key, value)
	}
	if n < MinCost || n > MaxCost {
		return "", fmt.Errorf("%s: %d out of range [%d, %d]", key, n, MinCost, MaxCost)
	}
	return strconv.Itoa(n), nil
}

func validatePath(key Key, value string) (string, error) {
	if !strings.HasPrefix(value, "/") {
		return "", fmt.Errorf("%s: %q does not start with /", key, value)
	}
	for i, r := range value {
		if r == utf8.RuneError {
			// Range over string yields RuneError for malformed bytes;
			// a literal U+FFFD is inside pathRunes, so disambiguate.
			if _, size := utf8.DecodeRuneInString(value[i:]); size <= 1 {
				return "", fmt.Errorf("%s: invalid UTF-8 at byte %d", key, i)
			}
		}
		if !unicode.Is(pathRunes, r) {
			return "", fmt.Errorf("%s: codepoint %U not allowed in path", key, r)
		}
	}
	return norm.NFC.String(value), nil
}

func validateModHex(key Key, value string) (string, error) {
	n, err := ParseModHex(value)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return FormatModHex(n), nil
}

func validateEpochHex(key Key, value string) (string, error) {
	if value == "" || len(value) > 16 {
		return "", fmt.Errorf("%s: %q is not a hex offset", key, value)
	}
	n, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return "", fmt.Errorf("%s: %q is not a hex offset", key, value)
	}
	return FormatEpochHex(int64(n)), nil
}

// ParseModHex parses a 1-8 digit unsigned hex counter value.
func ParseModHex(s string) (uint32, error) {
	if s == "" || len(s) > 8 {
		return 0, fmt.Errorf("%q is not 1-8 hex digits", s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not 1-8 hex digits", s)
	}
	return uint32(n), nil
}

// FormatModHex renders a counter value in canonical stored form:
// lowercase hex, no padding.
func FormatModHex(n uint32) string {
	return strconv.FormatUint(uint64(n), 16)
}

// FormatEpochHex renders a second offset in canonical stored form. The
// signed value is stored through its unsigned textual representation;
// encodable offsets are always non-negative.
func FormatEpochHex(offset int64) string {
	return strconv.FormatUint(uint64(offset), 16)
}

// ParseEpochHex parses a stored epoch value back to its second offset.
func ParseEpochHex(s string) (int64, error) {
	if s == "" || len(s) > 16 {
		return 0, fmt.Errorf("%q is not a hex offset", s)
	}
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a hex offset", s)
	}
	return int64(n), nil
}
