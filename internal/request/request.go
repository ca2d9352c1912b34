// Package request parses and validates the inputs to each verb before
// any transaction opens: the positional object parameter and, for the
// mapping verbs, the JSON object read from standard input.
//
// Validation is all-or-nothing. The first violation aborts the whole
// request; nothing past it is inspected and nothing is written.
package request

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/quillcms/quillconf/internal/calendar"
	"github.com/quillcms/quillconf/internal/cvar"
)

// dateTimeRE matches the initialize object parameter. Shape only;
// calendar validation happens after.
var dateTimeRE = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})$`)

// ParseDateTime parses the yyyy-mm-ddThh:mm:ss literal accepted by the
// init verb and returns the validated wall-clock reading.
func ParseDateTime(s string) (calendar.DateTime, error) {
	m := dateTimeRE.FindStringSubmatch(s)
	if m == nil {
		return calendar.DateTime{}, fmt.Errorf("%q is not a yyyy-mm-ddThh:mm:ss datetime", s)
	}

	fields := make([]int, 6)
	for i := range fields {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return calendar.DateTime{}, fmt.Errorf("%q is not a yyyy-mm-ddThh:mm:ss datetime", s)
		}
		fields[i] = n
	}

	dt := calendar.DateTime{
		Year:   fields[0],
		Month:  fields[1],
		Day:    fields[2],
		Hour:   fields[3],
		Minute: fields[4],
		Second: fields[5],
	}
	if err := dt.Validate(); err != nil {
		return calendar.DateTime{}, fmt.Errorf("datetime %q: %w", s, err)
	}
	return dt, nil
}

// ParseKey validates the get verb's object parameter: a schema-known,
// queryable key. Privileged keys fail here regardless of store state.
func ParseKey(name string) (cvar.Key, error) {
	key := cvar.Key(name)
	d, ok := cvar.Lookup(key)
	if !ok {
		return "", fmt.Errorf("unknown key %q", name)
	}
	if !d.Queryable {
		return "", fmt.Errorf("key %q is not queryable", name)
	}
	return key, nil
}

// ParseFloor validates the bump verb's object parameter: 1-8 hex digits
// naming the new counter floor.
func ParseFloor(s string) (uint32, error) {
	n, err := cvar.ParseModHex(s)
	if err != nil {
		return 0, fmt.Errorf("floor value: %w", err)
	}
	return n, nil
}

// DecodeMapping reads one JSON object of scalar values from r. The
// external decoding step is expected to deliver string keys and scalar
// values; numbers are accepted as their literal text, everything
// structured (and bool/null, which no codec can take) is rejected.
func DecodeMapping(r io.Reader) (map[string]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode input mapping: %w", err)
	}
	// Exactly one JSON value on input.
	if dec.More() {
		return nil, fmt.Errorf("decode input mapping: trailing data after object")
	}

	m := make(map[string]string, len(raw))
	for _, k := range sortedKeys(raw) {
		switch v := raw[k].(type) {
		case string:
			m[k] = v
		case json.Number:
			m[k] = v.String()
		default:
			return nil, fmt.Errorf("key %q: value is not a scalar", k)
		}
	}
	return m, nil
}

// ValidateMapping checks every pair against the schema and codecs and
// returns the canonicalized values. Keys are walked in sorted order so
// the first reported violation is deterministic.
//
// With complete=true (initialize) the mapping must contain exactly the
// updatable key set: a missing key is as fatal as an unknown one. With
// complete=false (set) any subset of updatable keys is accepted.
func ValidateMapping(m map[string]string, complete bool) (map[cvar.Key]string, error) {
	out := make(map[cvar.Key]string, len(m))

	for _, name := range sortedKeys(m) {
		key := cvar.Key(name)
		d, ok := cvar.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("unknown key %q", name)
		}
		if !d.Updatable {
			return nil, fmt.Errorf("key %q is not updatable", name)
		}
		value, err := cvar.Validate(key, m[name])
		if err != nil {
			return nil, err
		}
		out[key] = value
	}

	if complete {
		for _, key := range cvar.UpdatableKeys() {
			if _, ok := out[key]; !ok {
				return nil, fmt.Errorf("missing required key %q", key)
			}
		}
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
