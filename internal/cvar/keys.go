// Package cvar defines the closed set of Quill configuration variables
// and the per-key codecs that validate and canonicalize their values.
//
// The key set is fixed at compile time. Every caller-supplied key is
// checked against the table; unknown keys are a hard failure everywhere,
// never silently ignored.
package cvar

import "sort"

// Key names one configuration variable.
type Key string

// The full key set. epoch and lastmod are readable but owned by the
// initializer and the store's counter machinery; auth-secret and
// auth-pswd are privileged and never leave the database through this
// tool.
const (
	KeyEpoch    Key = "epoch"
	KeyLastmod  Key = "lastmod"
	KeySecret   Key = "auth-secret"
	KeyPassword Key = "auth-pswd"

	KeyAuthSuffix Key = "auth-suffix"
	KeyAuthRealm  Key = "auth-realm"
	KeyAuthLimit  Key = "auth-limit"
	KeyPageLimit  Key = "page-limit"
	KeyAuthCost   Key = "auth-cost"

	KeyPathRoot    Key = "path-root"
	KeyPathAdmin   Key = "path-admin"
	KeyPathLogin   Key = "path-login"
	KeyPathLogout  Key = "path-logout"
	KeyPathPosts   Key = "path-posts"
	KeyPathArchive Key = "path-archive"
	KeyPathMedia   Key = "path-media"
	KeyPathUpload  Key = "path-upload"
	KeyPathFeed    Key = "path-feed"
	KeyPathSearch  Key = "path-search"
)

// Codec selects the validation and canonicalization rule for a key.
type Codec int

const (
	// CodecWord: 1-24 characters, alphanumeric or underscore.
	CodecWord Codec = iota
	// CodecDecimal: decimal integer matching 0*[1-9][0-9]{0,9},
	// canonicalized with redundant leading zeros stripped.
	CodecDecimal
	// CodecCost: 1-2 decimal digits, value in [5, 31].
	CodecCost
	// CodecPath: UTF-8 path starting with '/', printable BMP codepoints
	// only, stored NFC-normalized.
	CodecPath
	// CodecEpochHex: lowercase hex of the second offset produced by the
	// calendar converter. Never written by callers.
	CodecEpochHex
	// CodecModHex: lowercase hex, at most 8 digits (unsigned 32-bit).
	// Written by the initializer, the bump verb, and the store's own
	// commit-time counter bump.
	CodecModHex
	// CodecSecret: 12 random bytes, standard base64, no line breaks.
	CodecSecret
	// CodecSentinel: the literal "?" marking an unset password.
	CodecSentinel
)

// Descriptor records what a key permits and how its values are encoded.
type Descriptor struct {
	// Queryable keys may be read back through the get verb.
	Queryable bool
	// Updatable keys may be written through the init/set mapping.
	Updatable bool
	Codec     Codec
}

var table = map[Key]Descriptor{
	KeyEpoch:    {Queryable: true, Codec: CodecEpochHex},
	KeyLastmod:  {Queryable: true, Codec: CodecModHex},
	KeySecret:   {Codec: CodecSecret},
	KeyPassword: {Codec: CodecSentinel},

	KeyAuthSuffix: {Queryable: true, Updatable: true, Codec: CodecWord},
	KeyAuthRealm:  {Queryable: true, Updatable: true, Codec: CodecWord},
	KeyAuthLimit:  {Queryable: true, Updatable: true, Codec: CodecDecimal},
	KeyPageLimit:  {Queryable: true, Updatable: true, Codec: CodecDecimal},
	KeyAuthCost:   {Queryable: true, Updatable: true, Codec: CodecCost},

	KeyPathRoot:    {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathAdmin:   {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathLogin:   {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathLogout:  {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathPosts:   {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathArchive: {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathMedia:   {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathUpload:  {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathFeed:    {Queryable: true, Updatable: true, Codec: CodecPath},
	KeyPathSearch:  {Queryable: true, Updatable: true, Codec: CodecPath},
}

// Lookup returns the descriptor for key and whether key is recognized.
func Lookup(key Key) (Descriptor, bool) {
	d, ok := table[key]
	return d, ok
}

// IsQueryable reports whether key is recognized and readable through the
// get verb. Privileged keys (auth-secret, auth-pswd) are not.
func IsQueryable(key Key) bool {
	d, ok := table[key]
	return ok && d.Queryable
}

// IsUpdatable reports whether key is recognized and writable through the
// init/set mapping.
func IsUpdatable(key Key) bool {
	d, ok := table[key]
	return ok && d.Updatable
}

// Keys returns every recognized key in sorted order.
func Keys() []Key {
	keys := make([]Key, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// UpdatableKeys returns the keys writable through the mapping path, in
// sorted order.
func UpdatableKeys() []Key {
	var keys []Key
	for k, d := range table {
		if d.Updatable {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
