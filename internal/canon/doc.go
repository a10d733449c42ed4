// Package canon produces canonical JSON and content-addressed hashes
// for cache keying.
//
// Two requests that are semantically identical must collide on the same
// cache key regardless of how their parameters were assembled, so the
// serialization is canonical in the RFC 8785 sense: object keys sorted
// by UTF-16 code units, strings NFC-normalized, no HTML escaping, no
// floats, no nulls.
package canon
