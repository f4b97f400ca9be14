// Package idgen issues identifiers for runtime entities. Integer sequences
// back the fiber, channel and process registries; run identifiers are opaque
// UUID strings. It lives under `internal` because callers should treat the
// exact numbering scheme as an implementation detail.
package idgen
