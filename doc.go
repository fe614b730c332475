/*
Package hamt implements persistent (immutable) hash array mapped tries,
backing an unordered Set and an associative Map.

Immutable data structures in many cases offer benefits over mutable data
structures in terms of concurrent access and functional reasoning. *Persistent*
immutable data-structures offer structural sharing, which means that if two
data structures are mostly copies of each other, most of the memory they take
up will be shared between them. This implies that making copies of an immutable
data structure is relatively cheap in terms of space- and time-complexity.

Sets and maps in this package share one trie engine. A trie node branches up
to 32 ways on 5-bit chunks of an element's hash; elements whose full hashes
collide end up in unordered collision buckets once the hash bits are used up.
Modifications return a new collection and leave the receiver untouched,
reusing every subtree the modification did not reach.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023 Norbert Pillmayer <norbert@pillmayer.com>
*/
package hamt

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'persistent.hamt'.
func tracer() tracing.Trace {
	return tracing.Select("persistent.hamt")
}

// audit turns on full re-verification of the structural invariant for every
// root produced by a collection operation. This is a development-time switch;
// the tests flip it on.
var audit = false
