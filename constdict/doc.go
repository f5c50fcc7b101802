/*
Package constdict provides ConstDict, an immutable, sorted, refcounted
mapping built for cheap derived copies.  A ConstDict is constructed
once from key/value pairs and never changes; new dicts are derived
from old ones by overlaying entries (Merge) or removing keys
(Subtract), and every subtree the derivation does not touch is shared
with the original rather than copied.

Uses

- Snapshot-style state that many readers hold while new versions are
derived

- Cheap copy-on-write alternative to copying a Go builtin map before
every change

- A canonical, order-stable wire form for map-shaped data, with
corruption detection on decode

Elements

Keys and values are element instances described by types.Type
collaborators, so one dict implementation serves every
parameterization, including dicts nested as values of other dicts.
Keys are held in strictly ascending element order, which makes lookup
a binary search and gives iteration, comparison, hashing and the wire
encoding one deterministic order.

Storage and sharing

Entries live in refcounted layouts: a leaf holds entries inline, a
tree holds shared subtrees.  Share takes a reference, Release drops
one, and the final Release frees the payload.  Merge and Subtract
share every untouched subtree, so deriving a dict that differs in k
entries from a large tree-formed one allocates proportionally to k and
the tree depth, not to the total size.  Dicts may be shared between
goroutines freely; all mutation of shared state is confined to the
reference count and the lazily computed hash, both atomic.

Wire form

The encoding is a field-tagged compound: the entry count, then each
entry's key and value in key order.  Field meaning is implied by
position.  Decoding rejects input whose leading field is not the
count (ErrCorruptCount) or whose field count disagrees with the
declared entry count (ErrFieldCountMismatch), and never yields a
partially decoded dict.
*/
package constdict
