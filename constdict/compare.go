package constdict

import (
	"fmt"
)

// Op selects a comparison operator for Compare.
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	LtE
	Gt
	GtE
)

func (op Op) String() string {
	switch op {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case LtE:
		return "<="
	case Gt:
		return ">"
	case GtE:
		return ">="
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Compare evaluates d op other. Entries are compared in key order,
// each key before its value; the first unequal element decides. When
// one dict's entries are a strict prefix of the other's, the shorter
// dict orders first.
//
// An element comparison can be undefined, such as ordering against a
// NaN value. The error propagates unless suppressFailures is set,
// which instead resolves Eq to false, Ne to true and the four
// orderings to false.
func (d Dict) Compare(other Dict, op Op, suppressFailures bool) (bool, error) {
	if d.typ != other.typ {
		return false, fmt.Errorf("mismatched dict types %s and %s", d.typ.name, other.typ.name)
	}
	if (op == Eq || op == Ne) && d.root.count != other.root.count {
		return op == Ne, nil
	}
	c, err := orderLayouts(d.typ, d.root, other.root)
	if err != nil {
		if suppressFailures {
			return op == Ne, nil
		}
		return false, err
	}
	switch op {
	case Eq:
		return c == 0, nil
	case Ne:
		return c != 0, nil
	case Lt:
		return c < 0, nil
	case LtE:
		return c <= 0, nil
	case Gt:
		return c > 0, nil
	case GtE:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown comparison op %d", int(op))
}

// orderLayouts walks both layouts' entries in lockstep and returns the
// lexicographic order of their flattened forms.
func orderLayouts(t *DictType, a, b *layout) (int, error) {
	if a == b {
		return 0, nil
	}
	ca, cb := newCursor(a), newCursor(b)
	for {
		pa, okA := ca.next()
		pb, okB := cb.next()
		switch {
		case !okA && !okB:
			return 0, nil
		case !okA:
			return -1, nil
		case !okB:
			return 1, nil
		}
		c, err := t.key.Order(pa.key, pb.key)
		if err != nil {
			return 0, fmt.Errorf("key order: %w", err)
		}
		if c != 0 {
			return c, nil
		}
		c, err = t.value.Order(pa.value, pb.value)
		if err != nil {
			return 0, fmt.Errorf("value order: %w", err)
		}
		if c != 0 {
			return c, nil
		}
	}
}
