package constdict

// cursor walks a layout's entries in key order without materializing
// them. Yielded pairs borrow the layout's elements.
type cursor struct {
	stack []cursorFrame
}

// cursorFrame records the walk position within one layout: for a tree,
// the index of the open child; for a leaf, the index of the next pair.
type cursorFrame struct {
	l *layout
	i int
}

func newCursor(l *layout) *cursor {
	c := &cursor{stack: make([]cursorFrame, 0, 8)}
	c.descend(l)
	return c
}

func (c *cursor) descend(l *layout) {
	for l.tree {
		c.stack = append(c.stack, cursorFrame{l, 0})
		l = l.children[0].sub
	}
	c.stack = append(c.stack, cursorFrame{l, 0})
}

func (c *cursor) next() (pair, bool) {
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if !top.l.tree {
			if top.i < len(top.l.pairs) {
				p := top.l.pairs[top.i]
				top.i++
				return p, true
			}
			c.stack = c.stack[:len(c.stack)-1]
			continue
		}
		top.i++
		if top.i < len(top.l.children) {
			c.descend(top.l.children[top.i].sub)
			continue
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	return pair{}, false
}
