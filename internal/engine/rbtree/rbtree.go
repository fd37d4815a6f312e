// Package rbtree implements the ordered-tree key/value engine: a red-black
// tree with a single shared sentinel leaf, grounded on original_source's
// kvs_rbtree.h (the node/sentinel layout) — the rotation and fixup bodies
// were not present in the retrieved source and are implemented here from
// the specification's own case analysis, in the classic CLRS shape.
package rbtree

import "kvstore-reactor/internal/kverr"

type color bool

const (
	black color = false
	red   color = true
)

type node struct {
	key, value  string
	left, right *node
	parent      *node
	color       color
}

// Tree is the sentinel-leaf red-black tree. Every absent child and the
// parent of root point at the same shared black nil node, so comparisons
// like nil.color never need a nil check. The zero value is not usable;
// call Create before any other method.
type Tree struct {
	root  *node
	nilN  *node
	count int
}

// New returns an uncreated tree.
func New() *Tree {
	return &Tree{}
}

// Create allocates the sentinel and sets the root to it. BadParam if the
// tree is already created.
func (t *Tree) Create() error {
	if t.nilN != nil {
		return kverr.ErrBadParam
	}
	t.nilN = &node{color: black}
	t.root = t.nilN
	t.count = 0
	return nil
}

// Destroy tears the tree down. A post-order walk is unnecessary for Go's
// collector, but we still perform it to preserve the teardown-order
// invariant spec.md §8 exercises (children freed before their parent);
// walking also resets every field so nothing stale survives a fd-reuse
// style re-Create.
func (t *Tree) Destroy() error {
	t.postOrderVisit(t.root, func(n *node) {
		n.key, n.value = "", ""
		n.left, n.right, n.parent = nil, nil, nil
	})
	t.root = nil
	t.nilN = nil
	t.count = 0
	return nil
}

func (t *Tree) postOrderVisit(n *node, visit func(*node)) {
	if n == nil || n == t.nilN {
		return
	}
	t.postOrderVisit(n.left, visit)
	t.postOrderVisit(n.right, visit)
	visit(n)
}

func (t *Tree) leftRotate(x *node) {
	y := x.right
	x.right = y.left
	if y.left != t.nilN {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilN {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *Tree) rightRotate(x *node) {
	y := x.left
	x.left = y.right
	if y.right != t.nilN {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nilN {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *Tree) search(key string) *node {
	n := t.root
	for n != t.nilN {
		switch {
		case key == n.key:
			return n
		case key < n.key:
			n = n.left
		default:
			n = n.right
		}
	}
	return t.nilN
}

// Get returns the value for key, or NotFound.
func (t *Tree) Get(key string) (string, error) {
	if t.nilN == nil {
		return "", kverr.ErrInternal
	}
	n := t.search(key)
	if n == t.nilN {
		return "", kverr.ErrNotFound
	}
	return n.value, nil
}

// Exist reports whether key is present.
func (t *Tree) Exist(key string) error {
	_, err := t.Get(key)
	return err
}

// Mod replaces the value for an existing key. NotFound if absent.
func (t *Tree) Mod(key, value string) error {
	if t.nilN == nil {
		return kverr.ErrInternal
	}
	n := t.search(key)
	if n == t.nilN {
		return kverr.ErrNotFound
	}
	n.value = value
	return nil
}

// Set inserts a new key. AlreadyExists if present.
func (t *Tree) Set(key, value string) error {
	if t.nilN == nil {
		return kverr.ErrInternal
	}
	y := t.nilN
	x := t.root
	for x != t.nilN {
		y = x
		switch {
		case key == x.key:
			return kverr.ErrAlreadyExists
		case key < x.key:
			x = x.left
		default:
			x = x.right
		}
	}
	z := &node{key: key, value: value, left: t.nilN, right: t.nilN, parent: y, color: red}
	switch {
	case y == t.nilN:
		t.root = z
	case key < y.key:
		y.left = z
	default:
		y.right = z
	}
	t.insertFixup(z)
	t.count++
	return nil
}

func (t *Tree) insertFixup(z *node) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
				continue
			}
			if z == z.parent.right {
				z = z.parent
				t.leftRotate(z)
			}
			z.parent.color = black
			z.parent.parent.color = red
			t.rightRotate(z.parent.parent)
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
				continue
			}
			if z == z.parent.left {
				z = z.parent
				t.rightRotate(z)
			}
			z.parent.color = black
			z.parent.parent.color = red
			t.leftRotate(z.parent.parent)
		}
	}
	t.root.color = black
}

func (t *Tree) transplant(u, v *node) {
	switch {
	case u.parent == t.nilN:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *Tree) minimum(n *node) *node {
	for n.left != t.nilN {
		n = n.left
	}
	return n
}

// Del removes a key. NotFound if absent.
func (t *Tree) Del(key string) error {
	if t.nilN == nil {
		return kverr.ErrInternal
	}
	z := t.search(key)
	if z == t.nilN {
		return kverr.ErrNotFound
	}
	y := z
	yOriginalColor := y.color
	var x *node
	switch {
	case z.left == t.nilN:
		x = z.right
		t.transplant(z, z.right)
	case z.right == t.nilN:
		x = z.left
		t.transplant(z, z.left)
	default:
		y = t.minimum(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}
	if yOriginalColor == black {
		t.deleteFixup(x)
	}
	t.count--
	return nil
}

func (t *Tree) deleteFixup(x *node) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
				continue
			}
			if w.right.color == black {
				w.left.color = black
				w.color = red
				t.rightRotate(w)
				w = x.parent.right
			}
			w.color = x.parent.color
			x.parent.color = black
			w.right.color = black
			t.leftRotate(x.parent)
			x = t.root
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
				continue
			}
			if w.left.color == black {
				w.right.color = black
				w.color = red
				t.leftRotate(w)
				w = x.parent.left
			}
			w.color = x.parent.color
			x.parent.color = black
			w.left.color = black
			t.rightRotate(x.parent)
			x = t.root
		}
	}
	x.color = black
}

// Count returns the number of live keys.
func (t *Tree) Count() int { return t.count }

// Keys returns every key in ascending lexicographic order, for testing.
func (t *Tree) Keys() []string {
	var keys []string
	var walk func(*node)
	walk = func(n *node) {
		if n == nil || n == t.nilN {
			return
		}
		walk(n.left)
		keys = append(keys, n.key)
		walk(n.right)
	}
	walk(t.root)
	return keys
}

// BlackHeight returns the number of black nodes on every root-to-leaf path,
// or -1 if that count is not uniform or a red node has a red child — used by
// tests to pin the black-height and no-red-red invariants.
func (t *Tree) BlackHeight() int {
	height, ok := t.blackHeight(t.root)
	if !ok {
		return -1
	}
	return height
}

func (t *Tree) blackHeight(n *node) (int, bool) {
	if n == t.nilN {
		return 1, true
	}
	if n.color == red {
		if n.left.color == red || n.right.color == red {
			return 0, false
		}
	}
	lh, ok := t.blackHeight(n.left)
	if !ok {
		return 0, false
	}
	rh, ok := t.blackHeight(n.right)
	if !ok || lh != rh {
		return 0, false
	}
	add := 0
	if n.color == black {
		add = 1
	}
	return lh + add, true
}

// RootIsBlack reports whether the root satisfies the red-black root
// invariant (trivially true for an empty tree).
func (t *Tree) RootIsBlack() bool {
	return t.root == t.nilN || t.root.color == black
}
