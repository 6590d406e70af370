// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pose

// Node is a pose limit tree. The poses it admits are those satisfying its
// own limit and, when it has children, at least one child.
//
// A nil *Node is the invalid tree: it admits no pose at all and signals a
// pose conflict.
type Node struct {
	limit    Limit
	children []*Node
}

// Unlimited returns a tree that admits every pose.
func Unlimited() *Node {
	return &Node{limit: Limit{}}
}

// NewNode builds a tree from a limit and alternative children.
// Children are restricted by the limit; children that become empty are
// discarded. Returns nil when children were given and none survive.
func NewNode(limit Limit, children ...*Node) *Node {
	if limit == nil {
		limit = Limit{}
	}
	if len(children) == 0 {
		return &Node{limit: limit}
	}
	return (&Node{limit: limit}).withChildren(children)
}

// Limit returns the limit that applies to every branch.
func (n *Node) Limit() Limit {
	if n == nil {
		return nil
	}
	return n.limit
}

// Children returns the alternative branches.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return n.children
}

// Valid reports whether the tree admits at least one pose.
func (n *Node) Valid() bool {
	return n != nil
}

// Intersection returns a tree admitting exactly the poses both trees admit.
// Returns nil when the two are contradictory.
func (n *Node) Intersection(o *Node) *Node {
	if n == nil || o == nil {
		return nil
	}
	limit, ok := n.limit.Intersect(o.limit)
	if !ok {
		return nil
	}
	base := &Node{limit: limit}

	switch {
	case len(n.children) > 0 && len(o.children) > 0:
		combined := make([]*Node, 0, len(n.children)*len(o.children))
		for _, a := range n.children {
			for _, b := range o.children {
				if c := a.Intersection(b); c != nil {
					combined = append(combined, c)
				}
			}
		}
		if len(combined) == 0 {
			return nil
		}
		return base.withChildren(combined)
	case len(n.children) > 0:
		return base.withChildren(n.children)
	case len(o.children) > 0:
		return base.withChildren(o.children)
	default:
		return base
	}
}

// withChildren restricts each child by the node's limit, drops children
// that become empty and collapses a single surviving child into the node.
func (n *Node) withChildren(children []*Node) *Node {
	parent := &Node{limit: n.limit}
	surviving := make([]*Node, 0, len(children))
	for _, c := range children {
		if r := c.extend(parent); r != nil {
			surviving = append(surviving, r)
		}
	}
	switch len(surviving) {
	case 0:
		return nil
	case 1:
		return surviving[0]
	default:
		return &Node{limit: n.limit, children: surviving}
	}
}

// extend merges the parent's limit into the child as its defaults.
func (n *Node) extend(parent *Node) *Node {
	return n.Intersection(parent)
}

// Satisfied reports whether the pose is admitted by the tree.
func (n *Node) Satisfied(p Pose) bool {
	if n == nil || !n.limit.Satisfied(p) {
		return false
	}
	if len(n.children) == 0 {
		return true
	}
	for _, c := range n.children {
		if c.Satisfied(p) {
			return true
		}
	}
	return false
}

// Force returns the admitted pose closest to p, choosing the branch that
// needs the least adjustment, and whether any adjustment was made.
// An invalid tree returns p unchanged.
func (n *Node) Force(p Pose) (Pose, bool) {
	if n == nil {
		return p.Clone(), false
	}
	var best Pose
	bestCost := -1.0
	for _, leaf := range n.leaves() {
		forced, cost := leaf.Force(p)
		if bestCost < 0 || cost < bestCost {
			best, bestCost = forced, cost
		}
	}
	return best, !best.Equal(p)
}

// leaves returns the effective limit of every branch.
func (n *Node) leaves() []Limit {
	if len(n.children) == 0 {
		return []Limit{n.limit}
	}
	var result []Limit
	for _, c := range n.children {
		for _, leaf := range c.leaves() {
			if merged, ok := n.limit.Intersect(leaf); ok {
				result = append(result, merged)
			}
		}
	}
	return result
}

// Equal reports whether two trees are structurally identical.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if !n.limit.Equal(o.limit) || len(n.children) != len(o.children) {
		return false
	}
	for i := range n.children {
		if !n.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}
