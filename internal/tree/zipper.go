package tree

type frame struct {
	parent *Node
	index  int
}

// Zipper is a cursor over a tree. Descending detaches the child from its
// parent and records the (parent, index) pair on an explicit stack; going
// up reattaches it.
type Zipper struct {
	Focus *Node
	path  []frame
}

func NewZipper(root *Node) *Zipper { return &Zipper{Focus: root} }

// Depth is the number of ancestors of the focus.
func (z *Zipper) Depth() int { return len(z.path) }

func (z *Zipper) HasParent() bool { return len(z.path) > 0 }

// Index returns the position of the focus in its parent, or -1 at the root.
func (z *Zipper) Index() int {
	if len(z.path) == 0 {
		return -1
	}
	return z.path[len(z.path)-1].index
}

// Child moves the focus to its i-th child.
func (z *Zipper) Child(i int) {
	child := z.Focus.Children[i]
	z.Focus.Children[i] = nil
	z.path = append(z.path, frame{parent: z.Focus, index: i})
	z.Focus = child
}

// Parent moves the focus up one level.
func (z *Zipper) Parent() {
	f := z.path[len(z.path)-1]
	z.path = z.path[:len(z.path)-1]
	f.parent.Children[f.index] = z.Focus
	z.Focus = f.parent
}

// Sibling moves the focus to the sibling at offset delta from it.
func (z *Zipper) Sibling(delta int) {
	i := z.Index() + delta
	z.Parent()
	z.Child(i)
}

// PushChild appends child to the focus and descends into it.
func (z *Zipper) PushChild(child *Node) {
	z.Focus.Children = append(z.Focus.Children, child)
	z.Child(len(z.Focus.Children) - 1)
}

// Finish climbs to the root and returns it.
func (z *Zipper) Finish() *Node {
	for z.HasParent() {
		z.Parent()
	}
	return z.Focus
}
