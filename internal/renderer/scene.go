package renderer

// Scene is the root of the renderable scene graph.
type Scene struct {
	Root *Node
}

func NewScene() *Scene {
	return &Scene{Root: NewNode("scene")}
}

func (s *Scene) Add(n *Node) {
	s.Root.Add(n)
}

// Remove detaches n from the scene root. It reports whether n was present.
func (s *Scene) Remove(n *Node) bool {
	return s.Root.Remove(n)
}

// Contains reports whether n is a direct child of the scene root.
func (s *Scene) Contains(n *Node) bool {
	return n != nil && n.parent == s.Root
}

func (s *Scene) Nodes() []*Node {
	return s.Root.children
}

// Clear removes every node from the scene.
func (s *Scene) Clear() {
	s.Root.RemoveChildren()
}
