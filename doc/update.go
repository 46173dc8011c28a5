package doc

// Copy-on-write tree updates. Each helper returns a new forest sharing
// every untouched subtree with the input: only the nodes on the path from
// the root to the edited layer are copied. Callers treat layer trees as
// immutable per edit, so sharing is safe.

// WithLayerUpdated returns a new forest in which the layer with the given
// id has been replaced by patch's result. The patch function receives a
// shallow copy it may modify freely and must return the layer to install
// (usually the same pointer). If the id is not found, the input forest is
// returned unchanged.
func WithLayerUpdated(layers []*Layer, id string, patch func(*Layer) *Layer) []*Layer {
	out, _ := updateIn(layers, id, patch)
	return out
}

func updateIn(layers []*Layer, id string, patch func(*Layer) *Layer) ([]*Layer, bool) {
	for i, l := range layers {
		if l.ID == id {
			shallow := *l
			replaced := patch(&shallow)
			out := copyLayerSlice(layers)
			out[i] = replaced
			return out, true
		}
		if len(l.Children) > 0 {
			if newChildren, found := updateIn(l.Children, id, patch); found {
				group := *l
				group.Children = newChildren
				out := copyLayerSlice(layers)
				out[i] = &group
				return out, true
			}
		}
	}
	return layers, false
}

// WithLayerInserted returns a new forest with the layer inserted at index
// within the children of parentID, or at the top level when parentID is
// empty. Index is clamped to the valid range. If parentID names a missing
// or non-group layer, the input forest is returned unchanged.
func WithLayerInserted(layers []*Layer, parentID string, index int, layer *Layer) []*Layer {
	if parentID == "" {
		return insertAt(layers, index, layer)
	}
	return WithLayerUpdated(layers, parentID, func(parent *Layer) *Layer {
		if parent.Kind != KindGroup {
			return parent
		}
		parent.Children = insertAt(parent.Children, index, layer)
		return parent
	})
}

// WithLayerRemoved returns a new forest with the layer of the given id
// removed wherever it appears. If absent, the input forest is returned
// unchanged.
func WithLayerRemoved(layers []*Layer, id string) []*Layer {
	out, _ := removeIn(layers, id)
	return out
}

func removeIn(layers []*Layer, id string) ([]*Layer, bool) {
	for i, l := range layers {
		if l.ID == id {
			out := make([]*Layer, 0, len(layers)-1)
			out = append(out, layers[:i]...)
			out = append(out, layers[i+1:]...)
			return out, true
		}
		if len(l.Children) > 0 {
			if newChildren, found := removeIn(l.Children, id); found {
				group := *l
				group.Children = newChildren
				out := copyLayerSlice(layers)
				out[i] = &group
				return out, true
			}
		}
	}
	return layers, false
}

// WithLayerDetached returns a new forest with the layer of the given id
// removed, plus the detached layer itself, subtree intact, so it can be
// reinserted elsewhere. The layer is nil when the id is absent.
func WithLayerDetached(layers []*Layer, id string) ([]*Layer, *Layer) {
	return detachIn(layers, id)
}

func detachIn(layers []*Layer, id string) ([]*Layer, *Layer) {
	for i, l := range layers {
		if l.ID == id {
			out := make([]*Layer, 0, len(layers)-1)
			out = append(out, layers[:i]...)
			out = append(out, layers[i+1:]...)
			return out, l
		}
		if len(l.Children) > 0 {
			if newChildren, detached := detachIn(l.Children, id); detached != nil {
				group := *l
				group.Children = newChildren
				out := copyLayerSlice(layers)
				out[i] = &group
				return out, detached
			}
		}
	}
	return layers, nil
}

// WithLayerDissolved returns a new forest with the layer of the given id
// removed and its children spliced into its place in order. Children that
// outlive a deleted group stay in the tree this way; removing them too
// takes their own removal. If the id is absent, the input forest is
// returned unchanged.
func WithLayerDissolved(layers []*Layer, id string) []*Layer {
	out, _ := dissolveIn(layers, id)
	return out
}

func dissolveIn(layers []*Layer, id string) ([]*Layer, bool) {
	for i, l := range layers {
		if l.ID == id {
			out := make([]*Layer, 0, len(layers)-1+len(l.Children))
			out = append(out, layers[:i]...)
			out = append(out, l.Children...)
			out = append(out, layers[i+1:]...)
			return out, true
		}
		if len(l.Children) > 0 {
			if newChildren, found := dissolveIn(l.Children, id); found {
				group := *l
				group.Children = newChildren
				out := copyLayerSlice(layers)
				out[i] = &group
				return out, true
			}
		}
	}
	return layers, false
}

func insertAt(layers []*Layer, index int, layer *Layer) []*Layer {
	if index < 0 {
		index = 0
	}
	if index > len(layers) {
		index = len(layers)
	}
	out := make([]*Layer, 0, len(layers)+1)
	out = append(out, layers[:index]...)
	out = append(out, layer)
	out = append(out, layers[index:]...)
	return out
}

func copyLayerSlice(layers []*Layer) []*Layer {
	out := make([]*Layer, len(layers))
	copy(out, layers)
	return out
}
