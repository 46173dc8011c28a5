// Package doc defines the document model: the in-memory tree of layers,
// groups, text, shapes, paths, guides, and selection that represents one
// editable image at one point in time.
//
// The model is pure data and structurally immutable per edit. Editing code
// builds the next state with the copy-on-write helpers ([WithLayerUpdated],
// [WithLayerInserted], [WithLayerRemoved]) rather than mutating in place,
// so the previous state stays intact for delta computation.
//
// Cross-references inside the model (ActiveLayerID, selection path ids,
// delta layer ids) are plain string id lookups against a map built by
// [Flatten] — never live pointers. This keeps the recursive tree free of
// cycles and ownership ambiguity.
package doc
