// Package vdom supplies the element-construction and paint primitives the
// navigation engine composes pages with.
//
// A *Node is an immutable description of markup produced by a component's
// render function. An *Element is a live, mounted node inside a Container.
// A Container is painted in one of two ways:
//
//   - Replace: fresh paint, the container's content is rebuilt from the tree
//   - Hydrate: reconciled paint, existing server-rendered content is adopted
//     in place, assuming it structurally matches the tree
//
// Diff produces the minimal patch list to move one tree to another; Apply
// mutates a live container accordingly. Stable ref ids (assigned by RefGen)
// address live elements across paints.
package vdom
