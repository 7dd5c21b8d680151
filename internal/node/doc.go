// Package node defines the content model shared by the builder, the render
// engine and the source loader. Node is a closed union: only the types in
// this package implement it, so the engine's switches cover every case.
package node
