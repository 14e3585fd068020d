// Package ir is the intermediate representation shared by the converter,
// the dependency graph builder, and the writer.
//
// A [Node] describes one schema at any nesting level. Named schemas live in
// a [Registry] and refer to each other only through [Ref] values, never
// through pointers, so reference cycles exist purely as names and are
// resolved by the graph package.
package ir
