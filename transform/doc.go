// Package transform turns schema and operation names into names that are
// safe to emit as TypeScript bindings, object keys, and file names.
package transform
