package ir

// KeyOrder records the declared key order of every mapping in a source
// document, keyed by the JSON pointer of the mapping. Go maps lose that
// order, so loaders capture it separately.
type KeyOrder map[string][]string

// Keys returns the declared keys of the mapping at pointer, or nil.
func (o KeyOrder) Keys(pointer string) []string {
	return o[pointer]
}

// Sort returns names in declared order for the mapping at pointer. Names
// the order does not mention follow in the order given.
func (o KeyOrder) Sort(pointer string, names []string) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	out := make([]string, 0, len(names))
	for _, k := range o.Keys(pointer) {
		if present[k] {
			out = append(out, k)
			delete(present, k)
		}
	}
	for _, n := range names {
		if present[n] {
			out = append(out, n)
			delete(present, n)
		}
	}
	return out
}
