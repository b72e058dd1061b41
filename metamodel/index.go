package metamodel

import "strings"

// tableIndex maps table names to descriptors ignoring case and remembers
// insertion order. Overwriting a key keeps its original position.
type tableIndex struct {
	entries map[string]*ModelDescriptor
	order   []string
}

func newTableIndex() *tableIndex {
	return &tableIndex{entries: make(map[string]*ModelDescriptor)}
}

// put stores d under name and returns the descriptor it replaced, if any.
func (t *tableIndex) put(name string, d *ModelDescriptor) *ModelDescriptor {
	key := strings.ToLower(name)
	prev, ok := t.entries[key]
	if !ok {
		t.order = append(t.order, key)
	}
	t.entries[key] = d
	return prev
}

func (t *tableIndex) get(name string) (*ModelDescriptor, bool) {
	d, ok := t.entries[strings.ToLower(name)]
	return d, ok
}

func (t *tableIndex) values() []*ModelDescriptor {
	result := make([]*ModelDescriptor, 0, len(t.order))
	for _, key := range t.order {
		result = append(result, t.entries[key])
	}
	return result
}

func (t *tableIndex) len() int {
	return len(t.order)
}
