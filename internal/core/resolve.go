package core

// Resolve builds the calculation-ready view of doc: only sections marked
// complete are exported, each as the list of its item data, nested by path.
func Resolve(doc Document) map[string]any {
	out := make(map[string]any)
	for _, path := range doc.Paths() {
		section := doc.Section(path)
		if !section.Complete {
			continue
		}
		segments := path.Segments()
		node := out
		for _, seg := range segments[:len(segments)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		items := make([]any, 0, section.Len())
		for _, item := range section.Items {
			items = append(items, map[string]any(item.Data.Clone()))
		}
		node[segments[len(segments)-1]] = items
	}
	return out
}
