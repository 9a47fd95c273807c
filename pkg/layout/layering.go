package layout

// assignLayers assigns each node to a horizontal layer (the x rank) using a
// longest-path traversal via Kahn's algorithm. Each node lands one past the
// deepest of its parents, so sources sit at layer 0 and every parent is
// strictly left of its children.
//
// The adjacency must be acyclic; run breakCycles first. Time complexity is
// O(V + E).
func (a *adjacency) assignLayers() map[string]int {
	inDegree := make(map[string]int, len(a.ids))
	layers := make(map[string]int, len(a.ids))
	queue := make([]string, 0, len(a.ids))

	for _, id := range a.ids {
		degree := len(a.in[id])
		inDegree[id] = degree
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range a.out[curr] {
			if layer := layers[curr] + 1; layer > layers[child] {
				layers[child] = layer
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	return layers
}
