package layout

// breakCycles removes back edges from the working adjacency so layering
// terminates. Back edges are found with white/gray/black depth-first search,
// starting from source nodes (no incoming edges) and then from any node not
// yet visited. Returns the number of edges removed.
//
// Only the working copy is modified; the document's edges are untouched.
func (a *adjacency) breakCycles() int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(a.ids))
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range a.out[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, id := range a.ids {
		if len(a.in[id]) == 0 && color[id] == white {
			dfs(id)
		}
	}
	for _, id := range a.ids {
		if color[id] == white {
			dfs(id)
		}
	}

	for _, e := range backEdges {
		a.removeEdge(e[0], e[1])
	}
	return len(backEdges)
}

// removeEdge deletes one from→to entry from the out and in lists.
func (a *adjacency) removeEdge(from, to string) {
	a.out[from] = removeFirst(a.out[from], to)
	a.in[to] = removeFirst(a.in[to], from)
}

func removeFirst(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
