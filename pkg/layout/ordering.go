package layout

import "sort"

// orderingSweeps is the number of forward/backward barycenter passes.
// Two rounds are enough for the small graphs an editor session holds.
const orderingSweeps = 2

// orderLayers arranges the nodes of each layer to reduce edge crossings.
// It starts from document order and applies barycenter sweeps: a forward
// pass sorts each layer by the mean position of its parents, a backward
// pass by the mean position of its children. Stable sorts keep the prior
// order as the tie-break, so the result is deterministic.
func orderLayers(a *adjacency, layers map[string]int) [][]string {
	maxLayer := 0
	for _, l := range layers {
		if l > maxLayer {
			maxLayer = l
		}
	}

	ordered := make([][]string, maxLayer+1)
	for _, id := range a.ids {
		l := layers[id]
		ordered[l] = append(ordered[l], id)
	}

	for sweep := 0; sweep < orderingSweeps; sweep++ {
		for l := 1; l <= maxLayer; l++ {
			sortByBarycenter(ordered[l], ordered[l-1], a.in)
		}
		for l := maxLayer - 1; l >= 0; l-- {
			sortByBarycenter(ordered[l], ordered[l+1], a.out)
		}
	}

	return ordered
}

// sortByBarycenter stably sorts layer by the average index of each node's
// neighbors in the reference layer. Nodes without neighbors keep their slot.
func sortByBarycenter(layer, reference []string, links map[string][]string) {
	refIndex := make(map[string]int, len(reference))
	for i, id := range reference {
		refIndex[id] = i
	}

	type ranked struct {
		id   string
		bary float64
	}
	rankedLayer := make([]ranked, len(layer))
	for i, id := range layer {
		sum, count := 0.0, 0
		for _, n := range links[id] {
			if idx, ok := refIndex[n]; ok {
				sum += float64(idx)
				count++
			}
		}
		r := ranked{id: id}
		if count > 0 {
			r.bary = sum / float64(count)
		} else {
			// Anchor unconnected nodes at their current slot.
			r.bary = float64(i)
		}
		rankedLayer[i] = r
	}

	sort.SliceStable(rankedLayer, func(i, j int) bool {
		return rankedLayer[i].bary < rankedLayer[j].bary
	})

	for i, r := range rankedLayer {
		layer[i] = r.id
	}
}
