package graph

import (
	"cmp"
	"slices"
)

// Dedup removes statements whose text was already seen, keeping the first
// occurrence of each and the original order of the survivors.
func Dedup(statements []Statement) []Statement {
	order := make([]int, len(statements))
	for i := range order {
		order[i] = i
	}

	// Stable, so each run of equal text starts at its lowest position.
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(statements[a].Text, statements[b].Text)
	})

	kept := make([]int, 0, len(order))
	for _, i := range order {
		if n := len(kept); n > 0 && statements[kept[n-1]].Text == statements[i].Text {
			continue
		}
		kept = append(kept, i)
	}
	slices.Sort(kept)

	out := make([]Statement, len(kept))
	for i, idx := range kept {
		out[i] = statements[idx]
	}
	return out
}
