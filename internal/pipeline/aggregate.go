package pipeline

import "github.com/ppiankov/dealscan/internal/model"

// Aggregate deduplicates deals by title. Each title appears once, at the
// position where it was first seen, carrying the values of its last occurrence.
func Aggregate(deals []model.Deal) []model.Deal {
	index := make(map[string]int, len(deals))
	out := make([]model.Deal, 0, len(deals))

	for _, d := range deals {
		if i, seen := index[d.Title]; seen {
			out[i] = d
			continue
		}
		index[d.Title] = len(out)
		out = append(out, d)
	}

	return out
}
