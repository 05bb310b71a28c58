package models

// sortOrderStep is the gap left when an item moves past either end of the list
const sortOrderStep = 1000

// SortOrderForMove returns the sort order that moves items[from] to position
// to of the displayed list. items must be in display order. ok is false when
// the move is out of range or does nothing.
func SortOrderForMove(items []ChecklistItem, from, to int) (sortOrder float64, ok bool) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) || from == to {
		return 0, false
	}

	rest := make([]ChecklistItem, 0, len(items)-1)
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	switch {
	case to == 0:
		return rest[0].SortOrder - sortOrderStep, true
	case to == len(rest):
		return rest[len(rest)-1].SortOrder + sortOrderStep, true
	default:
		return (rest[to-1].SortOrder + rest[to].SortOrder) / 2, true
	}
}
