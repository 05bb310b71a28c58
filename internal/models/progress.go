package models

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Progress is the completion summary of a checklist.
// Percentage is always derived from Completed and Total.
type Progress struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// ComputeProgress aggregates the completion state of items.
// The percentage is rounded half-to-even at two decimal places, the same
// representation the checklist API reports, so client and server agree.
func ComputeProgress(items []ChecklistItem) Progress {
	p := Progress{Total: len(items)}
	for _, item := range items {
		if item.IsCompleted {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = roundPercentage(float64(p.Completed) / float64(p.Total) * 100)
	}
	return p
}

func roundPercentage(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Agrees reports whether two progress values describe the same completion state
func (p Progress) Agrees(other Progress) bool {
	return p.Total == other.Total &&
		p.Completed == other.Completed &&
		math.Abs(p.Percentage-other.Percentage) < 0.005
}

// String renders progress as "completed/total (pct%)"
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d (%s%%)", p.Completed, p.Total, formatPercentage(p.Percentage))
}

func formatPercentage(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// VerifyProgress checks the reported progress against the items it was sent with.
func (s *Snapshot) VerifyProgress() error {
	computed := ComputeProgress(s.Items)
	if !computed.Agrees(s.Progress) {
		return fmt.Errorf("%w: reported %s, computed %s", ErrProgressMismatch, s.Progress, computed)
	}
	return nil
}

// SortItems orders items for display: sort_order, then creation time, then id.
func SortItems(items []ChecklistItem) {
	slices.SortStableFunc(items, func(a, b ChecklistItem) int {
		if c := cmp.Compare(a.SortOrder, b.SortOrder); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
