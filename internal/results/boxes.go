package results

import (
	"cmp"
	"slices"
)

// NormalizeBoxes shrinks oversized markers and separates markers of
// different sub-questions that overlap on the same page. Boxes are
// [x, y, width, height] in page-normalized coordinates. Separation sweeps a
// page down and then back up so markers stay on the page. It returns the
// number of boxes changed.
func NormalizeBoxes(annotations []Annotation, cfg Config) int {
	changed := make(map[int]bool)

	for i := range annotations {
		box := annotations[i].BBox
		if len(box) != 4 {
			continue
		}
		if box[2] > cfg.MaxMarkerSize || box[3] > cfg.MaxMarkerSize {
			cx, cy := box[0]+box[2]/2, box[1]+box[3]/2
			size := cfg.DefaultMarkerSize
			annotations[i].BBox = []float64{
				clampUnit(cx-size/2, size),
				clampUnit(cy-size/2, size),
				size,
				size,
			}
			changed[i] = true
		}
	}

	byPage := make(map[int][]int)
	for i, a := range annotations {
		if len(a.BBox) == 4 {
			byPage[a.PageIndex] = append(byPage[a.PageIndex], i)
		}
	}

	for _, idx := range byPage {
		before := make([]float64, len(idx))
		for k, i := range idx {
			before[k] = annotations[i].BBox[1]
		}
		separate(annotations, slices.Clone(idx), cfg.MarkerGap)
		for k, i := range idx {
			if annotations[i].BBox[1] != before[k] {
				changed[i] = true
			}
		}
	}

	return len(changed)
}

// separate removes overlaps between markers of different sub-questions on
// one page. A downward sweep stacks each marker below every earlier marker
// it overlaps. An upward sweep then pulls markers that ran off the page back
// above the markers beneath them. Overlap can only remain when the page has
// no room left.
func separate(annotations []Annotation, idx []int, gap float64) {
	byY := func(a, b int) int {
		return cmp.Compare(annotations[a].BBox[1], annotations[b].BBox[1])
	}
	conflict := func(a, b int) bool {
		pa, pb := annotations[a], annotations[b]
		return pa.SubQuestion != pb.SubQuestion && overlaps(pa.BBox, pb.BBox)
	}

	slices.SortStableFunc(idx, byY)
	for k, cur := range idx {
		box := annotations[cur].BBox
		for moved := true; moved; {
			moved = false
			for _, prev := range idx[:k] {
				if conflict(prev, cur) {
					pb := annotations[prev].BBox
					box[1] = pb[1] + pb[3] + gap
					moved = true
				}
			}
		}
	}

	slices.SortStableFunc(idx, byY)
	for k := len(idx) - 1; k >= 0; k-- {
		cur := idx[k]
		box := annotations[cur].BBox
		box[1] = min(box[1], 1-box[3])
		for moved := true; moved && box[1] > 0; {
			moved = false
			for _, next := range idx[k+1:] {
				if conflict(next, cur) {
					box[1] = annotations[next].BBox[1] - box[3] - gap
					moved = true
				}
			}
		}
		box[1] = max(box[1], 0)
	}
}

func overlaps(a, b []float64) bool {
	return a[0] < b[0]+b[2] && b[0] < a[0]+a[2] &&
		a[1] < b[1]+b[3] && b[1] < a[1]+a[3]
}

// clampUnit keeps a coordinate inside the page for a marker of the given size.
func clampUnit(v, size float64) float64 {
	return max(0, min(v, 1-size))
}
