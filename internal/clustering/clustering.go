// Package clustering groups recognized text fragments into spatial regions.
// Fragments from every recognition pass are fused, clustered with DBSCAN over
// their centre points, and the resulting rectangles are merged until no two
// clusters overlap.
package clustering

import (
	"cmp"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/JaimeStill/examiner/internal/layout"
)

const (
	unvisited = -1
	noise     = 0
)

// Clusterer merges fragments into non-overlapping clusters.
type Clusterer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Clusterer. The config is expected to be finalized.
func New(cfg Config, logger *slog.Logger) *Clusterer {
	return &Clusterer{
		cfg:    cfg,
		logger: logger.With("system", "clustering"),
	}
}

// Cluster fuses duplicate detections across passes, runs DBSCAN, keeps noise
// points as singleton clusters, and merges intersecting rectangles until a
// fixpoint or the iteration cap. Output indices are sequential in reading order.
func (c *Clusterer) Cluster(fragments []layout.Fragment) []layout.Cluster {
	pooled := c.fuse(fragments)
	if len(pooled) == 0 {
		return nil
	}

	labels := c.dbscan(pooled)
	groups := collect(pooled, labels)

	merged, iterations := mergeOverlapping(groups, c.cfg.MaxMergeIterations)
	if iterations >= c.cfg.MaxMergeIterations {
		c.logger.Warn(
			"cluster merge hit iteration cap",
			"iterations", iterations,
			"clusters", len(merged),
		)
	}

	clusters := make([]layout.Cluster, len(merged))
	for i, g := range merged {
		clusters[i] = g.cluster()
	}

	clusters = slices.Concat(readingLines(clusters, func(c layout.Cluster) layout.Box { return c.Box })...)

	for i := range clusters {
		clusters[i].Index = i
	}

	c.logger.Debug(
		"clustering complete",
		"fragments", len(fragments),
		"fused", len(pooled),
		"clusters", len(clusters),
	)

	return clusters
}

// fuse drops fragments that duplicate a higher-confidence detection of the
// same region from a different pass.
func (c *Clusterer) fuse(fragments []layout.Fragment) []layout.Fragment {
	candidates := make([]layout.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) == "" || f.Box.Empty() {
			continue
		}
		candidates = append(candidates, f)
	}

	slices.SortStableFunc(candidates, func(a, b layout.Fragment) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})

	kept := make([]layout.Fragment, 0, len(candidates))
	for _, f := range candidates {
		duplicate := slices.ContainsFunc(kept, func(k layout.Fragment) bool {
			return k.SourcePass != f.SourcePass && overlap(k.Box, f.Box) >= c.cfg.FusionOverlap
		})
		if !duplicate {
			kept = append(kept, f)
		}
	}

	return kept
}

func (c *Clusterer) dbscan(points []layout.Fragment) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	next := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := c.region(points, i)
		if len(neighbors) < c.cfg.MinPoints {
			labels[i] = noise
			continue
		}

		next++
		labels[i] = next

		queue := slices.Clone(neighbors)
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]

			if labels[j] == noise {
				labels[j] = next
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = next

			if expansion := c.region(points, j); len(expansion) >= c.cfg.MinPoints {
				queue = append(queue, expansion...)
			}
		}
	}

	return labels
}

func (c *Clusterer) region(points []layout.Fragment, i int) []int {
	cx, cy := points[i].Box.Center()
	out := make([]int, 0)
	for j, p := range points {
		px, py := p.Box.Center()
		if math.Hypot(px-cx, py-cy) <= c.cfg.Radius {
			out = append(out, j)
		}
	}
	return out
}

type group struct {
	box       layout.Box
	fragments []layout.Fragment
}

func (g *group) absorb(o group) {
	g.box = g.box.Union(o.box)
	g.fragments = append(g.fragments, o.fragments...)
}

func (g group) cluster() layout.Cluster {
	lines := readingLines(g.fragments, func(f layout.Fragment) layout.Box { return f.Box })
	ordered := slices.Concat(lines...)

	var sum float64
	for _, f := range ordered {
		sum += f.Confidence
	}

	return layout.Cluster{
		Box:        g.box,
		Text:       readingText(lines),
		Confidence: sum / float64(len(ordered)),
		Fragments:  ordered,
	}
}

func collect(points []layout.Fragment, labels []int) []group {
	byLabel := make(map[int]int)
	groups := make([]group, 0)

	for i, p := range points {
		label := labels[i]
		if label == noise {
			groups = append(groups, group{box: p.Box, fragments: []layout.Fragment{p}})
			continue
		}

		idx, ok := byLabel[label]
		if !ok {
			byLabel[label] = len(groups)
			groups = append(groups, group{box: p.Box, fragments: []layout.Fragment{p}})
			continue
		}

		groups[idx].absorb(group{box: p.Box, fragments: []layout.Fragment{p}})
	}

	return groups
}

// mergeOverlapping sweeps the groups, merging any pair whose rectangles
// intersect, until a sweep makes no merge or the cap is reached.
func mergeOverlapping(groups []group, limit int) ([]group, int) {
	iterations := 0
	for iterations < limit {
		iterations++
		changed := false

		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); {
				if groups[i].box.Intersects(groups[j].box) {
					groups[i].absorb(groups[j])
					groups = slices.Delete(groups, j, j+1)
					changed = true
					continue
				}
				j++
			}
		}

		if !changed {
			return groups, iterations
		}
	}
	return groups, iterations
}

func sameLine(a, b layout.Box) bool {
	_, ay := a.Center()
	_, by := b.Center()
	return math.Abs(ay-by) < math.Min(a.Height, b.Height)/2
}

// readingLines buckets items into text lines, top to bottom, each ordered
// left to right. Items are visited by centre height and join the current
// line while they sit on the line of its first item, so the result does not
// depend on input order.
func readingLines[T any](items []T, box func(T) layout.Box) [][]T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		ba, bb := box(a), box(b)
		_, ay := ba.Center()
		_, by := bb.Center()
		if c := cmp.Compare(ay, by); c != 0 {
			return c
		}
		return cmp.Compare(ba.X, bb.X)
	})

	var lines [][]T
	var anchor layout.Box
	for _, item := range sorted {
		b := box(item)
		if len(lines) > 0 && sameLine(anchor, b) {
			lines[len(lines)-1] = append(lines[len(lines)-1], item)
			continue
		}
		anchor = b
		lines = append(lines, []T{item})
	}

	for _, line := range lines {
		slices.SortStableFunc(line, func(a, b T) int {
			return cmp.Compare(box(a).X, box(b).X)
		})
	}
	return lines
}

func readingText(lines [][]layout.Fragment) string {
	rows := make([]string, len(lines))
	for i, line := range lines {
		words := make([]string, len(line))
		for j, f := range line {
			words[j] = strings.TrimSpace(f.Text)
		}
		rows[i] = strings.Join(words, " ")
	}
	return strings.Join(rows, "\n")
}

// overlap returns the intersection area divided by the smaller box area.
func overlap(a, b layout.Box) float64 {
	if !a.Intersects(b) {
		return 0
	}
	w := math.Min(a.Right(), b.Right()) - math.Max(a.X, b.X)
	h := math.Min(a.Bottom(), b.Bottom()) - math.Max(a.Y, b.Y)
	smaller := math.Min(a.Area(), b.Area())
	if smaller == 0 {
		return 0
	}
	return (w * h) / smaller
}
