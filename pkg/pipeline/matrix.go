package pipeline

import (
	"strings"
)

// Matrix declares one or more named axes whose cross-product defines
// parallel variants of a job.
type Matrix struct {
	Axes []Axis // Declaration order; first axis varies slowest
}

// Axis is one named dimension of a matrix.
type Axis struct {
	Name   string
	Values []string
}

// Point is one cell of the matrix cross-product.
type Point struct {
	Values map[string]string // Axis name → value
	Label  string            // Joined values in axis order, e.g. "ubuntu-latest, stable"
}

// Points materializes the cross-product of all axis value sets. The first
// axis varies slowest; the ordering only affects labeling and display.
// An axis with zero values yields zero points — callers treat that as a
// configuration error before expansion.
func (m *Matrix) Points() []Point {
	if m == nil || len(m.Axes) == 0 {
		return nil
	}

	total := 1
	for _, axis := range m.Axes {
		total *= len(axis.Values)
	}
	if total == 0 {
		return nil
	}

	points := make([]Point, 0, total)
	indices := make([]int, len(m.Axes))
	for {
		values := make(map[string]string, len(m.Axes))
		parts := make([]string, len(m.Axes))
		for i, axis := range m.Axes {
			values[axis.Name] = axis.Values[indices[i]]
			parts[i] = axis.Values[indices[i]]
		}
		points = append(points, Point{
			Values: values,
			Label:  strings.Join(parts, ", "),
		})

		// Advance the last axis fastest
		i := len(indices) - 1
		for i >= 0 {
			indices[i]++
			if indices[i] < len(m.Axes[i].Values) {
				break
			}
			indices[i] = 0
			i--
		}
		if i < 0 {
			break
		}
	}
	return points
}

// Size returns the number of matrix points (product of axis sizes).
func (m *Matrix) Size() int {
	if m == nil || len(m.Axes) == 0 {
		return 0
	}
	total := 1
	for _, axis := range m.Axes {
		total *= len(axis.Values)
	}
	return total
}
