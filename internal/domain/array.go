package domain

import (
	"fmt"
	"slices"
)

// Canonical dimension names.
const (
	DimTime = "time"
	DimLat  = "lat"
	DimLon  = "lon"
	DimNcol = "ncol"
	DimLev  = "lev"
	DimIlev = "ilev"
)

// UnknownUnits is written in place of a unit string when the variable carries
// no units attribute.
const UnknownUnits = "--"

// verticalDims are the dimensions that mark a 3-D field.
var verticalDims = []string{DimLev, DimIlev}

// Date is a calendar date decoded from a CF time coordinate. It is
// calendar-agnostic: a noleap date never has Day 29 in February, a 360_day
// date may have Day 30 in February.
type Date struct {
	Year  int
	Month int
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DataArray is a dense, row-major numeric array with named dimensions.
type DataArray struct {
	Name   string
	Dims   []string
	Shape  []int
	Values []float64

	// Coords holds 1-D coordinate values keyed by dimension name. Dimensions
	// without a coordinate variable (ncol, usually) have no entry.
	Coords map[string][]float64

	// Time holds the decoded time coordinate, one entry per step of the time
	// dimension. Nil when the array has no time dimension.
	Time []Date

	Attrs map[string]string
}

// Validate checks the structural invariants of the array.
func (a *DataArray) Validate() error {
	if len(a.Dims) != len(a.Shape) {
		return fmt.Errorf("array %q: %d dims but %d sizes", a.Name, len(a.Dims), len(a.Shape))
	}
	seen := make(map[string]bool, len(a.Dims))
	size := 1
	for i, d := range a.Dims {
		if seen[d] {
			return fmt.Errorf("array %q: duplicate dimension %q", a.Name, d)
		}
		seen[d] = true
		if a.Shape[i] < 0 {
			return fmt.Errorf("array %q: negative size for dimension %q", a.Name, d)
		}
		size *= a.Shape[i]
	}
	if len(a.Values) != size {
		return fmt.Errorf("array %q: shape %v needs %d values, have %d", a.Name, a.Shape, size, len(a.Values))
	}
	for name, c := range a.Coords {
		i := a.DimIndex(name)
		if i < 0 {
			continue
		}
		if len(c) != a.Shape[i] {
			return fmt.Errorf("array %q: coordinate %q has %d values, dimension has %d", a.Name, name, len(c), a.Shape[i])
		}
	}
	if i := a.DimIndex(DimTime); i >= 0 {
		if len(a.Time) != a.Shape[i] {
			return fmt.Errorf("array %q: %d decoded times for time dimension of %d", a.Name, len(a.Time), a.Shape[i])
		}
		for j := 1; j < len(a.Time); j++ {
			if dateBefore(a.Time[j], a.Time[j-1]) {
				return fmt.Errorf("array %q: time coordinate decreases at index %d (%s after %s)", a.Name, j, a.Time[j], a.Time[j-1])
			}
		}
	}
	return nil
}

// DimIndex returns the axis of the named dimension, or -1.
func (a *DataArray) DimIndex(name string) int {
	return slices.Index(a.Dims, name)
}

// HasDim reports whether the array has the named dimension.
func (a *DataArray) HasDim(name string) bool {
	return a.DimIndex(name) >= 0
}

// HasCoord reports whether a coordinate variable exists for the named dimension.
func (a *DataArray) HasCoord(name string) bool {
	_, ok := a.Coords[name]
	return ok
}

// Units returns the units attribute and whether it was present.
func (a *DataArray) Units() (string, bool) {
	u, ok := a.Attrs["units"]
	return u, ok
}

// UnitString returns the units attribute, or UnknownUnits.
func (a *DataArray) UnitString() string {
	if u, ok := a.Units(); ok {
		return u
	}
	return UnknownUnits
}

// SpatialDims returns every dimension other than time, in axis order.
func (a *DataArray) SpatialDims() []string {
	out := make([]string, 0, len(a.Dims))
	for _, d := range a.Dims {
		if d != DimTime {
			out = append(out, d)
		}
	}
	return out
}

// HasVerticalDim reports whether the array carries a vertical dimension or
// coordinate (lev or ilev).
func HasVerticalDim(a *DataArray) bool {
	for _, d := range verticalDims {
		if a.HasDim(d) || a.HasCoord(d) {
			return true
		}
	}
	return false
}

// strides returns the row-major stride of each axis.
func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

func dateBefore(a, b Date) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	return a.Day < b.Day
}
