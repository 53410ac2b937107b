package domain

import (
	"fmt"
	"maps"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Weighting records how a spatial mean was weighted.
type Weighting string

const (
	// WeightingNone means no spatial reduction was needed.
	WeightingNone Weighting = "none"
	// WeightingCosLat weights each latitude row by cos(lat).
	WeightingCosLat Weighting = "cos_lat"
	// WeightingUniformColumns weights every ncol column equally. Cell areas
	// are unknown, so the mean is only approximately area-weighted.
	WeightingUniformColumns Weighting = "uniform_ncol"
	// WeightingUniform is used when no recognized spatial coordinate exists.
	WeightingUniform Weighting = "uniform"
)

// Approximate reports whether the weighting stands in for unavailable
// area weights.
func (w Weighting) Approximate() bool {
	return w == WeightingUniformColumns
}

// Weights is either a 1-D weight vector bound to one dimension, or the
// scalar uniform weight 1.0 when Dim is empty. Weights are not normalized.
type Weights struct {
	Dim    string
	Values []float64
}

// Uniform reports whether w is the scalar weight 1.0.
func (w Weights) Uniform() bool { return w.Dim == "" }

// AreaWeights picks the weights for a spatial mean of a, in priority order:
// cos(lat) when a lat coordinate exists, uniform columns on an ncol mesh,
// otherwise uniform.
func AreaWeights(a *DataArray) (Weights, Weighting) {
	if lat, ok := a.Coords[DimLat]; ok && a.HasDim(DimLat) {
		w := make([]float64, len(lat))
		for i, deg := range lat {
			w[i] = math.Cos(deg * math.Pi / 180)
		}
		return Weights{Dim: DimLat, Values: w}, WeightingCosLat
	}
	if a.HasDim(DimNcol) {
		return Weights{}, WeightingUniformColumns
	}
	return Weights{}, WeightingUniform
}

// SpatialMean collapses every non-time dimension of a into a weighted mean,
// one value per time step. The weighted mean is sum(w*v)/sum(w) over the
// samples that are not NaN; a step with no valid samples is NaN. A 1-D
// weight vector is broadcast across the other spatial dimensions, which
// carry no weight of their own.
func SpatialMean(a *DataArray) (*DataArray, Weighting, error) {
	if err := a.Validate(); err != nil {
		return nil, "", fmt.Errorf("spatial mean: %w", err)
	}
	if HasVerticalDim(a) {
		return nil, "", fmt.Errorf("spatial mean: array %q has a vertical dimension", a.Name)
	}
	if len(a.SpatialDims()) == 0 {
		return nil, "", fmt.Errorf("spatial mean: array %q has no spatial dimensions", a.Name)
	}

	weights, weighting := AreaWeights(a)
	st := strides(a.Shape)

	tAxis := a.DimIndex(DimTime)
	steps := 1
	if tAxis >= 0 {
		steps = a.Shape[tAxis]
	}
	wAxis := -1
	if !weights.Uniform() {
		wAxis = a.DimIndex(weights.Dim)
	}

	per := len(a.Values) / max(steps, 1)
	vals := make([][]float64, steps)
	ws := make([][]float64, steps)
	for i, v := range a.Values {
		if math.IsNaN(v) {
			continue
		}
		t := 0
		if tAxis >= 0 {
			t = (i / st[tAxis]) % a.Shape[tAxis]
		}
		w := 1.0
		if wAxis >= 0 {
			w = weights.Values[(i/st[wAxis])%a.Shape[wAxis]]
		}
		if vals[t] == nil {
			vals[t] = make([]float64, 0, per)
			ws[t] = make([]float64, 0, per)
		}
		vals[t] = append(vals[t], v)
		ws[t] = append(ws[t], w)
	}

	out := make([]float64, steps)
	for t := range out {
		if len(vals[t]) == 0 {
			out[t] = math.NaN()
			continue
		}
		out[t] = stat.Mean(vals[t], ws[t])
	}

	res := &DataArray{
		Name:   a.Name,
		Values: out,
		Attrs:  maps.Clone(a.Attrs),
	}
	if tAxis >= 0 {
		res.Dims = []string{DimTime}
		res.Shape = []int{steps}
		res.Time = a.Time
		if c, ok := a.Coords[DimTime]; ok {
			res.Coords = map[string][]float64{DimTime: c}
		}
	}
	return res, weighting, nil
}
