// Package netcdf locates and reads CF-convention NetCDF time-series files.
package netcdf

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"

	gonetcdf "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/megandevlan/ADF/internal/domain"
)

// CF attribute names consulted while loading.
const (
	attrUnits        = "units"
	attrCalendar     = "calendar"
	attrFillValue    = "_FillValue"
	attrMissingValue = "missing_value"
	attrScaleFactor  = "scale_factor"
	attrAddOffset    = "add_offset"
)

// Store reads time-series files from the local filesystem.
type Store struct {
	logger *slog.Logger
}

// NewStore creates a Store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// CheckDir verifies that a case's time-series directory exists.
func (s *Store) CheckDir(caseName, dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return &domain.InputDirError{Case: caseName, Dir: dir, Err: err}
	}
	if !fi.IsDir() {
		return &domain.InputDirError{Case: caseName, Dir: dir, Err: fmt.Errorf("not a directory")}
	}
	return nil
}

// Find returns the files in dir matching <case>.*.<variable>.*nc, sorted.
func (s *Store) Find(dir, caseName, variable string) ([]string, error) {
	pattern := filepath.Join(dir, caseName+".*."+variable+".*nc")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	s.logger.Debug("time series lookup", "case", caseName, "variable", variable, "matches", len(matches))
	return matches, nil
}

// Load reads variable from the file at path into a DataArray with CF
// mask-and-scale applied, coordinates attached and time decoded.
func (s *Store) Load(path, variable string) (*domain.DataArray, error) {
	g, err := gonetcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer g.Close()

	names := g.ListVariables()
	if !slices.Contains(names, variable) {
		return nil, &domain.NotFoundError{Variable: variable, Path: path}
	}

	v, err := g.GetVariable(variable)
	if err != nil {
		return nil, fmt.Errorf("read %s from %s: %w", variable, path, err)
	}

	vals, shape, err := flatten(v.Values)
	if err != nil {
		return nil, fmt.Errorf("read %s from %s: %w", variable, path, err)
	}
	maskAndScale(vals, v.Attributes)

	a := &domain.DataArray{
		Name:   variable,
		Dims:   slices.Clone(v.Dimensions),
		Shape:  shape,
		Values: vals,
		Coords: make(map[string][]float64),
		Attrs:  stringAttrs(v.Attributes),
	}
	if len(a.Dims) != len(a.Shape) {
		return nil, fmt.Errorf("read %s from %s: %d dimensions but %d-deep values", variable, path, len(a.Dims), len(a.Shape))
	}

	for _, dim := range a.Dims {
		if dim == variable || !slices.Contains(names, dim) {
			continue
		}
		c, err := g.GetVariable(dim)
		if err != nil {
			return nil, fmt.Errorf("read coordinate %s from %s: %w", dim, path, err)
		}
		if len(c.Dimensions) != 1 || c.Dimensions[0] != dim {
			continue
		}
		cv, _, err := flatten(c.Values)
		if err != nil {
			return nil, fmt.Errorf("read coordinate %s from %s: %w", dim, path, err)
		}
		a.Coords[dim] = cv

		if dim == domain.DimTime {
			units, _ := stringAttr(c.Attributes, attrUnits)
			calendar, _ := stringAttr(c.Attributes, attrCalendar)
			a.Time, err = domain.DecodeTime(cv, units, calendar)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	if a.HasDim(domain.DimTime) && a.Time == nil {
		return nil, fmt.Errorf("%s: variable %q has a time dimension without a time coordinate", path, variable)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.logger.Debug("variable loaded", "path", path, "variable", variable, "dims", a.Dims, "shape", a.Shape)
	return a, nil
}

// flatten converts the nested slices returned by the reader into a row-major
// float64 slice and its shape. Scalars have an empty shape.
func flatten(values any) ([]float64, []int, error) {
	rv := reflect.ValueOf(values)
	var shape []int
	for t := rv; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}

	size := 1
	for _, n := range shape {
		size *= n
	}
	out := make([]float64, 0, size)
	if err := appendValues(&out, rv, shape); err != nil {
		return nil, nil, err
	}
	if len(out) != size {
		return nil, nil, fmt.Errorf("ragged array: shape %v holds %d values", shape, len(out))
	}
	return out, shape, nil
}

func appendValues(out *[]float64, rv reflect.Value, shape []int) error {
	if len(shape) > 0 {
		if rv.Kind() != reflect.Slice || rv.Len() != shape[0] {
			return fmt.Errorf("ragged array at depth %d", len(shape))
		}
		for i := 0; i < rv.Len(); i++ {
			if err := appendValues(out, rv.Index(i), shape[1:]); err != nil {
				return err
			}
		}
		return nil
	}
	f, ok := toFloat(rv)
	if !ok {
		return fmt.Errorf("unsupported value type %s", rv.Type())
	}
	*out = append(*out, f)
	return nil
}

func toFloat(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

// numericAttr returns the first element of a numeric attribute.
func numericAttr(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	raw, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice {
		if rv.Len() == 0 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	return toFloat(rv)
}

func stringAttr(attrs api.AttributeMap, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	raw, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func stringAttrs(attrs api.AttributeMap) map[string]string {
	out := make(map[string]string)
	if attrs == nil {
		return out
	}
	for _, k := range attrs.Keys() {
		if s, ok := stringAttr(attrs, k); ok {
			out[k] = s
		}
	}
	return out
}

// maskAndScale replaces fill and missing values with NaN, then applies
// scale_factor and add_offset in place.
func maskAndScale(vals []float64, attrs api.AttributeMap) {
	var sentinels []float64
	for _, k := range []string{attrFillValue, attrMissingValue} {
		if f, ok := numericAttr(attrs, k); ok {
			sentinels = append(sentinels, f)
		}
	}
	scale, hasScale := numericAttr(attrs, attrScaleFactor)
	offset, hasOffset := numericAttr(attrs, attrAddOffset)

	for i, v := range vals {
		if isSentinel(v, sentinels) {
			vals[i] = math.NaN()
			continue
		}
		if hasScale {
			v *= scale
		}
		if hasOffset {
			v += offset
		}
		vals[i] = v
	}
}

func isSentinel(v float64, sentinels []float64) bool {
	for _, s := range sentinels {
		if v == s || (math.IsNaN(s) && math.IsNaN(v)) {
			return true
		}
	}
	return false
}
