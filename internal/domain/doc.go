// Package domain models the climate-statistics reduction behind the AMWG
// variable table.
//
// # Data Source
//
// Input comes from CAM time-series files written by the ADF time-series step:
// one NetCDF file per (case, variable), named
//
//	<case>.<component>.<hist>.<variable>.<start>-<end>.nc
//
// e.g. "b.e20.B1850.f19_g17.cam.h0.TS.000101-001012.nc". Each file holds a
// single data variable plus its coordinate variables.
//
// # Labeled Arrays
//
// A [DataArray] is a dense, row-major float64 array with named dimensions.
// Recognized dimension names:
//
//	time        sample axis; decoded into calendar dates (see [DecodeTime])
//	lat, lon    regular latitude/longitude grid (degrees)
//	ncol        unstructured (spectral-element) column index
//	lev, ilev   vertical mid-levels / interfaces (unsupported, skipped)
//
// # Reduction
//
// Spatial dimensions are collapsed to a global mean per time step by
// [SpatialMean]. On a lat/lon grid each sample is weighted by cos(lat), an
// approximation of cell area; longitude carries no weight of its own. On an
// ncol mesh true cell areas are not available, so columns are weighted
// uniformly and the result is tagged approximate.
//
// The time axis is then collapsed to one value per calendar year by
// [AnnualMean].
//
// # Statistics
//
// [ComputeStatistics] derives the table row from the annual series:
//
//	mean, sample size (years), standard deviation (divide by n),
//	standard error = std / n, 95% CI = 1.96 * standard error,
//	OLS trend (value ~ year) with a two-sided t-test p-value.
//
// The standard error deliberately divides by n rather than sqrt(n). Tables
// produced by earlier tooling use that convention and downstream comparisons
// depend on it; see the note on [ComputeStatistics].
//
// # Domains
//
// AMWG defines four analysis domains (global, tropics, southern and northern
// extratropics). Only the global domain is computed; the others are listed in
// [Domains] for configuration validation and future regional averaging.
package domain
