// Package stats holds the numeric routines shared by the explore, analysis and
// report packages: descriptive statistics with pandas/numpy conventions,
// normality and rank tests, autocorrelation, and a NaN-safe JSON float.
//
// Inputs are plain float64 slices. Functions that accept raw column data skip
// NaN values; functions documented as taking sorted or clean input do not.
package stats
