// Package charts renders dashboard charts as PNG images with go-chart.
//
// Render draws the line, bar, scatter, histogram and pie charts built by
// the explore package. TimeSeries, Decomposition, Clusters and
// Distribution draw the results of the matching analyses. Box plots and
// heatmaps are only drawn in the browser and return ErrUnsupported.
package charts
