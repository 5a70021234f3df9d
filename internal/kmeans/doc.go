// Package kmeans implements weighted Lloyd's-algorithm clustering over the
// distinct colors of a histogram.
//
// One Engine runs one attempt at a time: k-means++ style seeding, then
// alternating parallel assignment and weighted centroid updates until no
// point changes cluster or the step budget is spent. Multi-restart selection
// is left to the caller.
package kmeans
