// Package progress defines the reporting side channel of a palette
// calculation.
//
// The calculator calls a Sink at step and attempt boundaries and never reads
// anything back, so a sink cannot influence results. Throttling is a sink
// concern: wrap a sink with Throttle to drop intermediate step reports.
package progress
