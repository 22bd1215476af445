// Package window computes moving and bucketed means over tables.
//
//	opts := window.RollingOptions{Window: 7, Centered: true}
//	smoothed, err := window.RollingMean(long, []string{"cases"}, nil, opts)
//
//	weekly, err := window.BucketedMean(long, 7, false, []string{"cases"})
package window
