// Package delta turns cumulative counts into daily changes.
package delta
