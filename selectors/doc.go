// Package selectors picks regions out of a table: the top X by a metric on
// the latest date, or a named list. Either can roll subregions up into
// their region.
package selectors
