package frame

import "strings"

// Identifier column names used by the two providers.
const (
	ColCombinedKey   = "Combined_Key"
	ColProvinceState = "Province/State"
	ColCountryRegion = "Country/Region"
	ColCounty        = "county"
	ColState         = "state"
)

// SchemaKind enumerates the known provider layouts.
type SchemaKind uint8

const (
	SchemaGeneric SchemaKind = iota
	SchemaJHUGlobal
	SchemaJHUUS
	SchemaNYTState
	SchemaNYTCounty
)

// String returns the schema kind name.
func (k SchemaKind) String() string {
	switch k {
	case SchemaJHUGlobal:
		return "jhu-global"
	case SchemaJHUUS:
		return "jhu-us"
	case SchemaNYTState:
		return "nyt-state"
	case SchemaNYTCounty:
		return "nyt-county"
	default:
		return "generic"
	}
}

// Schema tags a table with the identifier columns that name one region.
// It is decided once, when the table is built, and travels with every
// derived table so transforms never have to guess keys from column names.
type Schema struct {
	kind SchemaKind
	keys []string
}

// JHUGlobal is the schema of the JHU global tables.
func JHUGlobal() Schema {
	return Schema{kind: SchemaJHUGlobal, keys: []string{ColProvinceState, ColCountryRegion}}
}

// JHUUS is the schema of the JHU United States tables.
func JHUUS() Schema {
	return Schema{kind: SchemaJHUUS, keys: []string{ColCombinedKey}}
}

// NYTState is the schema of the NYT state table.
func NYTState() Schema {
	return Schema{kind: SchemaNYTState, keys: []string{ColState}}
}

// NYTCounty is the schema of the NYT county table.
func NYTCounty() Schema {
	return Schema{kind: SchemaNYTCounty, keys: []string{ColCounty, ColState}}
}

// Generic is a caller-defined schema keyed by the given columns.
func Generic(keys ...string) Schema {
	return Schema{kind: SchemaGeneric, keys: append([]string(nil), keys...)}
}

// Kind returns the schema kind.
func (s Schema) Kind() SchemaKind { return s.kind }

// KeyColumns returns the identifier columns that name one region.
func (s Schema) KeyColumns() []string {
	return append([]string(nil), s.keys...)
}

func (s Schema) String() string {
	return s.kind.String() + "(" + strings.Join(s.keys, ", ") + ")"
}

// InferSchema picks the provider schema matching a set of identifier
// column names, falling back to a generic schema over all of them.
func InferSchema(keyNames []string) Schema {
	has := make(map[string]bool, len(keyNames))
	for _, n := range keyNames {
		has[n] = true
	}
	switch {
	case has[ColCombinedKey]:
		return JHUUS()
	case has[ColProvinceState] && has[ColCountryRegion]:
		return JHUGlobal()
	case has[ColCounty] && has[ColState]:
		return NYTCounty()
	case has[ColState]:
		return NYTState()
	default:
		return Generic(keyNames...)
	}
}

// derive keeps the parent schema while all of its keys survive in keyNames.
func (s Schema) derive(keyNames []string) Schema {
	if s.kind == SchemaGeneric && len(s.keys) == 0 {
		return InferSchema(keyNames)
	}
	has := make(map[string]bool, len(keyNames))
	for _, n := range keyNames {
		has[n] = true
	}
	for _, k := range s.keys {
		if !has[k] {
			return InferSchema(keyNames)
		}
	}
	return s
}
