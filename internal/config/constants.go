package config

// ScopeFileExtensions are all recognized scope file extensions
var ScopeFileExtensions = []string{".yaml", ".yml", ".weyl"}

// IsTestMode normalizes freshened variable names in printed terms so output
// comparisons stay stable across runs. Set once at startup by harnesses.
var IsTestMode = false

// QueryWitnessName is the synthetic witness parameter used for top-level
// queries that ask for a witness of a concept set directly.
const QueryWitnessName = "$witness"

// FreshVarSeparator joins a variable name with its freshening ordinal when
// instance parameters are renamed apart before matching.
const FreshVarSeparator = "'"

// Built-in concept names
const (
	EqConceptName   = "Eq"
	OrdConceptName  = "Ord"
	NumConceptName  = "Num"
	ShowConceptName = "Show"
)
