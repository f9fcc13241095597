// Package category resolves raw product category strings to one of a
// closed set of logical category types used for feature and model
// selection.
package category

import "strings"

// Type is the logical grouping of a pharmaceutical product derived from
// its raw category string.
type Type int

const (
	Other Type = iota
	Antibiotic
	Gastro
	Acute
	Chronic
)

// categoryTypes maps known raw category strings, lowercased and
// trimmed, to their logical type. Unmapped strings resolve to Other.
var categoryTypes = map[string]Type{
	"cefixime":          Antibiotic,
	"omeprazole":        Gastro,
	"diclofenac sodium": Acute,
	"escitalopram":      Chronic,
	"empagliflozin":     Chronic,
	"dapagliflozin":     Chronic,
	"sitagliptin":       Chronic,
}

// Classify resolves a raw category string to its logical type. The
// match is case-insensitive and whitespace-trimmed. This is a total
// function and never fails; anything unrecognized maps to Other.
func Classify(raw string) Type {
	if raw == "" {
		return Other
	}
	if t, ok := categoryTypes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return Other
}

func (t Type) String() string {
	switch t {
	case Antibiotic:
		return "antibiotic"
	case Gastro:
		return "gastro"
	case Acute:
		return "acute"
	case Chronic:
		return "chronic"
	default:
		return "other"
	}
}
