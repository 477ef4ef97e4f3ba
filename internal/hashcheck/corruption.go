package hashcheck

import "strings"

type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Corruption categories. These name what went wrong structurally, not why.
const (
	CorruptionWhitespace   = "whitespace_contamination"
	CorruptionTruncated    = "truncated"
	CorruptionOverlong     = "overlong"
	CorruptionAlgorithmTag = "wrong_algorithm_tag"
	CorruptionCharacterSet = "invalid_character_set"
)

type CorruptionReport struct {
	Corrupted bool     `json:"is_corrupted"`
	Types     []string `json:"corruption_types,omitempty"`
	Severity  Severity `json:"severity"`
}

// DetectCorruption classifies a malformed hash. An empty string is invalid
// but not corrupted: it means no credential was ever set, which is a
// different operational condition from a damaged one. Any other string that
// fails format validation is structural damage.
func DetectCorruption(hash string) CorruptionReport {
	if hash == "" {
		return CorruptionReport{Corrupted: false, Severity: SeverityNone}
	}

	var types []string
	severity := SeverityNone

	trimmed := strings.TrimSpace(hash)
	if trimmed != hash {
		types = append(types, CorruptionWhitespace)
		severity = escalate(severity, SeverityLow)
	}
	switch {
	case len(trimmed) < EncodedLength:
		types = append(types, CorruptionTruncated)
		severity = escalate(severity, SeverityMedium)
	case len(trimmed) > EncodedLength:
		types = append(types, CorruptionOverlong)
		severity = escalate(severity, SeverityMedium)
	}
	if !HasAcceptedPrefix(trimmed) {
		types = append(types, CorruptionAlgorithmTag)
		severity = escalate(severity, SeverityHigh)
	} else if !bodyWellFormed(trimmed) {
		types = append(types, CorruptionCharacterSet)
		severity = escalate(severity, SeverityHigh)
	}

	return CorruptionReport{Corrupted: len(types) > 0, Types: types, Severity: severity}
}

var severityRank = map[Severity]int{
	SeverityNone:   0,
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

func escalate(cur, next Severity) Severity {
	if severityRank[next] > severityRank[cur] {
		return next
	}
	return cur
}

// WhitespaceOnly reports whether the report's sole finding is whitespace
// contamination, i.e. the hash is recoverable by trimming.
func (r CorruptionReport) WhitespaceOnly() bool {
	return r.Corrupted && len(r.Types) == 1 && r.Types[0] == CorruptionWhitespace
}

// Has reports whether the given corruption category was detected.
func (r CorruptionReport) Has(typ string) bool {
	for _, t := range r.Types {
		if t == typ {
			return true
		}
	}
	return false
}
