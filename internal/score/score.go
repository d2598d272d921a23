// Package score defines the result and error types shared by the scoring
// engines. A scoring run produces an ordered slice of Records; any validation
// failure aborts the run with a single *Error whose message names the
// offending file or image identifiers.
package score

import (
	"encoding/json"
	"fmt"
	"math"
)

// Metric is one named metric value. Value may be NaN or infinite when a
// confusion-count denominator is zero; serialization is the caller's concern.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MarshalJSON serializes non-finite metric values as null; encoding/json
// rejects NaN and infinities outright.
func (m Metric) MarshalJSON() ([]byte, error) {
	type jsonMetric struct {
		Name  string   `json:"name"`
		Value *float64 `json:"value"`
	}
	out := jsonMetric{Name: m.Name}
	if !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0) {
		v := m.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// Record holds the metrics for one dataset. Dataset is either an image
// identifier (segmentation), a category code (classification), or the
// aggregate pseudo-dataset.
type Record struct {
	Dataset string   `json:"dataset"`
	Metrics []Metric `json:"metrics"`
}

// Aggregate is the dataset name of the cross-category classification record.
const Aggregate = "aggregate"

// Kind categorizes a scoring failure. There is no error-code taxonomy beyond
// this; the message is what submitters see.
type Kind string

const (
	KindDecode         Kind = "decode"
	KindChannel        Kind = "channel"
	KindValueDomain    Kind = "value_domain"
	KindNoMatch        Kind = "no_match"
	KindAmbiguousMatch Kind = "ambiguous_match"
	KindShapeMismatch  Kind = "shape_mismatch"
	KindSchema         Kind = "schema"
	KindMissingValue   Kind = "missing_value"
	KindBadType        Kind = "bad_type"
	KindOutOfRange     Kind = "out_of_range"
	KindMissingRecords Kind = "missing_records"
	KindExtraRecords   Kind = "extra_records"
	KindSubmission     Kind = "submission"
)

// Error is the single reportable error produced by the engines.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds an *Error with a formatted submitter-facing message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}
