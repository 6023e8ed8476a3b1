// Package diagnostics provides the stable, machine-readable diagnostic
// report format emitted by the dependency analyzer, the type checker, and
// the pattern/exhaustiveness analyzer (§6-7 of the spec). Rendering these
// reports to a human-facing transcript is an external concern; this
// package's obligation stops at producing a deterministic, serializable
// Report.
//
// Grounded on funvibe/funxy's internal/analyzer usage of
// diagnostics.NewError(code, token, message) and *diagnostics.DiagnosticError
// (deduplicated by "line:col:code"), and on sunholo/ailang's
// internal/errors Report type (Schema/Code/Phase/Message/Span/Data, stable
// JSON).
package diagnostics

import (
	"encoding/json"
	"sort"

	"github.com/catapillie/marin/internal/token"
)

// Severity distinguishes diagnostics that gate later phases from ones that
// don't (§7: "a compilation is fatal if any diagnostic is of error
// severity; warnings never gate later phases").
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

// LabelKind distinguishes the primary span a diagnostic is anchored to from
// secondary spans that add context (§6).
type LabelKind string

const (
	Primary   LabelKind = "primary"
	Secondary LabelKind = "secondary"
)

// Label points a diagnostic at a source span with an explanatory message.
type Label struct {
	Kind    LabelKind  `json:"kind"`
	Span    token.Span `json:"span"`
	Message string     `json:"message,omitempty"`
}

// Report is one diagnostic: a stable code, a human message, a severity, and
// zero or more labels, plus free-standing notes (e.g. "first import was
// here" for a file-reimported warning — see original_source's
// com/reporting/note.rs).
type Report struct {
	Schema   string         `json:"schema"`
	Code     Code           `json:"code"`
	Phase    string         `json:"phase"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Labels   []Label        `json:"labels,omitempty"`
	Notes    []string       `json:"notes,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

const schema = "marin.diagnostic/v1"

// New creates a Report with the given code, severity, and message, anchored
// by a single primary span.
func New(code Code, severity Severity, phase string, span token.Span, message string) *Report {
	return &Report{
		Schema:   schema,
		Code:     code,
		Phase:    phase,
		Severity: severity,
		Message:  message,
		Labels:   []Label{{Kind: Primary, Span: span}},
	}
}

// NewError is a convenience wrapper for the common error-severity case,
// mirroring the teacher's diagnostics.NewError(code, token, message) shape.
func NewError(code Code, phase string, tok token.Token, message string) *Report {
	return New(code, Error, phase, tok.Span, message)
}

// NewWarning is the warning-severity counterpart of NewError.
func NewWarning(code Code, phase string, tok token.Token, message string) *Report {
	return New(code, Warning, phase, tok.Span, message)
}

// WithSecondary appends a secondary label.
func (r *Report) WithSecondary(span token.Span, message string) *Report {
	r.Labels = append(r.Labels, Label{Kind: Secondary, Span: span, Message: message})
	return r
}

// WithNote appends a free-standing note.
func (r *Report) WithNote(note string) *Report {
	r.Notes = append(r.Notes, note)
	return r
}

// WithData attaches a structured data field (e.g. both side type strings
// for a type_mismatch report).
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// ToJSON renders the report deterministically (map keys sorted).
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Batch collects reports for a single dependency-analysis or compile run.
// Diagnostic emission is deferred: phases append to a Batch and the caller
// decides, after the phase completes, whether to continue (§5).
type Batch struct {
	Reports []*Report
}

// Add appends a report.
func (b *Batch) Add(r *Report) {
	b.Reports = append(b.Reports, r)
}

// Merge appends another batch's reports.
func (b *Batch) Merge(other *Batch) {
	if other == nil {
		return
	}
	b.Reports = append(b.Reports, other.Reports...)
}

// HasErrors reports whether any report in the batch has error severity.
func (b *Batch) HasErrors() bool {
	for _, r := range b.Reports {
		if r.Severity == Error {
			return true
		}
	}
	return false
}

// Sorted returns the reports ordered by span, for deterministic output
// (Testable Property #5: identical input implies an identical diagnostic
// sequence).
func (b *Batch) Sorted() []*Report {
	out := make([]*Report, len(b.Reports))
	copy(out, b.Reports)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].primarySpan(), out[j].primarySpan()
		if si.File != sj.File {
			return si.File < sj.File
		}
		if si.Start.Line != sj.Start.Line {
			return si.Start.Line < sj.Start.Line
		}
		return si.Start.Column < sj.Start.Column
	})
	return out
}

func (r *Report) primarySpan() token.Span {
	for _, l := range r.Labels {
		if l.Kind == Primary {
			return l.Span
		}
	}
	if len(r.Labels) > 0 {
		return r.Labels[0].Span
	}
	return token.Span{}
}
