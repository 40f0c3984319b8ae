package domain

// AnalysisResult is the outcome of a single analyzer run. Messages keep
// insertion order; Codes is a set; every failure carries its canonical
// suggestion. Results are treated as immutable once returned by an analyzer.
type AnalysisResult struct {
	OK          bool                   `json:"ok"`
	Messages    []string               `json:"messages,omitempty"`
	Codes       []DiagnosticCode       `json:"codes,omitempty"`
	Suggestions []string               `json:"suggestions,omitempty"`
	Stats       map[string]interface{} `json:"stats,omitempty"`
}

// NewAnalysisResult returns an empty passing result ready to accumulate findings.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		OK:    true,
		Stats: make(map[string]interface{}),
	}
}

// AddFailure records a finding: the message is appended in order, the code is
// added to the set once, and the canonical suggestion is attached. The result
// flips to not-OK.
func (r *AnalysisResult) AddFailure(code DiagnosticCode, message string) {
	r.OK = false
	r.Messages = append(r.Messages, message)
	if !r.HasCode(code) {
		r.Codes = append(r.Codes, code)
		if s := SuggestionFor(code); s != "" {
			r.Suggestions = append(r.Suggestions, s)
		}
	}
}

// AddNote appends an informational message without failing the result and
// without attaching a code.
func (r *AnalysisResult) AddNote(message string) {
	r.Messages = append(r.Messages, message)
}

// HasCode reports whether the result already carries the given code.
func (r *AnalysisResult) HasCode(code DiagnosticCode) bool {
	for _, c := range r.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// SetStat records a named stat value (numbers, booleans and strings only, to
// keep the serialization boundary compatible with the legacy report shape).
func (r *AnalysisResult) SetStat(key string, value interface{}) {
	if r.Stats == nil {
		r.Stats = make(map[string]interface{})
	}
	r.Stats[key] = value
}

// HasSecurityCritical reports whether any accumulated code is security critical.
func (r *AnalysisResult) HasSecurityCritical() bool {
	for _, c := range r.Codes {
		if IsSecurityCritical(c) {
			return true
		}
	}
	return false
}
