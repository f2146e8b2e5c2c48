package ingest

// Outcome records what happened to one playlist entry. Every processed
// entry lands in exactly one of the three buckets of a Result.
type Outcome struct {
	Type       string `json:"type,omitempty"`
	Title      string `json:"titulo,omitempty"`
	GroupTitle string `json:"groupTitle,omitempty"`
	URL        string `json:"url,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Result groups entry outcomes by disposition. It is returned by value and
// merged explicitly; call sites never share a mutable reference.
type Result struct {
	Success []Outcome `json:"success"`
	Exists  []Outcome `json:"exists"`
	Error   []Outcome `json:"error"`
}

// NewResult returns a Result with empty, non-nil buckets so the JSON
// encoding is stable.
func NewResult() Result {
	return Result{Success: []Outcome{}, Exists: []Outcome{}, Error: []Outcome{}}
}

// Merge appends all of other's outcomes to r.
func (r *Result) Merge(other Result) {
	r.Success = append(r.Success, other.Success...)
	r.Exists = append(r.Exists, other.Exists...)
	r.Error = append(r.Error, other.Error...)
}

// Count returns the total number of recorded outcomes.
func (r *Result) Count() int {
	return len(r.Success) + len(r.Exists) + len(r.Error)
}
