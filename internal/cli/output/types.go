package output

// JSON output structures shared by commands. Field names are the stable
// machine interface; keep them backwards compatible.

// ScanOutput is the JSON document emitted by the scan command.
type ScanOutput struct {
	Manifests []ManifestDetail `json:"manifests"`
	Summary   ScanSummary      `json:"summary"`
}

// ManifestDetail describes one discovered manifest.
type ManifestDetail struct {
	Path        string        `json:"path"`
	Package     string        `json:"package,omitempty"`
	Qualifier   string        `json:"qualifier,omitempty"`
	Description string        `json:"description,omitempty"`
	OutputPath  string        `json:"output_path"`
	Entries     []EntryDetail `json:"entries,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// EntryDetail describes one manifest entry and its tagged literals.
type EntryDetail struct {
	Name     string          `json:"name"`
	Line     int             `json:"line"`
	Literals []LiteralDetail `json:"literals,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// LiteralDetail describes one tagged literal inside an entry value.
// EndColumn is exclusive, so editor tooling can highlight the literal range.
type LiteralDetail struct {
	Text      string `json:"text"`
	Kind      string `json:"kind"`
	Payload   int    `json:"payload_bytes"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndColumn int    `json:"end_column"`
}

// ScanSummary aggregates scan counters.
type ScanSummary struct {
	Total      int   `json:"total"`
	Parsed     int   `json:"parsed"`
	Failed     int   `json:"failed"`
	DurationMS int64 `json:"duration_ms"`
}

// ExpandOutput is the JSON document emitted by the expand command.
type ExpandOutput struct {
	RunID   string        `json:"run_id"`
	Files   []FileDetail  `json:"files"`
	Summary ExpandSummary `json:"summary"`
}

// FileDetail describes one manifest processed during a run.
type FileDetail struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	Entries    int    `json:"entries"`
	DurationMS int64  `json:"duration_ms"`
}

// ExpandSummary aggregates run counters.
type ExpandSummary struct {
	Total      int   `json:"total"`
	Written    int   `json:"written"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	Pruned     int   `json:"pruned"`
	DurationMS int64 `json:"duration_ms"`
}

// RunsOutput is the JSON document emitted by the runs command.
type RunsOutput struct {
	Runs []RunDetail `json:"runs"`
}

// RunDetail describes one recorded generation run. Files is populated only
// when a single run is inspected.
type RunDetail struct {
	ID          string       `json:"id"`
	StartedAt   string       `json:"started_at"`
	CompletedAt string       `json:"completed_at,omitempty"`
	Status      string       `json:"status"`
	Total       int          `json:"files_total"`
	Written     int          `json:"files_written"`
	Skipped     int          `json:"files_skipped"`
	Failed      int          `json:"files_failed"`
	Error       string       `json:"error,omitempty"`
	Files       []FileDetail `json:"files,omitempty"`
}

// ExplainOutput is the JSON document emitted by the explain command.
type ExplainOutput struct {
	Input    string `json:"input"`
	Expanded string `json:"expanded,omitempty"`
	Error    string `json:"error,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}
