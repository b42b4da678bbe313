package v1

// Description is one stored entity description.
type Description struct {
	Scope       string `json:"scope"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	Stale       bool   `json:"stale"`
	Text        string `json:"text"`
}

// Report summarizes freshness over the workspace.
type Report struct {
	Total int `json:"total"`
	Fresh int `json:"fresh"`
	Stale int `json:"stale"`
}

// RunStats summarizes one generation run.
type RunStats struct {
	Files     int64 `json:"files"`
	Entities  int64 `json:"entities"`
	Generated int64 `json:"generated"`
	Reverted  int64 `json:"reverted"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}
