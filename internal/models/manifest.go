package models

// These structs define the JSON payloads consumed by the report-assembler
// CLI. A manifest describes a batch of independent assembly jobs.

// Manifest is the top-level input document.
type Manifest struct {
	Jobs []AssemblyJob `json:"jobs"`
}

// AssemblyJob describes one report to assemble: the pre-rendered primary
// report, the attachment sources to append, and naming metadata.
type AssemblyJob struct {
	ReportPath string           `json:"reportPath"`
	Kind       string           `json:"kind,omitempty"`
	Prefix     string           `json:"prefix"`
	ClaimType  string           `json:"claimType,omitempty"`
	Phase      string           `json:"phase,omitempty"`
	Sources    []ManifestSource `json:"sources"`
}

// ManifestSource mirrors AttachmentSource in manifest form. Attachments may
// be https URLs, gs:// object URLs, or local file paths. A gs:// prefix
// ending in "/" is expanded to the objects beneath it, in lexical order.
type ManifestSource struct {
	Identifier  string   `json:"identifier"`
	Attachments []string `json:"attachments"`
}

// AssemblyResult is the per-job summary written to stdout after a batch run.
type AssemblyResult struct {
	Output     string `json:"output"`
	Pages      int    `json:"pages"`
	PagesAdded int    `json:"pagesAdded"`
	Skipped    int    `json:"skipped"`
}
