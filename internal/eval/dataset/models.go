package dataset

import "github.com/neurobin-systems/neurobin/internal/waste"

// Record is one labeled waste image from an evaluation dataset.
type Record struct {
	// Primary key
	ID string `json:"id" parquet:"id"`

	// Image location; exactly one of path or URL is expected
	ImagePath string `json:"image_path" parquet:"image_path"`
	ImageURL  string `json:"image_url" parquet:"image_url"`

	// Ground truth label, free-form ("E-waste", "biodegradable waste", ...)
	Label string `json:"label" parquet:"label"`

	// Optional provenance note
	Source string `json:"source" parquet:"source"`
}

// Category resolves the ground-truth label against the six-category set.
func (r *Record) Category() (waste.Category, bool) {
	return waste.Normalize(r.Label)
}

// HasImage reports whether the record points at any image at all.
func (r *Record) HasImage() bool {
	return r.ImagePath != "" || r.ImageURL != ""
}
