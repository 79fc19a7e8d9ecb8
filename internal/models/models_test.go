package models

import (
	"testing"

	"github.com/neurobin-systems/neurobin/internal/waste"
)

func TestNewResultView(t *testing.T) {
	view := NewResultView(&waste.Classification{
		WasteType:      "E-waste",
		Confidence:     0.92,
		Reasoning:      "Visible circuit board",
		DisposalMethod: "Certified E-waste Recycler or Manufacturer Take-back Program",
	})

	if view.CategoryNumber != 6 {
		t.Errorf("category number = %d, want 6", view.CategoryNumber)
	}
	if view.CategoryLabel != "E-waste" {
		t.Errorf("category label = %q, want E-waste", view.CategoryLabel)
	}
	if view.Confidence != "92.0%" {
		t.Errorf("confidence = %q, want 92.0%%", view.Confidence)
	}
	if view.Reasoning != "Visible circuit board" {
		t.Errorf("reasoning = %q, want verbatim text", view.Reasoning)
	}
}

func TestNewResultViewFallsBackForUnknownType(t *testing.T) {
	view := NewResultView(&waste.Classification{
		WasteType:      "Mystery Substance",
		Confidence:     0.5,
		Reasoning:      "unclear",
		DisposalMethod: "Landfill or Incineration with energy recovery",
	})

	// Display styling falls back to Non-Recyclable, the original string stays.
	if view.CategoryNumber != 3 {
		t.Errorf("category number = %d, want 3", view.CategoryNumber)
	}
	if view.WasteType != "Mystery Substance" {
		t.Errorf("waste type = %q, want verbatim original", view.WasteType)
	}
}

func TestCategoryList(t *testing.T) {
	list := CategoryList()
	if len(list) != 6 {
		t.Fatalf("category list has %d entries, want 6", len(list))
	}
	if list[0].Name != "Biodegradable Waste" || list[0].Number != 1 {
		t.Errorf("first category = %+v, want Biodegradable Waste #1", list[0])
	}
	if list[5].Name != "E-waste" || list[5].Number != 6 {
		t.Errorf("last category = %+v, want E-waste #6", list[5])
	}
	for _, info := range list {
		if info.DisposalMethod == "" {
			t.Errorf("category %s has empty disposal method", info.Name)
		}
	}
}
