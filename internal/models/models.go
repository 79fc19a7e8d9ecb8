package models

import (
	"fmt"

	"github.com/neurobin-systems/neurobin/internal/waste"
)

// CategoryInfo describes one waste category for display purposes.
type CategoryInfo struct {
	Number         int    `json:"number"`
	Name           string `json:"name"`
	DisposalMethod string `json:"disposal_method"`
}

// CategoryList returns the six categories with their guidance, in canonical
// display order.
func CategoryList() []CategoryInfo {
	categories := waste.Categories()
	list := make([]CategoryInfo, 0, len(categories))
	for _, cat := range categories {
		list = append(list, CategoryInfo{
			Number:         cat.Number(),
			Name:           string(cat),
			DisposalMethod: waste.DisposalMethod(cat),
		})
	}
	return list
}

// ResultView is the presentation form of a classification result. The
// category number and label come from the normalized waste type (unknown
// values display as Non-Recyclable), while the returned waste type and
// reasoning are shown verbatim.
type ResultView struct {
	CategoryNumber int    `json:"category_number"`
	CategoryLabel  string `json:"category_label"`
	WasteType      string `json:"waste_type"`
	Confidence     string `json:"confidence"`
	Reasoning      string `json:"reasoning"`
	DisposalMethod string `json:"disposal_method"`
}

// NewResultView builds the display form of a classification.
func NewResultView(c *waste.Classification) ResultView {
	cat := c.Category()
	return ResultView{
		CategoryNumber: cat.Number(),
		CategoryLabel:  string(cat),
		WasteType:      c.WasteType,
		Confidence:     fmt.Sprintf("%.1f%%", c.Confidence*100),
		Reasoning:      c.Reasoning,
		DisposalMethod: c.DisposalMethod,
	}
}
