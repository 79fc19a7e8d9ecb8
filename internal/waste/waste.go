package waste

import (
	"fmt"
	"strings"
)

// Category is one of the six waste categories the classifier can return.
type Category string

const (
	Biodegradable Category = "Biodegradable Waste"
	Recyclable    Category = "Recyclable Waste"
	NonRecyclable Category = "Non-Recyclable Waste"
	Hazardous     Category = "Hazardous Waste"
	Biomedical    Category = "Biomedical Waste"
	EWaste        Category = "E-waste"
)

// Categories lists the six categories in their canonical display order.
func Categories() []Category {
	return []Category{Biodegradable, Recyclable, NonRecyclable, Hazardous, Biomedical, EWaste}
}

// disposalMethods is the guidance table: every category maps to exactly one
// prescribed disposal method. Disposal method is a pure function of category.
var disposalMethods = map[Category]string{
	Biodegradable: "Composting or Anaerobic Digestion (for biogas/fertilizer)",
	Recyclable:    "Recycling at a municipal facility",
	NonRecyclable: "Landfill or Incineration with energy recovery",
	Hazardous:     "Take to a designated Hazardous Waste Collection Center (Neutralization/Stabilization)",
	Biomedical:    "Specialized Medical Waste Disposal (Autoclaving or Incineration)",
	EWaste:        "Certified E-waste Recycler or Manufacturer Take-back Program",
}

// DisposalMethod returns the prescribed disposal method for a category.
func DisposalMethod(c Category) string {
	return disposalMethods[c]
}

// Number returns the 1-based display number of a category (1..6).
func (c Category) Number() int {
	for i, cat := range Categories() {
		if cat == c {
			return i + 1
		}
	}
	return 0
}

// Normalize maps a free-text waste type string to a known category. The input
// is case-folded and stripped of the word "waste", hyphens, and whitespace
// before matching. The boolean reports whether the string matched a known
// category; on no match the Non-Recyclable category is returned as the
// display fallback.
func Normalize(wasteType string) (Category, bool) {
	key := strings.ToLower(wasteType)
	key = strings.ReplaceAll(key, "waste", "")
	key = strings.ReplaceAll(key, "-", "")
	key = strings.Join(strings.Fields(key), "")

	switch key {
	case "biodegradable":
		return Biodegradable, true
	case "recyclable":
		return Recyclable, true
	case "nonrecyclable":
		return NonRecyclable, true
	case "hazardous":
		return Hazardous, true
	case "biomedical":
		return Biomedical, true
	case "e", "ewaste", "electronic":
		return EWaste, true
	}
	return NonRecyclable, false
}

// Classification is the structured outcome of one classification call.
// Immutable once produced; discarded on session reset.
type Classification struct {
	WasteType      string  `json:"waste_type"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
	DisposalMethod string  `json:"disposal_method"`
}

// Category returns the display category for the returned waste type,
// falling back to Non-Recyclable for unrecognized values.
func (c *Classification) Category() Category {
	cat, _ := Normalize(c.WasteType)
	return cat
}

// Validate enforces the closed taxonomy on a model response: the waste type
// must be one of the six category labels, the disposal method must equal the
// guidance-table value for that category, and confidence must be in [0,1].
func (c *Classification) Validate() error {
	cat, ok := Normalize(c.WasteType)
	if !ok {
		return fmt.Errorf("waste_type %q is not one of the six known categories", c.WasteType)
	}
	if c.DisposalMethod != DisposalMethod(cat) {
		return fmt.Errorf("disposal_method %q does not match the guidance for %s", c.DisposalMethod, cat)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v is outside [0, 1]", c.Confidence)
	}
	if c.Reasoning == "" {
		return fmt.Errorf("reasoning is empty")
	}
	return nil
}
