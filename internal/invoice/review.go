package invoice

import (
	"maps"
	"strings"

	"mufawter/pkg/models"
)

// ParseOverrides turns "Field=Value" pairs into a map keyed by the canonical
// field name. Later pairs win.
func ParseOverrides(pairs []string) (map[string]string, error) {
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, &OverrideError{Input: pair, Message: "expected Field=Value"}
		}
		f, found := LookupField(name)
		if !found {
			return nil, &OverrideError{Input: pair, Message: "unknown field " + strings.TrimSpace(name)}
		}
		overrides[f.Name] = strings.TrimSpace(val)
	}
	return overrides, nil
}

// ApplyOverrides returns a copy of output with the overrides set under their
// canonical names. Aliases of an overridden field are dropped so the override
// is what gets read.
func ApplyOverrides(output models.ExtractedFields, overrides map[string]string) models.ExtractedFields {
	merged := make(models.ExtractedFields, len(output)+len(overrides))
	maps.Copy(merged, output)

	for name, val := range overrides {
		f, ok := LookupField(name)
		if !ok {
			continue
		}
		for k := range merged {
			for _, key := range f.Keys() {
				if strings.EqualFold(k, key) {
					delete(merged, k)
				}
			}
		}
		merged[f.Name] = val
	}
	return merged
}

// ToSaveRequest builds the save-analyzed body from a reviewed analysis.
// Placeholder values are sent as empty strings. The category comes from the
// analysis when resolved, otherwise it is normalized from the output.
func ToSaveRequest(analysis models.Analysis, imageURL string) (models.SaveRequest, error) {
	if strings.TrimSpace(imageURL) == "" {
		return models.SaveRequest{}, ErrMissingImage
	}

	req := models.SaveRequest{
		ImageURL:    imageURL,
		InvoiceType: analysis.InvoiceType,
		AIInsight:   analysis.AIInsight,
		Items:       analysis.Output.Items(),
	}
	for _, f := range Fields {
		if v := value(analysis.Output, f); v != "" {
			f.set(&req, v)
		}
	}

	switch {
	case analysis.Category.Resolved():
		req.Category = analysis.Category
	default:
		req.Category = models.NormalizeCategory(analysis.Output.String("Category", "category"))
	}
	if req.InvoiceType == "" {
		req.InvoiceType = req.Category.EN
	}
	if req.Items == nil {
		req.Items = []models.Item{}
	}
	return req, nil
}
