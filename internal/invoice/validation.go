package invoice

import (
	"github.com/rs/zerolog"
	"mufawter/internal/logger"
	"mufawter/pkg/models"
)

// MinPopulatedFields is how many of ExpectedFields must carry a value for an
// extraction to count as an invoice.
const MinPopulatedFields = 5

// Validator checks extraction results.
type Validator struct {
	minimum int
	log     zerolog.Logger
}

// NewValidator creates a Validator with the MinPopulatedFields threshold.
func NewValidator() *Validator {
	return &Validator{
		minimum: MinPopulatedFields,
		log:     logger.WithComponent("invoice-validation"),
	}
}

// Report lists which expected fields were found.
type Report struct {
	Populated []string
	Missing   []string
}

// Validate counts the populated ExpectedFields of an extraction output and
// returns a *ValidationError wrapping ErrNotAnInvoice below the threshold.
// "Not Mentioned", "none", "null", "n/a" and blanks count as missing.
func (v *Validator) Validate(output models.ExtractedFields) (*Report, error) {
	report := &Report{}
	for _, name := range ExpectedFields {
		f, _ := LookupField(name)
		if value(output, f) != "" {
			report.Populated = append(report.Populated, name)
		} else {
			report.Missing = append(report.Missing, name)
		}
	}

	v.log.Debug().
		Int("populated", len(report.Populated)).
		Int("expected", len(ExpectedFields)).
		Strs("missing", report.Missing).
		Msg("Extraction validated")

	if len(report.Populated) < v.minimum {
		v.log.Warn().
			Int("populated", len(report.Populated)).
			Int("minimum", v.minimum).
			Msg("Extraction rejected as not an invoice")
		return report, NewValidationError(len(report.Populated), len(ExpectedFields), v.minimum, report.Missing)
	}
	return report, nil
}
