package httpapi

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kaizen/kaizen"
)

// field describes a single-field update endpoint.
type field struct {
	name  string
	label string
	patch func(value string, now time.Time) kaizen.Patch
}

var (
	statusField = field{
		name:  "status",
		label: "Status",
		patch: kaizen.StatusPatch,
	}
	impactField = field{
		name:  "impact",
		label: "Impact",
		patch: func(v string, _ time.Time) kaizen.Patch { return kaizen.ImpactPatch(v) },
	}
	benefitScoreField = field{
		name:  "benefitscore",
		label: "Benefit score",
		patch: func(v string, _ time.Time) kaizen.Patch { return kaizen.BenefitScorePatch(v) },
	}
)

func (f field) validate(value string) error {
	err := validation.Errors{
		f.name: validation.Validate(value, validation.Required.Error(f.label+" is required")),
	}.Filter()
	if err != nil {
		return goerrors.FromOzzoValidation(err, f.label+" is required").
			WithCode(400).
			WithTextCode("FIELD_REQUIRED")
	}
	return nil
}
