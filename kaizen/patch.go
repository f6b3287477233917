package kaizen

import (
	"slices"
	"time"
)

// Patch is a partial update. Nil fields are left untouched by the store.
type Patch struct {
	Status             *string
	Impact             *string
	BenefitScore       *string
	TeamMembers        *string
	ImplementationCost *string
	AnnualSavings      *string
	ImplementedAction  *string
	Benefits           *Benefits
	Other              *string
	UpdatedImage       *string
	UpdatedAt          *time.Time
}

// Detail carries the fields of a full-detail update as received from a client.
type Detail struct {
	TeamMembers        *string
	ImplementationCost *string
	AnnualSavings      *string
	ImplementedAction  *string
	Impact             *string
	Benefits           *Benefits
	Status             *string
	Other              *string
}

// StatusPatch sets status, refreshing UpdatedAt only on entry into StatusImplemented.
func StatusPatch(status string, now time.Time) Patch {
	p := Patch{Status: &status}
	p.touchIfImplemented(now)
	return p
}

// ImpactPatch sets impact only.
func ImpactPatch(impact string) Patch {
	return Patch{Impact: &impact}
}

// BenefitScorePatch sets the benefit score only.
func BenefitScorePatch(score string) Patch {
	return Patch{BenefitScore: &score}
}

// DetailPatch builds the full-detail update. Other is kept only when the
// submitted benefits contain BenefitOther, and updatedImage only when a new
// image reference was produced.
func DetailPatch(d Detail, updatedImage string, now time.Time) Patch {
	p := Patch{
		TeamMembers:        d.TeamMembers,
		ImplementationCost: d.ImplementationCost,
		AnnualSavings:      d.AnnualSavings,
		ImplementedAction:  d.ImplementedAction,
		Impact:             d.Impact,
		Status:             d.Status,
	}
	if d.Benefits != nil {
		b := slices.Clone(*d.Benefits)
		if b == nil {
			b = Benefits{}
		}
		p.Benefits = &b
		if b.HasOther() && d.Other != nil {
			other := *d.Other
			p.Other = &other
		}
	}
	if updatedImage != "" {
		p.UpdatedImage = &updatedImage
	}
	p.touchIfImplemented(now)
	return p
}

func (p *Patch) touchIfImplemented(now time.Time) {
	if p.Status != nil && *p.Status == StatusImplemented {
		t := now
		p.UpdatedAt = &t
	}
}

// IsEmpty reports whether applying p would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.Impact == nil && p.BenefitScore == nil &&
		p.TeamMembers == nil && p.ImplementationCost == nil && p.AnnualSavings == nil &&
		p.ImplementedAction == nil && p.Benefits == nil && p.Other == nil &&
		p.UpdatedImage == nil && p.UpdatedAt == nil
}

// Apply returns k with p applied. Stores without native partial updates use it
// to compute the post-update state; tests use it as the reference semantics.
func (p Patch) Apply(k Kaizen) Kaizen {
	out := k.Clone()
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.Status, p.Status)
	set(&out.Impact, p.Impact)
	set(&out.BenefitScore, p.BenefitScore)
	set(&out.TeamMembers, p.TeamMembers)
	set(&out.ImplementationCost, p.ImplementationCost)
	set(&out.AnnualSavings, p.AnnualSavings)
	set(&out.ImplementedAction, p.ImplementedAction)
	set(&out.Other, p.Other)
	set(&out.UpdatedImage, p.UpdatedImage)
	if p.Benefits != nil {
		out.Benefits = slices.Clone(*p.Benefits)
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	return out
}
