// Package kaizen defines the improvement-suggestion record, the partial updates
// that can be applied to it, and the repository contract every store implements.
package kaizen

import (
	"slices"
	"time"

	"github.com/uptrace/bun"
)

// StatusImplemented is the terminal status. Entering it refreshes UpdatedAt.
const StatusImplemented = "Implemented"

// BenefitOther marks a benefits list whose elaboration lives in Kaizen.Other.
const BenefitOther = "other"

// Benefits is the ordered set of benefit tags attached to a record.
type Benefits []string

// HasOther reports whether the free-text "other" benefit was selected.
func (b Benefits) HasOther() bool {
	return slices.Contains(b, BenefitOther)
}

// Kaizen is a single improvement-suggestion record.
// JSON names follow the wire format clients already send.
type Kaizen struct {
	bun.BaseModel `bun:"table:kaizens" json:"-" bson:"-"`

	ID                 string    `bun:"id,pk" json:"_id" bson:"_id"`
	Plant              string    `bun:"plant" json:"Plant" bson:"Plant"`
	Department         string    `bun:"department" json:"Kaizen_Department" bson:"Kaizen_Department"`
	Cell               string    `bun:"cell" json:"Kaizen_For_Cell" bson:"Kaizen_For_Cell"`
	Source             string    `bun:"source" json:"Kaizen_Source" bson:"Kaizen_Source"`
	ResultArea         string    `bun:"result_area" json:"Result_Area" bson:"Result_Area"`
	Title              string    `bun:"title" json:"Kaizen_Title" bson:"Kaizen_Title"`
	Problem            string    `bun:"problem" json:"Present_Problem" bson:"Present_Problem"`
	Suggestion         string    `bun:"suggestion" json:"Kaizen_Suggestion" bson:"Kaizen_Suggestion"`
	Image              string    `bun:"image" json:"image" bson:"image"`
	UpdatedImage       string    `bun:"updated_image" json:"updatedImage" bson:"updatedImage"`
	Username           string    `bun:"username" json:"username" bson:"username"`
	Company            string    `bun:"company" json:"company" bson:"company"`
	Status             string    `bun:"status" json:"status" bson:"status"`
	AnnualSavings      string    `bun:"annual_savings" json:"annualSavings" bson:"annualSavings"`
	Benefits           Benefits  `bun:"benefits,type:json" json:"benefits" bson:"benefits"`
	Other              string    `bun:"other" json:"other,omitempty" bson:"other,omitempty"`
	Impact             string    `bun:"impact" json:"impact" bson:"impact"`
	ImplementationCost string    `bun:"implementation_cost" json:"implementationCost" bson:"implementationCost"`
	ImplementedAction  string    `bun:"implemented_action" json:"implementedAction" bson:"implementedAction"`
	TeamMembers        string    `bun:"team_members" json:"teamMembers" bson:"teamMembers"`
	BenefitScore       string    `bun:"benefit_score" json:"benefitscore" bson:"benefitscore"`
	CreatedAt          time.Time `bun:"created_at,notnull" json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time `bun:"updated_at,notnull" json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a copy that shares no slices with k.
func (k Kaizen) Clone() Kaizen {
	if k.Benefits != nil {
		k.Benefits = slices.Clone(k.Benefits)
	}
	return k
}

// Stamp prepares a new record for insertion: benefits are never nil and both
// timestamps start at now. An "other" elaboration without the sentinel is dropped.
func (k *Kaizen) Stamp(now time.Time) {
	if k.Benefits == nil {
		k.Benefits = Benefits{}
	}
	if !k.Benefits.HasOther() {
		k.Other = ""
	}
	k.CreatedAt = now
	k.UpdatedAt = now
}

// CloneAll deep-copies a slice of records.
func CloneAll(records []Kaizen) []Kaizen {
	if records == nil {
		return nil
	}
	out := make([]Kaizen, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
