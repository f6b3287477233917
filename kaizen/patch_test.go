package kaizen

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestStatusPatch_OnlyImplementedTouchesUpdatedAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		status    string
		wantTouch bool
	}{
		{status: StatusImplemented, wantTouch: true},
		{status: "Open", wantTouch: false},
		{status: "implemented", wantTouch: false},
		{status: "Implemented ", wantTouch: false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			p := StatusPatch(tt.status, now)
			if p.Status == nil || *p.Status != tt.status {
				t.Fatalf("expected status %q to be set", tt.status)
			}
			if touched := p.UpdatedAt != nil; touched != tt.wantTouch {
				t.Errorf("expected touch=%v, got %v", tt.wantTouch, touched)
			}
		})
	}
}

func TestSingleFieldPatches(t *testing.T) {
	impact := ImpactPatch("high")
	if impact.Impact == nil || *impact.Impact != "high" || impact.UpdatedAt != nil || impact.Status != nil {
		t.Errorf("unexpected impact patch %+v", impact)
	}

	score := BenefitScorePatch("7")
	if score.BenefitScore == nil || *score.BenefitScore != "7" || score.UpdatedAt != nil {
		t.Errorf("unexpected benefit score patch %+v", score)
	}
}

func TestDetailPatch_OtherRequiresSentinel(t *testing.T) {
	now := time.Now()

	withOther := Benefits{"quality", BenefitOther}
	p := DetailPatch(Detail{Benefits: &withOther, Other: strPtr("less walking")}, "", now)
	if p.Other == nil || *p.Other != "less walking" {
		t.Error("expected other to be kept when benefits contain the sentinel")
	}

	without := Benefits{"quality"}
	p = DetailPatch(Detail{Benefits: &without, Other: strPtr("ignored")}, "", now)
	if p.Other != nil {
		t.Error("expected other to be dropped without the sentinel")
	}

	p = DetailPatch(Detail{Other: strPtr("ignored")}, "", now)
	if p.Other != nil || p.Benefits != nil {
		t.Error("expected other to be dropped when benefits are absent")
	}
}

func TestDetailPatch_ImageAndTimestamp(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	p := DetailPatch(Detail{Status: strPtr("Open")}, "", now)
	if p.UpdatedImage != nil {
		t.Error("expected no updatedImage without an upload")
	}
	if p.UpdatedAt != nil {
		t.Error("expected updatedAt untouched for non-terminal status")
	}

	p = DetailPatch(Detail{Status: strPtr(StatusImplemented)}, "https://cdn/x.png", now)
	if p.UpdatedImage == nil || *p.UpdatedImage != "https://cdn/x.png" {
		t.Error("expected updatedImage to be set")
	}
	if p.UpdatedAt == nil || !p.UpdatedAt.Equal(now) {
		t.Error("expected updatedAt to be refreshed on implementation")
	}
}

func TestDetailPatch_DoesNotAliasInput(t *testing.T) {
	b := Benefits{"cost"}
	p := DetailPatch(Detail{Benefits: &b}, "", time.Now())
	b[0] = "changed"
	if (*p.Benefits)[0] != "cost" {
		t.Error("patch benefits alias the caller's slice")
	}
}

func TestPatch_Apply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := Kaizen{
		ID:        "k1",
		Title:     "Reduce scrap",
		Status:    "Open",
		Impact:    "low",
		Benefits:  Benefits{"cost"},
		CreatedAt: created,
		UpdatedAt: created,
	}

	out := ImpactPatch("high").Apply(rec)
	if out.Impact != "high" || out.Status != "Open" || out.Title != "Reduce scrap" {
		t.Errorf("unexpected result %+v", out)
	}
	if !out.UpdatedAt.Equal(created) {
		t.Error("impact patch must not touch updatedAt")
	}
	if rec.Impact != "low" {
		t.Error("Apply must not modify its input")
	}

	later := created.Add(time.Hour)
	out = StatusPatch(StatusImplemented, later).Apply(rec)
	if !out.UpdatedAt.Equal(later) || out.Status != StatusImplemented {
		t.Errorf("unexpected result %+v", out)
	}
}

func TestPatch_IsEmpty(t *testing.T) {
	if !(Patch{}).IsEmpty() {
		t.Error("expected zero patch to be empty")
	}
	if ImpactPatch("x").IsEmpty() {
		t.Error("expected impact patch to be non-empty")
	}
	if !DetailPatch(Detail{}, "", time.Now()).IsEmpty() {
		t.Error("expected detail patch without fields to be empty")
	}
}
