package pricing

import (
	"testing"

	"pgregory.net/rapid"
)

func genQuote(t *rapid.T) Quote {
	return Quote{
		BookingPhase:       rapid.SampledFrom([]string{PhaseEarlyBird, PhaseRegular, PhaseSpot}).Draw(t, "phase"),
		Role:               rapid.SampledFrom([]string{RoleAOA, RoleNonAOA, RolePGS}).Draw(t, "role"),
		ConferenceBase:     rapid.Int64Range(0, 20000).Draw(t, "conference"),
		WorkshopAddOn:      rapid.Int64Range(0, 5000).Draw(t, "workshop"),
		AoaCourseBase:      rapid.Int64Range(0, 8000).Draw(t, "course"),
		LifeMembershipBase: rapid.Int64Range(0, 8000).Draw(t, "life"),
	}
}

func genSelection(t *rapid.T) Selection {
	return Selection{
		AddWorkshop:         rapid.Bool().Draw(t, "addWorkshop"),
		SelectedWorkshop:    rapid.SampledFrom([]string{"", "pocus", "labour-analgesia"}).Draw(t, "selectedWorkshop"),
		AddAoaCourse:        rapid.Bool().Draw(t, "addCourse"),
		AddLifeMembership:   rapid.Bool().Draw(t, "addLife"),
		AccompanyingPersons: rapid.IntRange(0, MaxAccompanyingPersons).Draw(t, "accompanying"),
	}
}

// Each accompanying person adds exactly the flat fee to the base amount.
func TestComputeAccompanyingLinear(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := genQuote(t)
		sel := genSelection(t)

		prev := Compute(q, sel, 0)
		sel.AccompanyingPersons++
		next := Compute(q, sel, 0)

		if next.TotalBase-prev.TotalBase != AccompanyingPersonFee {
			t.Fatalf("adding one person changed base by %d, want %d",
				next.TotalBase-prev.TotalBase, AccompanyingPersonFee)
		}
		if next.AccompanyingBase != prev.AccompanyingBase+AccompanyingPersonFee {
			t.Fatalf("accompanying base %d, want %d", next.AccompanyingBase, prev.AccompanyingBase+AccompanyingPersonFee)
		}
	})
}

// The base amount is exactly the sum of its published components, and
// the derived totals follow the fixed formula.
func TestComputeAdditivity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := genQuote(t)
		sel := genSelection(t)
		discount := rapid.Int64Range(0, 30000).Draw(t, "discount")

		b := Compute(q, sel, discount)

		sum := b.PackageBase + b.WorkshopAddOn + b.AoaCourseBase + b.LifeMembershipBase + b.AccompanyingBase
		if b.TotalBase != sum {
			t.Fatalf("total base %d, component sum %d", b.TotalBase, sum)
		}
		if b.SubtotalWithGST != b.TotalBase+b.TotalGST {
			t.Fatalf("subtotal %d != base %d + gst %d", b.SubtotalWithGST, b.TotalBase, b.TotalGST)
		}
		if b.TotalAmount != b.SubtotalWithGST+b.ProcessingFee-b.CouponDiscount {
			t.Fatalf("total %d breaks the formula", b.TotalAmount)
		}
		if b.CouponDiscount > b.PackageBase {
			t.Fatalf("discount %d exceeds conference base %d", b.CouponDiscount, b.PackageBase)
		}
		if b.CouponDiscount < 0 {
			t.Fatalf("negative discount %d", b.CouponDiscount)
		}
	})
}

// Compute is pure: the same inputs always produce the same breakdown,
// and computing from a breakdown's own inputs is idempotent.
func TestComputeDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := genQuote(t)
		sel := genSelection(t)
		discount := rapid.Int64Range(0, 30000).Draw(t, "discount")

		first := Compute(q, sel, discount)
		second := Compute(q, sel, discount)
		if first != second {
			t.Fatalf("recompute diverged: %+v vs %+v", first, second)
		}
	})
}

// BalanceDue is never negative and never exceeds the total.
func TestBalanceDueBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.Int64Range(0, 100000).Draw(t, "total")
		paid := rapid.Int64Range(0, 200000).Draw(t, "paid")

		due := BalanceDue(total, paid)
		if due < 0 {
			t.Fatalf("negative balance %d", due)
		}
		if due > total {
			t.Fatalf("balance %d exceeds total %d", due, total)
		}
	})
}
