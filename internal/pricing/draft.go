package pricing

// Draft is the in-progress registration a client edits before
// submission. It enforces the toggle rules the registration form
// applies: AOA members pick Workshop or Certified Course, not both,
// and add-ons already paid for cannot be removed.
type Draft struct {
	Role      string
	Selection Selection
	// Locked marks add-ons already purchased on a PAID registration.
	Locked Selection
}

// NewDraft seeds a draft from an existing selection (empty for a fresh
// registration). locked carries the paid add-ons that can no longer be
// unchecked.
func NewDraft(role string, current, locked Selection) *Draft {
	return &Draft{Role: role, Selection: current, Locked: locked}
}

// SetWorkshop toggles the workshop add-on. For AOA members turning it
// on clears the certified course.
func (d *Draft) SetWorkshop(on bool) {
	if !on {
		if d.Locked.AddWorkshop {
			return
		}
		d.Selection.AddWorkshop = false
		d.Selection.SelectedWorkshop = ""
		return
	}
	d.Selection.AddWorkshop = true
	if d.Role == RoleAOA && !d.Locked.AddAoaCourse {
		d.Selection.AddAoaCourse = false
	}
}

// SetCourse toggles the certified course. For AOA members turning it on
// clears the workshop and its selection.
func (d *Draft) SetCourse(on bool) {
	if !on {
		if d.Locked.AddAoaCourse {
			return
		}
		d.Selection.AddAoaCourse = false
		return
	}
	d.Selection.AddAoaCourse = true
	if d.Role == RoleAOA && !d.Locked.AddWorkshop {
		d.Selection.AddWorkshop = false
		d.Selection.SelectedWorkshop = ""
	}
}

func (d *Draft) SetLifeMembership(on bool) {
	if !on && d.Locked.AddLifeMembership {
		return
	}
	d.Selection.AddLifeMembership = on
}

func (d *Draft) SelectWorkshop(id string) {
	d.Selection.SelectedWorkshop = id
}

func (d *Draft) AddAccompanying() {
	d.Selection.AccompanyingPersons++
}

// RemoveAccompanying decrements with a floor of zero.
func (d *Draft) RemoveAccompanying() {
	if d.Selection.AccompanyingPersons > 0 {
		d.Selection.AccompanyingPersons--
	}
}

// Preview computes the optimistic breakdown for the current selection.
func (d *Draft) Preview(q Quote) Breakdown {
	return Compute(q, d.Selection, 0)
}

// Validate rejects an incomplete or unavailable selection before it is
// submitted anywhere.
func (d *Draft) Validate(q Quote) error {
	return Validate(q, d.Selection)
}
