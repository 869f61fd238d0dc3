package pricing

import (
	"time"
)

// Booking phases, decided by the server from the current date.
const (
	PhaseEarlyBird = "EARLY_BIRD"
	PhaseRegular   = "REGULAR"
	PhaseSpot      = "SPOT"
)

// Attendee categories. Mirrors the user roles eligible to register.
const (
	RoleAOA    = "AOA"
	RoleNonAOA = "NON_AOA"
	RolePGS    = "PGS"
)

const (
	// AccompanyingPersonFee is the flat pre-GST rate per accompanying person.
	AccompanyingPersonFee int64 = 7000
	// MaxAccompanyingPersons caps a single registration.
	MaxAccompanyingPersons = 10
	// AOACourseCapacity is the published seat limit for the certified course.
	AOACourseCapacity = 40
)

var ist = time.FixedZone("IST", 5*3600+1800)

// Phase boundaries: early bird up to 15 Aug 2026, regular up to
// 15 Oct 2026, spot booking after that.
var (
	earlyBirdEnd = time.Date(2026, time.August, 16, 0, 0, 0, 0, ist)
	regularEnd   = time.Date(2026, time.October, 16, 0, 0, 0, 0, ist)
)

// PhaseAt returns the booking phase in effect at t.
func PhaseAt(t time.Time) string {
	switch {
	case t.Before(earlyBirdEnd):
		return PhaseEarlyBird
	case t.Before(regularEnd):
		return PhaseRegular
	default:
		return PhaseSpot
	}
}

type fees struct {
	conference     int64
	workshop       int64 // add-on over the conference fee; 0 means unavailable
	aoaCourse      int64
	lifeMembership int64
}

// Published fee table, pre-GST rupees. Workshop and life membership
// rows are derived from the "Workshop + Conference" and combo columns.
// The certified course has no spot registration and excludes PGs.
var feeMatrix = map[string]map[string]fees{
	PhaseEarlyBird: {
		RoleAOA:    {conference: 8000, workshop: 2000, aoaCourse: 5000},
		RoleNonAOA: {conference: 11000, workshop: 2000, aoaCourse: 5000, lifeMembership: 5000},
		RolePGS:    {conference: 7000, workshop: 2000, lifeMembership: 5000},
	},
	PhaseRegular: {
		RoleAOA:    {conference: 10000, workshop: 2000, aoaCourse: 5000},
		RoleNonAOA: {conference: 13000, workshop: 2000, aoaCourse: 5000, lifeMembership: 5000},
		RolePGS:    {conference: 9000, workshop: 2000, lifeMembership: 5000},
	},
	PhaseSpot: {
		RoleAOA:    {conference: 13000},
		RoleNonAOA: {conference: 16000},
		RolePGS:    {conference: 12000},
	},
}

// Workshop is one entry of the workshop catalogue.
type Workshop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workshops lists the four conference workshops.
var Workshops = []Workshop{
	{ID: "labour-analgesia", Name: "Labour Analgesia"},
	{ID: "critical-incidents", Name: "Critical Incidents in Obstetric Anaesthesia"},
	{ID: "pocus", Name: "POCUS in Obstetric Anaesthesia"},
	{ID: "maternal-collapse", Name: "Maternal Resuscitation and Regional Blocks in Obstetric Anaesthesia"},
}

// WorkshopByID looks up a workshop by its identifier.
func WorkshopByID(id string) (Workshop, bool) {
	for _, w := range Workshops {
		if w.ID == id {
			return w, true
		}
	}
	return Workshop{}, false
}
