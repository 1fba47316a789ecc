package booking

import (
	"sort"
	"time"

	"mindbloom/models"
)

const dateLayout = "2006-01-02"

// History is a user's appointments split the way the history page shows them.
type History struct {
	Current  []models.Appointment
	Upcoming []models.Appointment
	Past     []models.Appointment
}

// Empty reports whether there is nothing to show.
func (h History) Empty() bool {
	return len(h.Current) == 0 && len(h.Upcoming) == 0 && len(h.Past) == 0
}

// Group splits appts relative to now's calendar day. Active appointments
// dated today are current, later ones upcoming. Finished, canceled, earlier
// or undated appointments are past.
func Group(appts []models.Appointment, now time.Time) History {
	today := now.Format(dateLayout)

	var h History
	for _, a := range appts {
		day := a.Day()
		_, err := time.Parse(dateLayout, day)
		switch {
		case !a.Active() || err != nil || day < today:
			h.Past = append(h.Past, a)
		case day == today:
			h.Current = append(h.Current, a)
		default:
			h.Upcoming = append(h.Upcoming, a)
		}
	}

	sortByDate(h.Current, false)
	sortByDate(h.Upcoming, false)
	sortByDate(h.Past, true)
	return h
}

// Actionable reports whether reschedule and cancel are offered for a.
func Actionable(a models.Appointment, now time.Time) bool {
	if !a.Active() {
		return false
	}
	if _, err := time.Parse(dateLayout, a.Day()); err != nil {
		return false
	}
	return a.Day() >= now.Format(dateLayout)
}

// Find returns the appointment with id.
func Find(appts []models.Appointment, id int64) (models.Appointment, bool) {
	for _, a := range appts {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

func sortByDate(appts []models.Appointment, desc bool) {
	sort.SliceStable(appts, func(i, j int) bool {
		ki := appts[i].Day() + " " + startOf(appts[i])
		kj := appts[j].Day() + " " + startOf(appts[j])
		if desc {
			return ki > kj
		}
		return ki < kj
	})
}

func startOf(a models.Appointment) string {
	if a.Slot == nil {
		return ""
	}
	return a.Slot.StartTime
}
