package domain

// Slot is one fixed bookable window of the daily room catalog.
// Its identifier is the start clock time, which is also what the
// availability query reports as occupied.
type Slot struct {
	Label string
	Start ClockTime
	End   ClockTime
}

func (s Slot) ID() string { return s.Start.String() }

var DailySlots = []Slot{
	{Label: "10:00 - 11:50", Start: ClockTime{Hour: 10}, End: ClockTime{Hour: 11, Minute: 50}},
	{Label: "12:00 - 13:50", Start: ClockTime{Hour: 12}, End: ClockTime{Hour: 13, Minute: 50}},
	{Label: "14:00 - 15:50", Start: ClockTime{Hour: 14}, End: ClockTime{Hour: 15, Minute: 50}},
	{Label: "16:00 - 17:50", Start: ClockTime{Hour: 16}, End: ClockTime{Hour: 17, Minute: 50}},
	{Label: "18:00 - 19:50", Start: ClockTime{Hour: 18}, End: ClockTime{Hour: 19, Minute: 50}},
	{Label: "20:00 - 21:50", Start: ClockTime{Hour: 20}, End: ClockTime{Hour: 21, Minute: 50}},
}

func SlotByID(id string) (Slot, bool) {
	for _, s := range DailySlots {
		if s.ID() == id {
			return s, true
		}
	}
	return Slot{}, false
}
