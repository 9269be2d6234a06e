package models

// UserSettings contains per-user customizable settings.
// These override instance defaults when set.
type UserSettings struct {
	Spoilers SpoilerConfig     `json:"spoilers"`
	Calendar CalendarPrefs     `json:"calendar"`
	Hidden   HiddenShowsConfig `json:"hidden"`
}

// CalendarPrefs controls which releases the calendar shows for this user.
type CalendarPrefs struct {
	HideTheatrical bool `json:"hideTheatrical"`
	IgnoreSpecials bool `json:"ignoreSpecials"`
	// ShowHidden temporarily overrides the hidden-show blacklist without
	// clearing it.
	ShowHidden bool `json:"showHidden,omitempty"`
}

// HiddenShowsConfig is the per-user blacklist of shows excluded from the
// calendar.
type HiddenShowsConfig struct {
	ShowIDs []int `json:"showIds,omitempty"`
}

// Set returns the hidden show IDs as a lookup set.
func (h HiddenShowsConfig) Set() map[int]bool {
	if len(h.ShowIDs) == 0 {
		return nil
	}
	set := make(map[int]bool, len(h.ShowIDs))
	for _, id := range h.ShowIDs {
		set[id] = true
	}
	return set
}
