package calendar

import (
	"sort"
	"time"

	"watchdeck/models"
)

// Filters controls which releases survive aggregation. Each filter strictly
// removes entries, never adds them, and they apply in a fixed order:
// theatrical movies first, then season-0 specials, then hidden shows.
type Filters struct {
	HideTheatrical bool
	IgnoreSpecials bool
	HiddenShowIDs  map[int]bool
	ShowHidden     bool
	Location       *time.Location
}

// DateKey formats an air date as an ISO yyyy-MM-dd key in the given display
// timezone. Day boundaries follow the configured timezone, not UTC and not
// the viewer's location, so every surface buckets the same release into the
// same day.
func DateKey(airDate time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return airDate.In(loc).Format("2006-01-02")
}

// Aggregate groups a flat release list into date buckets after applying the
// visibility filters. Releases within a bucket keep the upstream order, which
// encodes popularity and is preserved intentionally.
func Aggregate(releases []models.Release, filters Filters) map[string][]models.Release {
	buckets := make(map[string][]models.Release)
	for _, release := range releases {
		if filters.HideTheatrical && release.IsMovie && release.ReleaseType == models.ReleaseTypeTheatrical {
			continue
		}
		if filters.IgnoreSpecials && release.IsSpecial() {
			continue
		}
		if !filters.ShowHidden && filters.HiddenShowIDs[release.ShowID] {
			continue
		}

		key := DateKey(release.AirDate, filters.Location)
		buckets[key] = append(buckets[key], release)
	}
	return buckets
}

// GroupByShow splits one bucket's releases by show so consumers can render a
// same-day multi-episode drop as a single card. Order within each group
// follows the bucket order.
func GroupByShow(releases []models.Release) map[int][]models.Release {
	groups := make(map[int][]models.Release)
	for _, release := range releases {
		groups[release.ShowID] = append(groups[release.ShowID], release)
	}
	return groups
}

// SortedDates returns the bucket keys in ascending calendar order.
func SortedDates(buckets map[string][]models.Release) []string {
	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
