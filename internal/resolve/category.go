package resolve

import (
	"fmt"
	"time"

	"mapwatch/internal/period"
)

// Category describes one kind of deliverable a unit submits each
// period. Keywords are the spellings that identify the category inside
// a filename; Suffix and DirName drive canonical naming and workspace
// layout. FutureDated categories carry a date ahead of the current
// period (route plans) instead of the period date itself.
type Category struct {
	Name        string
	Keywords    []string
	Suffix      string
	DirName     string
	FutureDated bool
}

// CanonicalName renders the expected filename for a unit's deliverable
// on the given day.
func (c Category) CanonicalName(unit string, day time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", unit, c.Suffix, period.FormatDay(day), ext)
}

// DefaultCategories returns the two deliverables tracked by default:
// finished points-and-tracks for the current day, and planned routes
// for an upcoming day.
func DefaultCategories() []Category {
	return []Category{
		{
			Name: "finished",
			Keywords: []string{
				"_finished_points_and_tracks_",
				"finished points and tracks",
				"finished_points",
				"points_tracks",
				"completed_points",
			},
			Suffix:  "finished_points_and_tracks",
			DirName: "Finished points",
		},
		{
			Name: "plan",
			Keywords: []string{
				"_plan_routes_",
				"plan routes",
				"planned_routes",
				"route_plan",
				"plan_route",
				"routes_planned",
			},
			Suffix:      "plan_routes",
			DirName:     "Planned routes",
			FutureDated: true,
		},
	}
}
