package world

import "math/rand"

// eventTemplate is a world event before it gets an ID and timestamp.
type eventTemplate struct {
	description      string
	impact           Impact
	affectedFactions []string
}

// possibleEvents is the fixed pool of ambient city events used to color
// static breaks and narrative downtime.
var possibleEvents = []eventTemplate{
	{"Military patrol spotted in the downtown district", ImpactNeutral, []string{"military"}},
	{"Survivor camp established at the old hospital", ImpactPositive, []string{"survivors"}},
	{"Unknown signal detected broadcasting from the tower", ImpactNegative, []string{"unknown"}},
	{"Food supplies running critically low across the city", ImpactNegative, []string{"survivors"}},
	{"Military enforcing strict quarantine zones", ImpactNegative, []string{"military", "survivors"}},
	{"Strange lights reported near the industrial district", ImpactNegative, []string{"unknown"}},
	{"Survivor group successfully rescued children from school", ImpactPositive, []string{"survivors"}},
	{"Military losing control of eastern sectors", ImpactNegative, []string{"military"}},
	{"Radio silence from neighboring cities", ImpactNegative, []string{"survivors", "military"}},
	{"Hope spreads as more survivors organize", ImpactPositive, []string{"survivors"}},
}

// RandomEvent draws an event affecting at least one of the given factions.
// With no matching faction it falls back to the whole pool.
func RandomEvent(rng *rand.Rand, factions ...string) Event {
	wanted := make(map[string]bool, len(factions))
	for _, f := range factions {
		wanted[f] = true
	}

	var candidates []eventTemplate
	for _, t := range possibleEvents {
		for _, f := range t.affectedFactions {
			if wanted[f] {
				candidates = append(candidates, t)
				break
			}
		}
	}
	if len(candidates) == 0 {
		candidates = possibleEvents
	}

	chosen := candidates[rng.Intn(len(candidates))]
	return NewEvent("event", chosen.description, chosen.impact, chosen.affectedFactions...)
}
