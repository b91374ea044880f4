package engine

import "math/rand"

// Fixed host-line pools. Lines with %s take the callsign.
var (
	signOnLines = []string{
		"This is %s, coming to you from the last broadcast tower in the city...",
		"Hello? Is anyone out there? This is %s, signing on...",
		"The static is clearing... This is %s, your last connection to the world...",
		"In the darkness, a voice remains. This is %s, broadcasting from the end...",
	}

	signOffLines = []string{
		"This is %s, signing off. Stay safe out there.",
		"The power is fading... This is %s, going dark. God help us all.",
		"Until tomorrow, if there is one... This is %s, signing off.",
		"The last signal fades... This has been %s. Remember us.",
	}

	staticBreakLines = []string{
		"*static crackles* Signal interference... bear with me...",
		"*wind howls* The storm is picking up outside...",
		"*distant explosion* Sounds like another part of the city fell...",
		"*radio feedback* Equipment acting up again...",
	}
)

func pickLine(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}
