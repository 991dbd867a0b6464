package memory

import "github.com/fplstats/fdr-engine/internal/domain/team"

// SeedTeams returns the 2026/27 Premier League clubs keyed by their FPL
// team ids, so memory mode serves a populated ratings endpoint before the
// first stat sync runs.
func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "team-1", TeamRefID: 1, Name: "Arsenal", Short: "ARS"},
		{ID: "team-2", TeamRefID: 2, Name: "Aston Villa", Short: "AVL"},
		{ID: "team-3", TeamRefID: 3, Name: "Bournemouth", Short: "BOU"},
		{ID: "team-4", TeamRefID: 4, Name: "Brentford", Short: "BRE"},
		{ID: "team-5", TeamRefID: 5, Name: "Brighton", Short: "BHA"},
		{ID: "team-6", TeamRefID: 6, Name: "Burnley", Short: "BUR"},
		{ID: "team-7", TeamRefID: 7, Name: "Chelsea", Short: "CHE"},
		{ID: "team-8", TeamRefID: 8, Name: "Crystal Palace", Short: "CRY"},
		{ID: "team-9", TeamRefID: 9, Name: "Everton", Short: "EVE"},
		{ID: "team-10", TeamRefID: 10, Name: "Fulham", Short: "FUL"},
		{ID: "team-11", TeamRefID: 11, Name: "Leeds", Short: "LEE"},
		{ID: "team-12", TeamRefID: 12, Name: "Liverpool", Short: "LIV"},
		{ID: "team-13", TeamRefID: 13, Name: "Man City", Short: "MCI"},
		{ID: "team-14", TeamRefID: 14, Name: "Man Utd", Short: "MUN"},
		{ID: "team-15", TeamRefID: 15, Name: "Newcastle", Short: "NEW"},
		{ID: "team-16", TeamRefID: 16, Name: "Nott'm Forest", Short: "NFO"},
		{ID: "team-17", TeamRefID: 17, Name: "Sunderland", Short: "SUN"},
		{ID: "team-18", TeamRefID: 18, Name: "Spurs", Short: "TOT"},
		{ID: "team-19", TeamRefID: 19, Name: "West Ham", Short: "WHU"},
		{ID: "team-20", TeamRefID: 20, Name: "Wolves", Short: "WOL"},
	}
}
