package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hoopshq/madness-pool/models"
)

var (
	// ErrInvalidSeeding covers malformed first-round input: a region without
	// exactly sixteen teams, a duplicated or out-of-range seed.
	ErrInvalidSeeding = errors.New("invalid region seeding")

	// ErrIncompleteRound means a match required for pairing has no recorded
	// winner yet.
	ErrIncompleteRound = errors.New("round has undecided matches")

	// ErrAmbiguousPairing means the supplied matches cannot be paired
	// unambiguously, e.g. the Final Four step without exactly four regions.
	ErrAmbiguousPairing = errors.New("ambiguous bracket pairing")
)

// firstRoundSeedPairs is the canonical Round of 64 pairing order within a
// region. Slot i of the region's bracket holds seeds firstRoundSeedPairs[i].
var firstRoundSeedPairs = [8][2]int{
	{1, 16}, {8, 9}, {5, 12}, {4, 13}, {6, 11}, {3, 14}, {7, 10}, {2, 15},
}

// FirstRound builds the Round of 64 matches for a tournament. regions fixes
// the region order (it later determines the Final Four pairing); teams is the
// full field. Each listed region must contain exactly sixteen teams seeded 1
// through 16. The returned matches carry no IDs; the caller persists them.
func FirstRound(tournamentID int, regions []string, teams []*models.Team) ([]*models.Match, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions supplied", ErrInvalidSeeding)
	}

	byRegion := make(map[string]map[int]*models.Team, len(regions))
	for _, region := range regions {
		if _, dup := byRegion[region]; dup {
			return nil, fmt.Errorf("%w: region %q listed twice", ErrInvalidSeeding, region)
		}
		byRegion[region] = make(map[int]*models.Team, models.TeamsPerRegion)
	}

	for _, team := range teams {
		seeds, ok := byRegion[team.Region]
		if !ok {
			return nil, fmt.Errorf("%w: team %q belongs to unknown region %q",
				ErrInvalidSeeding, team.Name, team.Region)
		}
		if team.Seed < 1 || team.Seed > models.TeamsPerRegion {
			return nil, fmt.Errorf("%w: team %q has seed %d outside 1-%d",
				ErrInvalidSeeding, team.Name, team.Seed, models.TeamsPerRegion)
		}
		if prev, taken := seeds[team.Seed]; taken {
			return nil, fmt.Errorf("%w: region %q has seed %d twice (%q, %q)",
				ErrInvalidSeeding, team.Region, team.Seed, prev.Name, team.Name)
		}
		seeds[team.Seed] = team
	}

	matches := make([]*models.Match, 0, len(regions)*len(firstRoundSeedPairs))
	for _, region := range regions {
		seeds := byRegion[region]
		if len(seeds) != models.TeamsPerRegion {
			return nil, fmt.Errorf("%w: region %q has %d teams, want %d",
				ErrInvalidSeeding, region, len(seeds), models.TeamsPerRegion)
		}
		for slot, pair := range firstRoundSeedPairs {
			t1 := seeds[pair[0]].ID
			t2 := seeds[pair[1]].ID
			matches = append(matches, &models.Match{
				TournamentID: tournamentID,
				Round:        models.RoundOf64,
				Region:       region,
				Slot:         slot + 1,
				Team1ID:      &t1,
				Team2ID:      &t2,
			})
		}
	}
	return matches, nil
}

// NextRound derives the matches of the round after fromRound by pairing
// winners of the supplied matches, which must all belong to fromRound and be
// decided. Regional rounds pair slot-adjacent winners within each region; the
// Elite 8 winners combine across regions into the Final Four (region order of
// the input decides the two pairings); the Final Four winners meet in the
// Championship. The returned matches carry no IDs.
func NextRound(completed []*models.Match, fromRound models.Round) ([]*models.Match, error) {
	toRound, ok := fromRound.Next()
	if !ok || fromRound < models.RoundOf64 {
		return nil, fmt.Errorf("%w: no round follows %s", ErrAmbiguousPairing, fromRound)
	}
	if len(completed) == 0 {
		return nil, fmt.Errorf("%w: no matches supplied for %s", ErrIncompleteRound, fromRound)
	}

	for _, m := range completed {
		if m.Round != fromRound {
			return nil, fmt.Errorf("%w: match %s belongs to %s, not %s",
				ErrAmbiguousPairing, m.PositionLabel(), m.Round, fromRound)
		}
		if !m.Decided() {
			return nil, fmt.Errorf("%w: match %s has no winner", ErrIncompleteRound, m.PositionLabel())
		}
	}

	tournamentID := completed[0].TournamentID

	switch fromRound {
	case models.RoundElite8:
		return finalFour(tournamentID, completed)
	case models.RoundFinalFour:
		return championship(tournamentID, completed)
	default:
		return pairWithinRegions(tournamentID, completed, toRound)
	}
}

// pairWithinRegions pairs winners of slot-adjacent matches region by region,
// preserving the region order of the input.
func pairWithinRegions(tournamentID int, completed []*models.Match, toRound models.Round) ([]*models.Match, error) {
	regionOrder := make([]string, 0, 4)
	byRegion := make(map[string][]*models.Match)
	for _, m := range completed {
		if _, seen := byRegion[m.Region]; !seen {
			regionOrder = append(regionOrder, m.Region)
		}
		byRegion[m.Region] = append(byRegion[m.Region], m)
	}

	var next []*models.Match
	for _, region := range regionOrder {
		ms := sortBySlot(byRegion[region])
		if len(ms)%2 != 0 {
			return nil, fmt.Errorf("%w: region %q has %d matches in %s",
				ErrAmbiguousPairing, region, len(ms), ms[0].Round)
		}
		for i := 0; i < len(ms); i += 2 {
			w1, w2 := *ms[i].WinnerID, *ms[i+1].WinnerID
			next = append(next, &models.Match{
				TournamentID: tournamentID,
				Round:        toRound,
				Region:       region,
				Slot:         i/2 + 1,
				Team1ID:      &w1,
				Team2ID:      &w2,
			})
		}
	}
	return next, nil
}

// finalFour combines the four regional champions into two national semifinals:
// first two regions against each other, then the remaining two.
func finalFour(tournamentID int, completed []*models.Match) ([]*models.Match, error) {
	regionOrder := make([]string, 0, 4)
	championByRegion := make(map[string]int)
	for _, m := range completed {
		if _, dup := championByRegion[m.Region]; dup {
			return nil, fmt.Errorf("%w: region %q has more than one Elite 8 match",
				ErrAmbiguousPairing, m.Region)
		}
		regionOrder = append(regionOrder, m.Region)
		championByRegion[m.Region] = *m.WinnerID
	}
	if len(regionOrder) != 4 {
		return nil, fmt.Errorf("%w: Final Four needs exactly 4 regional champions, have %d",
			ErrAmbiguousPairing, len(regionOrder))
	}

	matches := make([]*models.Match, 0, 2)
	for i := 0; i < 4; i += 2 {
		w1 := championByRegion[regionOrder[i]]
		w2 := championByRegion[regionOrder[i+1]]
		matches = append(matches, &models.Match{
			TournamentID: tournamentID,
			Round:        models.RoundFinalFour,
			Region:       models.RegionNational,
			Slot:         i/2 + 1,
			Team1ID:      &w1,
			Team2ID:      &w2,
		})
	}
	return matches, nil
}

func championship(tournamentID int, completed []*models.Match) ([]*models.Match, error) {
	if len(completed) != 2 {
		return nil, fmt.Errorf("%w: Championship needs exactly 2 Final Four matches, have %d",
			ErrAmbiguousPairing, len(completed))
	}
	ms := sortBySlot(completed)
	w1, w2 := *ms[0].WinnerID, *ms[1].WinnerID
	return []*models.Match{{
		TournamentID: tournamentID,
		Round:        models.RoundChampionship,
		Region:       models.RegionNational,
		Slot:         1,
		Team1ID:      &w1,
		Team2ID:      &w2,
	}}, nil
}

func sortBySlot(matches []*models.Match) []*models.Match {
	sorted := make([]*models.Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slot < sorted[j].Slot })
	return sorted
}
