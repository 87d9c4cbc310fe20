// Package scoring holds the pure scoring rules of the pool. Every caller that
// needs a point total goes through these functions; there is deliberately no
// second implementation anywhere in the codebase.
package scoring

import "github.com/hoopshq/madness-pool/models"

// Fixed pre-tournament awards.
const (
	FinalFourAward = 5  // picked team reaches any Final Four match
	FinalsAward    = 10 // picked team reaches the Championship match
	ChampionAward  = 25 // picked team wins the Championship match

	// CinderellaMultiplier doubles the round's base points for every win by a
	// cinderella-seeded pick.
	CinderellaMultiplier = 2
)

// MatchPickResult is the recomputed state of one round pick.
type MatchPickResult struct {
	Correct bool
	Points  int
}

// ScoreMatchPick evaluates one round pick against its match. A nil or
// undecided match scores zero; that is not an error, the match simply has not
// been decided yet.
func ScoreMatchPick(pick *models.MatchPick, match *models.Match) MatchPickResult {
	if match == nil || !match.Decided() {
		return MatchPickResult{}
	}
	if *match.WinnerID != pick.TeamID {
		return MatchPickResult{}
	}
	return MatchPickResult{Correct: true, Points: match.Round.BasePoints()}
}

// ScorePreTournament computes the fixed-award portion of a pre-tournament
// pick: Final Four and Finals picks pay out for reaching the round, the
// Champion pick only for winning the decided Championship match.
func ScorePreTournament(pick *models.PreTournamentPick, matches []*models.Match) int {
	if pick == nil {
		return 0
	}

	var finalFour, championshipMatches []*models.Match
	for _, m := range matches {
		switch m.Round {
		case models.RoundFinalFour:
			finalFour = append(finalFour, m)
		case models.RoundChampionship:
			championshipMatches = append(championshipMatches, m)
		}
	}

	score := 0
	for _, teamID := range pick.FinalFourIDs {
		if anyMatchHasTeam(finalFour, teamID) {
			score += FinalFourAward
		}
	}
	for _, teamID := range pick.FinalsIDs {
		if anyMatchHasTeam(championshipMatches, teamID) {
			score += FinalsAward
		}
	}
	for _, m := range championshipMatches {
		if m.Decided() && *m.WinnerID == pick.ChampionID {
			score += ChampionAward
			break
		}
	}
	return score
}

// ScoreCinderella sums the doubled round bonus for every win recorded by a
// participant's cinderella picks. Only teams seeded 11-16 qualify; a pick of
// an ineligible team is silently worth nothing.
func ScoreCinderella(pick *models.PreTournamentPick, matches []*models.Match, teamsByID map[int]*models.Team) int {
	if pick == nil {
		return 0
	}
	score := 0
	for _, teamID := range pick.CinderellaIDs {
		team := teamsByID[teamID]
		if team == nil || !team.CinderellaEligible() {
			continue
		}
		for _, m := range matches {
			if m.Decided() && *m.WinnerID == teamID {
				score += CinderellaMultiplier * m.Round.BasePoints()
			}
		}
	}
	return score
}

// Total combines the three independent ledgers into the participant's total.
// Round picks and cinderella bonuses are parallel ledgers; the same win can
// legitimately appear in both, but never twice within one.
func Total(matchPickPoints, preTournamentScore, cinderellaScore int) int {
	return matchPickPoints + preTournamentScore + cinderellaScore
}

func anyMatchHasTeam(matches []*models.Match, teamID int) bool {
	for _, m := range matches {
		if m.HasTeam(teamID) {
			return true
		}
	}
	return false
}
