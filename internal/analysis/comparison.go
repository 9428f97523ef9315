package analysis

import "fmt"

// MoveComparison contains a full statistical comparison between two move
// continuations from the same position.
type MoveComparison struct {
	Move1           Outcomes
	Move2           Outcomes
	Interval1       Interval
	Interval2       Interval
	ZTest           *TwoProportionResult
	Winner          string // SAN of the move with the higher score, or "tie".
	WinnerConfident bool   // True if the win-rate difference is statistically significant.
}

// CompareMoves performs a full statistical comparison between two move
// continuations. Confidence is the interval width, e.g. 0.95.
func CompareMoves(m1, m2 Outcomes, confidence float64) *MoveComparison {
	zt := TwoProportionZTest(m1.Wins, m1.Trials(), m2.Wins, m2.Trials())

	var winner string
	var confident bool

	switch {
	case m1.Score() > m2.Score():
		winner = m1.Move
		confident = zt.Significant
	case m2.Score() > m1.Score():
		winner = m2.Move
		confident = zt.Significant
	default:
		winner = "tie"
	}

	return &MoveComparison{
		Move1:           m1,
		Move2:           m2,
		Interval1:       WilsonInterval(m1.Wins, m1.Trials(), confidence),
		Interval2:       WilsonInterval(m2.Wins, m2.Trials(), confidence),
		ZTest:           zt,
		Winner:          winner,
		WinnerConfident: confident,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *MoveComparison) Summary() string {
	sig := "not statistically significant"
	if c.ZTest.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.ZTest.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: %d games, score=%.1f%%, win rate %.1f%% [%.1f%%, %.1f%%]\n"+
			"  %s: %d games, score=%.1f%%, win rate %.1f%% [%.1f%%, %.1f%%]\n"+
			"  Result: %s, %s",
		c.Move1.Move, c.Move2.Move,
		c.Move1.Move, c.Move1.Trials(), c.Move1.Score()*100, c.Move1.WinRate()*100,
		c.Interval1.Lower*100, c.Interval1.Upper*100,
		c.Move2.Move, c.Move2.Trials(), c.Move2.Score()*100, c.Move2.WinRate()*100,
		c.Interval2.Lower*100, c.Interval2.Upper*100,
		c.Winner, sig,
	)
}
