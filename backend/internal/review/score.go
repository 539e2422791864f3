package review

// Severity point deductions, applied against a perfect score of 100.
var severityPenalty = map[Severity]int{
	SeverityCritical: 25,
	SeverityHigh:     15,
	SeverityMedium:   8,
	SeverityLow:      3,
}

// CalculateScore derives the overall architecture score from findings.
// Starts at 100, subtracts a fixed penalty per finding, floors at 0.
func CalculateScore(findings []Finding) int {
	score := 100
	for _, f := range findings {
		score -= severityPenalty[f.Severity]
	}
	if score < 0 {
		return 0
	}
	return score
}
