package scoring

// Recommendation is the hiring recommendation derived from the scores.
type Recommendation string

const (
	RecommendStrongAccept      Recommendation = "strongly_accept"
	RecommendAccept            Recommendation = "accept"
	RecommendConditionalAccept Recommendation = "conditional_accept"
	RecommendReconsider        Recommendation = "reconsider"
	RecommendReject            Recommendation = "reject"
	RecommendInconclusive      Recommendation = "inconclusive"
)

// Band describes the performance level of an average score.
func Band(avg float64) string {
	switch {
	case avg >= 8.5:
		return "Excellent - demonstrates deep understanding and clear communication"
	case avg >= 7.0:
		return "Good - shows solid understanding with room for refinement"
	case avg >= 5.5:
		return "Average - basic understanding but lacks depth in some areas"
	case avg >= 4.0:
		return "Below average - struggles with technical concepts"
	default:
		return "Poor - significant gaps in knowledge and communication"
	}
}

// Recommend applies the decision matrix over the overall and technical averages.
// Fewer than two answers is inconclusive.
func Recommend(avg, technicalAvg float64, answered int) Recommendation {
	if answered < 2 {
		return RecommendInconclusive
	}

	switch {
	case avg >= 8.0 && technicalAvg >= 7.5:
		return RecommendStrongAccept
	case avg >= 7.0 && technicalAvg >= 6.5:
		return RecommendAccept
	case avg >= 6.0 && technicalAvg >= 5.5:
		return RecommendConditionalAccept
	case avg >= 5.0:
		return RecommendReconsider
	default:
		return RecommendReject
	}
}
