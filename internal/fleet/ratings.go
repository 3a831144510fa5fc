package fleet

import (
	"sort"
	"strconv"
)

// RatingBucket aggregates the evaluations sharing one score.
type RatingBucket struct {
	Score    int      `json:"score"`
	Count    int      `json:"count"`
	Comments []string `json:"comments,omitempty"`
}

// RatingSummary is the shaped 90-day evaluation view handed to the model
// when it writes a driver performance narrative.
type RatingSummary struct {
	Total    int            `json:"total"`
	Average  float64        `json:"average"`
	Buckets  []RatingBucket `json:"buckets"`
	LowScore []DriverRating `json:"low_score,omitempty"`
}

// SummarizeRatings buckets evaluations per score (descending) and pulls out
// the score-1 details, the ones operations always asks about.
func SummarizeRatings(ratings []DriverRating) RatingSummary {
	summary := RatingSummary{Total: len(ratings)}
	if len(ratings) == 0 {
		return summary
	}

	byScore := make(map[int]*RatingBucket)
	sum := 0
	for _, r := range ratings {
		sum += r.Score
		bucket, ok := byScore[r.Score]
		if !ok {
			bucket = &RatingBucket{Score: r.Score}
			byScore[r.Score] = bucket
		}
		bucket.Count++
		if r.Comment != "" {
			bucket.Comments = append(bucket.Comments, r.Comment)
		}
		if r.Score == 1 {
			summary.LowScore = append(summary.LowScore, r)
		}
	}

	summary.Average = float64(sum) / float64(len(ratings))

	scores := make([]int, 0, len(byScore))
	for score := range byScore {
		scores = append(scores, score)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	for _, score := range scores {
		summary.Buckets = append(summary.Buckets, *byScore[score])
	}

	return summary
}

// FormatAverage renders an average rating with two decimals for prompts and
// summaries.
func FormatAverage(avg float64) string {
	return strconv.FormatFloat(avg, 'f', 2, 64)
}
