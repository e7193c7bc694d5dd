package vote

import (
	"math"

	"github.com/panotour/core/internal/models"
)

// Policy is the per-endpoint presentation of vote statistics: how many
// decimals the average keeps and which way the star distribution runs.
type Policy struct {
	Decimals   int
	Descending bool
}

var (
	// PolicyListing is used by catalog and saved-tour listings.
	PolicyListing = Policy{Decimals: 1, Descending: true}
	// PolicyVoteEndpoint is used by GET /api/vote/:projectId.
	PolicyVoteEndpoint = Policy{Decimals: 2, Descending: false}
	// PolicyProjectDetail is used by GET /api/project/:projectId.
	PolicyProjectDetail = Policy{Decimals: 1, Descending: true}
)

// Stats are the raw tallies of one project's votes.
type Stats struct {
	Total  int64
	Sum    int64
	ByStar [models.MaxRating + 1]int64 // index 0 unused
}

func (s *Stats) add(rating int, count int64) {
	if rating < models.MinRating || rating > models.MaxRating {
		return
	}
	s.Total += count
	s.Sum += int64(rating) * count
	s.ByStar[rating] += count
}

// Average is the exact mean rating, 0 when nobody voted.
func (s Stats) Average() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Total)
}

type StarCount struct {
	Star  int   `json:"star"`
	Count int64 `json:"count"`
}

// Summary is the shape returned by the vote and project detail endpoints.
type Summary struct {
	TotalVotes    int64       `json:"totalVotes"`
	AverageRating float64     `json:"averageRating"`
	Distribution  []StarCount `json:"distribution"`
}

// ListingSummary is the compact shape attached to each listed project.
type ListingSummary struct {
	Total        int64       `json:"total"`
	Average      float64     `json:"average"`
	Distribution []StarCount `json:"distribution"`
}

func (s Stats) Summary(p Policy) Summary {
	return Summary{
		TotalVotes:    s.Total,
		AverageRating: round(s.Average(), p.Decimals),
		Distribution:  s.distribution(p.Descending),
	}
}

func (s Stats) Listing() ListingSummary {
	sum := s.Summary(PolicyListing)
	return ListingSummary{Total: sum.TotalVotes, Average: sum.AverageRating, Distribution: sum.Distribution}
}

func (s Stats) distribution(descending bool) []StarCount {
	out := make([]StarCount, 0, models.MaxRating)
	for star := models.MinRating; star <= models.MaxRating; star++ {
		out = append(out, StarCount{Star: star, Count: s.ByStar[star]})
	}
	if descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
