package vote

import "testing"

func statsOf(ratings ...int) Stats {
	var s Stats
	for _, r := range ratings {
		s.add(r, 1)
	}
	return s
}

func TestSummaryPolicies(t *testing.T) {
	s := statsOf(5, 4, 4) // 13/3 = 4.333...

	listing := s.Summary(PolicyListing)
	if listing.AverageRating != 4.3 {
		t.Errorf("listing average = %v, want 4.3", listing.AverageRating)
	}
	if listing.Distribution[0].Star != 5 || listing.Distribution[4].Star != 1 {
		t.Errorf("listing distribution not descending: %+v", listing.Distribution)
	}

	endpoint := s.Summary(PolicyVoteEndpoint)
	if endpoint.AverageRating != 4.33 {
		t.Errorf("endpoint average = %v, want 4.33", endpoint.AverageRating)
	}
	if endpoint.Distribution[0].Star != 1 || endpoint.Distribution[3].Count != 2 {
		t.Errorf("endpoint distribution = %+v", endpoint.Distribution)
	}

	detail := s.Summary(PolicyProjectDetail)
	if detail.AverageRating != 4.3 || detail.Distribution[0].Star != 5 {
		t.Errorf("detail = %+v", detail)
	}
}

func TestSummaryEmpty(t *testing.T) {
	var s Stats
	sum := s.Summary(PolicyVoteEndpoint)
	if sum.TotalVotes != 0 || sum.AverageRating != 0 || len(sum.Distribution) != 5 {
		t.Errorf("empty summary = %+v", sum)
	}
	for _, d := range sum.Distribution {
		if d.Count != 0 {
			t.Errorf("star %d count = %d", d.Star, d.Count)
		}
	}
}

func TestListingShape(t *testing.T) {
	l := statsOf(1, 2).Listing()
	if l.Total != 2 || l.Average != 1.5 || l.Distribution[4].Star != 1 {
		t.Errorf("listing = %+v", l)
	}
}

func TestAddIgnoresOutOfRange(t *testing.T) {
	s := statsOf(0, 6, 3)
	if s.Total != 1 || s.Sum != 3 {
		t.Errorf("stats = %+v", s)
	}
}
