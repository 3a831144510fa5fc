package fleet

import "testing"

func TestValidLicensePlate(t *testing.T) {
	tests := []struct {
		plate string
		want  bool
	}{
		{"ABCD12", true},
		{"abcd12", true},
		{"AB 1234", true},
		{"ABCD 12", true},
		{"AB12", true},
		{"A1", false},
		{"12ABCD", false},
		{"ABCDE12", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidLicensePlate(tt.plate); got != tt.want {
			t.Errorf("ValidLicensePlate(%q) = %v, want %v", tt.plate, got, tt.want)
		}
	}
}

func TestCleanDriverQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" +56912345678 ", "56912345678"},
		{"juan.perez@transvip.cl", "juan.perez@transvip.cl"},
		{"juan   perez", "juan perez"},
		{"+56 9 1234 5678", "56 9 1234 5678"},
	}

	for _, tt := range tests {
		if got := CleanDriverQuery(tt.in); got != tt.want {
			t.Errorf("CleanDriverQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarizeRatings(t *testing.T) {
	ratings := []DriverRating{
		{BookingID: 1, Score: 5, Comment: "excelente"},
		{BookingID: 2, Score: 5},
		{BookingID: 3, Score: 1, Comment: "llegó tarde"},
		{BookingID: 4, Score: 3},
	}

	summary := SummarizeRatings(ratings)

	if summary.Total != 4 {
		t.Fatalf("total = %d, want 4", summary.Total)
	}
	if got := FormatAverage(summary.Average); got != "3.50" {
		t.Errorf("average = %s, want 3.50", got)
	}

	// Buckets descend by score.
	wantScores := []int{5, 3, 1}
	if len(summary.Buckets) != len(wantScores) {
		t.Fatalf("buckets = %d, want %d", len(summary.Buckets), len(wantScores))
	}
	for i, score := range wantScores {
		if summary.Buckets[i].Score != score {
			t.Errorf("bucket %d score = %d, want %d", i, summary.Buckets[i].Score, score)
		}
	}
	if summary.Buckets[0].Count != 2 {
		t.Errorf("score-5 count = %d, want 2", summary.Buckets[0].Count)
	}

	if len(summary.LowScore) != 1 || summary.LowScore[0].Comment != "llegó tarde" {
		t.Errorf("low-score detail = %+v", summary.LowScore)
	}
}

func TestSummarizeRatingsEmpty(t *testing.T) {
	summary := SummarizeRatings(nil)
	if summary.Total != 0 || summary.Average != 0 || len(summary.Buckets) != 0 {
		t.Errorf("empty summary = %+v", summary)
	}
}

func TestSortBookingsByJobTimeStable(t *testing.T) {
	bookings := []Booking{
		{ID: 3, JobTimeUTC: "2026-09-01T12:00:00Z"},
		{ID: 1, JobTimeUTC: "2026-09-01T10:00:00Z"},
		{ID: 2, JobTimeUTC: "2026-09-01T10:00:00Z"},
	}

	SortBookingsByJobTime(bookings)

	wantIDs := []int{1, 2, 3}
	for i, id := range wantIDs {
		if bookings[i].ID != id {
			t.Errorf("position %d = booking %d, want %d", i, bookings[i].ID, id)
		}
	}
}
