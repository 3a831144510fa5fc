package fleet

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// DriverProfile is the general record of one driver.
type DriverProfile struct {
	FleetID  int `json:"fleet_id"`
	Personal struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	} `json:"personal"`
	Quality struct {
		AvgRating  float64 `json:"avg_rating"`
		TotalTrips int     `json:"total_trips"`
	} `json:"quality"`
	Status string `json:"status"`
}

// DriverRating is one passenger evaluation.
type DriverRating struct {
	BookingID int    `json:"booking_id"`
	Score     int    `json:"score"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

// CleanDriverQuery normalizes an email-or-phone lookup key the way the
// search endpoint expects it: trimmed, no plus prefix, single spaces.
func CleanDriverQuery(query string) string {
	cleaned := strings.TrimSpace(query)
	cleaned = strings.ReplaceAll(cleaned, "+", "")
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	return cleaned
}

// SearchDriver resolves an email or phone to a fleet id. Returns 0 when no
// driver matches.
func (c *Client) SearchDriver(ctx context.Context, query string) (int, error) {
	values := url.Values{}
	values.Set("q", CleanDriverQuery(query))

	var result struct {
		FleetID int `json:"fleet_id"`
	}
	found, err := c.getJSON(ctx, "/drivers/search", values, &result)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return result.FleetID, nil
}

// GetDriverProfile fetches a driver's profile by fleet id.
func (c *Client) GetDriverProfile(ctx context.Context, fleetID int) (*DriverProfile, error) {
	var profile DriverProfile
	found, err := c.getJSON(ctx, fmt.Sprintf("/drivers/%d/profile", fleetID), nil, &profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &profile, nil
}

// GetDriverRatings fetches the passenger evaluations a driver received over
// the last 90 days.
func (c *Client) GetDriverRatings(ctx context.Context, fleetID int) ([]DriverRating, error) {
	var ratings []DriverRating
	found, err := c.getJSON(ctx, fmt.Sprintf("/drivers/%d/ratings", fleetID), nil, &ratings)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return ratings, nil
}
