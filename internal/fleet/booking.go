package fleet

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Booking is one reservation (or one leg of a shared package).
type Booking struct {
	ID             int    `json:"id"`
	PackageID      int    `json:"package_id,omitempty"`
	Shared         bool   `json:"shared"`
	Status         string `json:"status"`
	PassengerName  string `json:"passenger_name"`
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	JobTimeUTC     string `json:"job_time_utc"`
	TempPickupTime string `json:"temp_pickup_time,omitempty"`
	VehicleNumber  int    `json:"vehicle_number,omitempty"`
}

// GetBookingInfo fetches a booking by id. With shared=true the id is
// treated as a shared-package code and every leg of the package is
// returned. Missing bookings return nil, nil.
func (c *Client) GetBookingInfo(ctx context.Context, bookingID int, shared bool) ([]Booking, error) {
	query := url.Values{}
	query.Set("shared", strconv.FormatBool(shared))

	var bookings []Booking
	found, err := c.getJSON(ctx, fmt.Sprintf("/bookings/%d", bookingID), query, &bookings)
	if err != nil {
		return nil, err
	}
	if !found || len(bookings) == 0 {
		return nil, nil
	}
	return bookings, nil
}

// GetUpcomingBookings lists the bookings scheduled over the next hours.
func (c *Client) GetUpcomingBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	found, err := c.getJSON(ctx, "/bookings/upcoming", nil, &bookings)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return bookings, nil
}

// SortBookingsByJobTime orders bookings by their UTC job time, the one sort
// key shown to users. Stable so legs sharing a job time keep backend order.
func SortBookingsByJobTime(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].JobTimeUTC < bookings[j].JobTimeUTC
	})
}
