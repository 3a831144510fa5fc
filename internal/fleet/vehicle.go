package fleet

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	VehicleStatusOnline  = "online"
	VehicleStatusOffline = "offline"
)

// licensePlateRe matches Chilean plates, format ABCD12 with tolerance for a
// space between letters and digits.
var licensePlateRe = regexp.MustCompile(`^[A-Z]{2,4}[ ]*[0-9]{2,4}$`)

// VehicleStatus is the app-connection state of one vehicle.
type VehicleStatus struct {
	VehicleNumber int     `json:"vehicle_number"`
	Status        string  `json:"status"`
	DriverName    string  `json:"driver_name,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

func (v VehicleStatus) Online() bool {
	return v.Status != "" && v.Status != VehicleStatusOffline
}

// VehicleDetail is the registry record of a vehicle, looked up by plate.
type VehicleDetail struct {
	LicensePlate    string   `json:"license_plate"`
	VehicleNumber   int      `json:"vehicle_number"`
	Brand           string   `json:"brand"`
	Model           string   `json:"model"`
	Color           string   `json:"color"`
	Status          string   `json:"status"`
	AssignedDrivers []string `json:"assigned_drivers,omitempty"`
}

// GetVehicleStatus fetches the connection status for a vehicle number.
func (c *Client) GetVehicleStatus(ctx context.Context, vehicleNumber int) (*VehicleStatus, error) {
	var status VehicleStatus
	found, err := c.getJSON(ctx, fmt.Sprintf("/vehicles/%d/status", vehicleNumber), nil, &status)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &status, nil
}

// GetVehicleDetail looks a vehicle up by license plate.
func (c *Client) GetVehicleDetail(ctx context.Context, licensePlate string) (*VehicleDetail, error) {
	query := url.Values{}
	query.Set("license_plate", strings.ToUpper(strings.TrimSpace(licensePlate)))

	var detail VehicleDetail
	found, err := c.getJSON(ctx, "/vehicles/detail", query, &detail)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &detail, nil
}

// ValidLicensePlate reports whether a plate has the expected format.
func ValidLicensePlate(plate string) bool {
	return licensePlateRe.MatchString(strings.ToUpper(strings.TrimSpace(plate)))
}
