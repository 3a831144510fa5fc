package fleet

import (
	"context"
	"fmt"
)

// ZoneService is one vehicle currently holding a slot in an airport's
// "zona iluminada" queue.
type ZoneService struct {
	VehicleNumber int    `json:"vehicle_number"`
	DriverName    string `json:"driver_name"`
	ServiceType   string `json:"service_type"`
	Position      int    `json:"position"`
	EnteredAt     string `json:"entered_at"`
}

// GetZoneServices lists the active services inside an airport zone.
func (c *Client) GetZoneServices(ctx context.Context, zoneID int) ([]ZoneService, error) {
	var services []ZoneService
	found, err := c.getJSON(ctx, fmt.Sprintf("/airport-zones/%d/services", zoneID), nil, &services)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return services, nil
}
