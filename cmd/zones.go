package cmd

import (
	"encoding/json"
	"os"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

type zoneFile struct {
	Name    string `json:"name"`
	Polygon []struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"polygon"`
}

// LoadZones reads the zone boundary file. An empty path yields a table with
// only the catch-all zone, which keeps scheduling working as a single group.
func LoadZones(path string) (*services.ZoneTable, error) {
	if path == "" {
		return services.NewZoneTable(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []zoneFile
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	zones := make([]services.Zone, 0, len(entries))
	for _, entry := range entries {
		polygon := make([]kernel.Location, 0, len(entry.Polygon))
		for _, vertex := range entry.Polygon {
			location, locErr := kernel.NewLocation(vertex.Latitude, vertex.Longitude)
			if locErr != nil {
				return nil, locErr
			}
			polygon = append(polygon, location)
		}
		zones = append(zones, services.Zone{Name: entry.Name, Polygon: polygon})
	}

	return services.NewZoneTable(zones)
}
