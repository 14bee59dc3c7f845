package services

import (
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// OuterZone is the catch-all zone for points outside every known boundary.
const OuterZone = "outer"

// Zone is a named polygon boundary. The vertex ring is implicitly closed:
// the last vertex connects back to the first.
type Zone struct {
	Name    string
	Polygon []kernel.Location
}

// ZoneTable answers point-in-polygon lookups against a set of named zone
// boundaries. The same table serves scheduling (grouping stops by zone) and
// tracking (geofence containment). Kept as a plain table so a spatial index
// can replace the linear scan later without touching callers.
type ZoneTable struct {
	zones []Zone
}

// NewZoneTable creates a ZoneTable. Every zone needs a unique name and at
// least three valid vertices.
func NewZoneTable(zones []Zone) (*ZoneTable, error) {
	seen := make(map[string]struct{}, len(zones))
	for _, zone := range zones {
		if zone.Name == "" {
			return nil, errs.NewValueIsRequiredError("zone name")
		}
		if zone.Name == OuterZone {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"zone name", fmt.Errorf("%q is reserved for the catch-all zone", OuterZone))
		}
		if _, dup := seen[zone.Name]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"zone name", fmt.Errorf("duplicate zone %q", zone.Name))
		}
		seen[zone.Name] = struct{}{}

		if len(zone.Polygon) < 3 {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"polygon", fmt.Errorf("zone %q has %d vertices, need at least 3",
					zone.Name, len(zone.Polygon)))
		}
		for _, vertex := range zone.Polygon {
			if err := vertex.Validate(); err != nil {
				return nil, err
			}
		}
	}

	return &ZoneTable{zones: append([]Zone(nil), zones...)}, nil
}

// ZoneFor returns the name of the first zone containing the point, or
// OuterZone when no boundary contains it.
func (t *ZoneTable) ZoneFor(point kernel.Location) string {
	for _, zone := range t.zones {
		if pointInPolygon(point, zone.Polygon) {
			return zone.Name
		}
	}
	return OuterZone
}

// Contains reports whether the named zone's boundary contains the point.
// The outer zone contains exactly the points no other zone does.
func (t *ZoneTable) Contains(name string, point kernel.Location) (bool, error) {
	if name == OuterZone {
		return t.ZoneFor(point) == OuterZone, nil
	}

	for _, zone := range t.zones {
		if zone.Name == name {
			return pointInPolygon(point, zone.Polygon), nil
		}
	}
	return false, errs.NewObjectNotFoundError("zone", name)
}

// Names returns the known zone names, excluding the implicit outer zone.
func (t *ZoneTable) Names() []string {
	names := make([]string, 0, len(t.zones))
	for _, zone := range t.zones {
		names = append(names, zone.Name)
	}
	return names
}

// pointInPolygon is the even-odd ray-casting test: a ray cast east from the
// point crosses the boundary an odd number of times iff the point is inside.
// Boundary and vertex points resolve deterministically by the strict
// inequality on the crossing test.
func pointInPolygon(point kernel.Location, polygon []kernel.Location) bool {
	x, y := point.Longitude(), point.Latitude()

	inside := false
	j := len(polygon) - 1
	for i := range polygon {
		xi, yi := polygon[i].Longitude(), polygon[i].Latitude()
		xj, yj := polygon[j].Longitude(), polygon[j].Latitude()

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}

	return inside
}
