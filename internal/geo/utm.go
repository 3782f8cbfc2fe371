package geo

import (
	"errors"
	"fmt"
	"math"

	utm "github.com/im7mortal/UTM"
)

// Hemisphere of a UTM grid position.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
)

// UTM is a position on the Universal Transverse Mercator grid. Two
// positions are planar-comparable only when Zone and Hemisphere match.
type UTM struct {
	Zone       int        `json:"zone"`
	Hemisphere Hemisphere `json:"hemisphere"`
	Easting    float64    `json:"easting"`
	Northing   float64    `json:"northing"`
}

var (
	ErrInvalidZone       = errors.New("utm zone must be between 1 and 60")
	ErrInvalidHemisphere = errors.New("utm hemisphere must be N or S")
	ErrOutOfRange        = errors.New("utm coordinates out of range")
)

const falseNorthing = 10_000_000.0

// Validate checks the zone, hemisphere and coordinate ranges.
func (u UTM) Validate() error {
	if u.Zone < 1 || u.Zone > 60 {
		return ErrInvalidZone
	}
	if u.Hemisphere != North && u.Hemisphere != South {
		return ErrInvalidHemisphere
	}
	if math.IsNaN(u.Easting) || math.IsNaN(u.Northing) ||
		u.Easting < 100_000 || u.Easting > 900_000 ||
		u.Northing < 0 || u.Northing > falseNorthing {
		return ErrOutOfRange
	}
	return nil
}

// SameZone reports whether planar distance between u and o is meaningful.
func (u UTM) SameZone(o UTM) bool {
	return u.Zone == o.Zone && u.Hemisphere == o.Hemisphere
}

// ToUTM projects a geographic position onto its UTM zone. Latitudes
// outside 80S..84N have no UTM zone.
func ToUTM(p LatLng) (UTM, error) {
	easting, northing, zone, _, err := utm.FromLatLon(p.Lat, p.Lng, p.Lat >= 0)
	if err != nil {
		return UTM{}, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	hemi := North
	if p.Lat < 0 {
		hemi = South
	}
	return UTM{Zone: zone, Hemisphere: hemi, Easting: easting, Northing: northing}, nil
}

// LatLng inverts the projection back to a geographic position.
func (u UTM) LatLng() (LatLng, error) {
	lat, lng, err := utm.ToLatLon(u.Easting, u.Northing, u.Zone, "", u.Hemisphere == North)
	if err != nil {
		return LatLng{}, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return LatLng{Lat: lat, Lng: lng}, nil
}

// PlanarDistance is the Euclidean grid distance in meters. Only meaningful
// when both positions share a zone.
func PlanarDistance(a, b UTM) float64 {
	return math.Hypot(a.Easting-b.Easting, a.Northing-b.Northing)
}

// GridDistance returns the planar distance when a and b share a zone and
// falls back to Haversine between their geographic positions otherwise.
func GridDistance(a, b UTM) (float64, error) {
	if a.SameZone(b) {
		return PlanarDistance(a, b), nil
	}
	p, err := a.LatLng()
	if err != nil {
		return 0, err
	}
	q, err := b.LatLng()
	if err != nil {
		return 0, err
	}
	return Haversine(p, q), nil
}
