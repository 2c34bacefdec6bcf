// Package transport defines the request/response DTOs for the buildings module.
package transport

// ResolveRequest carries the query parameters for footprint resolution.
// Either a postcode or a lat/lon pair must be supplied.
type ResolveRequest struct {
	Postcode         string   `form:"postcode"`
	Lat              *float64 `form:"lat"`
	Lon              *float64 `form:"lon"`
	TotalFloorAreaM2 *float64 `form:"totalFloorArea"`
}

// FootprintResponse is the resolved building footprint returned to callers.
type FootprintResponse struct {
	Ring         []CoordinateDTO `json:"ring"`
	Centroid     CoordinateDTO   `json:"centroid"`
	AreaM2       float64         `json:"areaM2"`
	Floors       int             `json:"floors"`
	PropertyType string          `json:"propertyType"`
}

// CoordinateDTO is a WGS84 latitude/longitude pair.
type CoordinateDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
