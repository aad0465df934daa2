package layer

import "fmt"

// Kind separates tile-backed layers from layers drawn as shapes.
type Kind int

const (
	Raster Kind = iota
	Vector
)

func (k Kind) String() string {
	if k == Vector {
		return "vector"
	}
	return "raster"
}

// Meta describes a layer type.
type Meta struct {
	Kind      Kind `json:"kind"`
	Clickable bool `json:"clickable"`
}

// Layer types.
const (
	TypeArcGisServerRest = "ArcGisServerRest"
	TypeCartoDb          = "CartoDb"
	TypeGeoJson          = "GeoJson"
	TypeGoogleFusion     = "GoogleFusion"
	TypeJson             = "Json"
	TypeKml              = "Kml"
	TypeNativeVectors    = "NativeVectors"
	TypeTiled            = "Tiled"
	TypeTileStream       = "TileStream"
	TypeXml              = "Xml"
	TypeZoomify          = "Zoomify"
)

var metas = map[string]Meta{
	TypeArcGisServerRest: {Kind: Raster, Clickable: true},
	TypeCartoDb:          {Kind: Vector, Clickable: true},
	TypeGeoJson:          {Kind: Vector, Clickable: true},
	TypeGoogleFusion:     {Kind: Vector, Clickable: true},
	TypeJson:             {Kind: Vector, Clickable: true},
	TypeKml:              {Kind: Vector, Clickable: true},
	TypeNativeVectors:    {Kind: Vector, Clickable: true},
	TypeTiled:            {Kind: Raster, Clickable: true},
	TypeTileStream:       {Kind: Vector, Clickable: true},
	TypeXml:              {Kind: Vector, Clickable: true},
	TypeZoomify:          {Kind: Raster},
}

// Lookup returns the metadata of a layer type.
func Lookup(typ string) (Meta, error) {
	m, ok := metas[typ]
	if !ok {
		return Meta{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return m, nil
}

// Types returns every known layer type with its metadata.
func Types() map[string]Meta {
	out := make(map[string]Meta, len(metas))
	for k, v := range metas {
		out[k] = v
	}
	return out
}
