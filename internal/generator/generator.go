package generator

import "svw.info/sheep/internal/domain"

// LayeredGenerator lays tiles out over domain.Layers stacked layers of a
// fixed play field.
type LayeredGenerator struct {
	Field domain.Field
}

// NewLayeredGenerator wires a generator for the given field; a zero field
// falls back to domain.DefaultField.
func NewLayeredGenerator(f domain.Field) *LayeredGenerator {
	if f.TileSize <= 0 || f.Width <= 0 || f.Height <= 0 {
		f = domain.DefaultField
	}
	return &LayeredGenerator{Field: f}
}

// Capacity derives the pool size from the field. perLayer only feeds the
// total; a layer takes as many tiles as its lattice has room for.
func Capacity(f domain.Field) (perLayer, perType int) {
	perLayer = (f.Cols() * f.Rows()) / 8
	total := perLayer * domain.Layers
	total -= total % 3
	perType = total / domain.TypeCount
	perType -= perType % 3
	return perLayer, perType
}
