package pyoro

// Tile is one unit of floor.
type Tile struct {
	Index     int
	Exists    bool
	Repairing bool // An angel is on its way; implies !Exists
}

// TileRow is the fixed-length floor the bird walks on.
type TileRow struct {
	tiles []Tile
}

// NewTileRow creates w intact tiles.
func NewTileRow(w int) *TileRow {
	r := &TileRow{tiles: make([]Tile, w)}
	for i := range r.tiles {
		r.tiles[i] = Tile{Index: i, Exists: true}
	}
	return r
}

// Len returns the number of tiles.
func (r *TileRow) Len() int {
	return len(r.tiles)
}

// InRange reports whether i is a valid tile index.
func (r *TileRow) InRange(i int) bool {
	return i >= 0 && i < len(r.tiles)
}

// At returns a copy of tile i. i must be in range.
func (r *TileRow) At(i int) Tile {
	return r.tiles[i]
}

// Exists reports whether tile i is intact.
func (r *TileRow) Exists(i int) bool {
	return r.InRange(i) && r.tiles[i].Exists
}

// Repairing reports whether an angel is coming for tile i.
func (r *TileRow) Repairing(i int) bool {
	return r.InRange(i) && r.tiles[i].Repairing
}

// Destroy breaks tile i.
func (r *TileRow) Destroy(i int) {
	if r.InRange(i) {
		r.tiles[i].Exists = false
	}
}

// MarkRepairing reserves void tile i for one angel. It reports false if
// the tile exists or is already reserved.
func (r *TileRow) MarkRepairing(i int) bool {
	if !r.InRange(i) || r.tiles[i].Exists || r.tiles[i].Repairing {
		return false
	}
	r.tiles[i].Repairing = true
	return true
}

// Repair restores tile i.
func (r *TileRow) Repair(i int) {
	if r.InRange(i) {
		r.tiles[i].Exists = true
		r.tiles[i].Repairing = false
	}
}

// VoidTiles returns the indices of broken tiles no angel is coming for.
func (r *TileRow) VoidTiles() []int {
	var out []int
	for _, t := range r.tiles {
		if !t.Exists && !t.Repairing {
			out = append(out, t.Index)
		}
	}
	return out
}

// Bitmap returns the Exists flag of every tile.
func (r *TileRow) Bitmap() []bool {
	out := make([]bool, len(r.tiles))
	for i, t := range r.tiles {
		out[i] = t.Exists
	}
	return out
}
