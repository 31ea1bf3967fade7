package domain

const (
	// MaxStorage is the staging area capacity.
	MaxStorage = 7
	// Layers is the number of stacking layers a board is generated with.
	Layers = 5
)

// Field is the fixed play-field geometry, in pixels. It only sizes the
// placement grid; gameplay never reads it.
type Field struct {
	Width    int `json:"width" yaml:"width"`
	Height   int `json:"height" yaml:"height"`
	TileSize int `json:"tileSize" yaml:"tile_size"`
}

// DefaultField is the play field used when nothing else is configured.
var DefaultField = Field{Width: 320, Height: 400, TileSize: 40}

// CellSize is the side of one grid cell; a tile covers 2×2 cells.
func (f Field) CellSize() int { return f.TileSize / 2 }

func (f Field) Cols() int {
	if f.CellSize() <= 0 {
		return 0
	}
	return f.Width / f.CellSize()
}

func (f Field) Rows() int {
	if f.CellSize() <= 0 {
		return 0
	}
	return f.Height / f.CellSize()
}

// Tile is a single piece on the board or in staging.
type Tile struct {
	ID      int      `json:"id"`
	Type    TileType `json:"type"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Layer   int      `json:"layer"`
	Blocked bool     `json:"blocked"`
}

func (t Tile) Right() int  { return t.X + t.Width }
func (t Tile) Bottom() int { return t.Y + t.Height }

// Overlaps reports whether the bounding boxes intersect with positive area.
func (t Tile) Overlaps(u Tile) bool {
	return !(t.Right() <= u.X || t.X >= u.Right() || t.Bottom() <= u.Y || t.Y >= u.Bottom())
}

// Layout is a freshly generated board.
type Layout struct {
	Seed      int64  `json:"seed"`
	Field     Field  `json:"field"`
	Tiles     []Tile `json:"tiles"`
	Remaining int    `json:"remaining"`
}

// Snapshot is the read-only render input handed to front ends.
type Snapshot struct {
	ID         string `json:"id,omitempty"`
	Seed       int64  `json:"seed"`
	Field      Field  `json:"field"`
	Board      []Tile `json:"board"`
	Staging    []Tile `json:"staging"`
	Exiting    []int  `json:"exiting,omitempty"`
	Status     Status `json:"status"`
	Remaining  int    `json:"remaining"`
	Processing bool   `json:"processing"`
}

// Hint points at a tile worth selecting next.
type Hint struct {
	TileID  int      `json:"tileId"`
	Type    TileType `json:"type"`
	Message string   `json:"message,omitempty"`
	// Completes is set when selecting the tile eliminates a triple.
	Completes bool `json:"completes,omitempty"`
}

// Solution is the outcome of a clearing search from the current position.
type Solution struct {
	Solvable bool  `json:"solvable"`
	Moves    []int `json:"moves,omitempty"`
	Nodes    int   `json:"nodes"`
	// Exhausted is set when the search stopped before reaching a verdict.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Problem is a single invariant violation.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	TileIDs []int       `json:"tileIds,omitempty"`
	Message string      `json:"message"`
}

// GameMeta is a lightweight listing entry for a running session.
type GameMeta struct {
	ID        string `json:"id"`
	Seed      int64  `json:"seed"`
	Status    Status `json:"status"`
	Remaining int    `json:"remaining"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}
