package model

import "github.com/google/uuid"

// EmptyCell marks an unoccupied grid cell. Any other value is the
// identifier of the piece occupying that cell.
const EmptyCell = -1

// Stock is the occupancy grid of a single stock sheet, indexed [y][x].
// The policy core only reads stocks; cells are written by the environment
// when a placement is applied.
type Stock [][]int

// NewStock creates an empty w x h occupancy grid.
func NewStock(w, h int) Stock {
	s := make(Stock, h)
	for y := range s {
		row := make([]int, w)
		for x := range row {
			row[x] = EmptyCell
		}
		s[y] = row
	}
	return s
}

// Width returns the grid width in cells.
func (s Stock) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Height returns the grid height in cells.
func (s Stock) Height() int {
	return len(s)
}

// Area returns the total cell count.
func (s Stock) Area() int {
	return s.Width() * s.Height()
}

// At returns the occupant of cell (x, y), or EmptyCell.
func (s Stock) At(x, y int) int {
	return s[y][x]
}

// UsedCells counts occupied cells.
func (s Stock) UsedCells() int {
	used := 0
	for _, row := range s {
		for _, c := range row {
			if c != EmptyCell {
				used++
			}
		}
	}
	return used
}

// IsEmpty reports whether no cell is occupied.
func (s Stock) IsEmpty() bool {
	return s.UsedCells() == 0
}

// FilledRatio returns used area over total area for this stock alone.
func (s Stock) FilledRatio() float64 {
	area := s.Area()
	if area == 0 {
		return 0
	}
	return float64(s.UsedCells()) / float64(area)
}

// Clone returns a deep copy of the grid.
func (s Stock) Clone() Stock {
	c := make(Stock, len(s))
	for y, row := range s {
		c[y] = make([]int, len(row))
		copy(c[y], row)
	}
	return c
}

// Product represents one rectangular demand entry. Quantity is the number
// of pieces of this size still to be placed and never goes negative; an
// entry with Quantity 0 is ineligible for placement.
type Product struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Quantity int    `json:"quantity"`
}

// NewProduct creates a demand entry with a fresh short id.
func NewProduct(label string, w, h, qty int) Product {
	return Product{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Width:    w,
		Height:   h,
		Quantity: qty,
	}
}

// Area returns the piece area in cells.
func (p Product) Area() int {
	return p.Width * p.Height
}

// Placement is a concrete decision: the target stock, the
// orientation-resolved size and the top-left cell. Width/Height are the
// product's declared dimensions swapped when Rotated is set.
type Placement struct {
	StockIdx int  `json:"stock_idx"`
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Rotated  bool `json:"rotated"`
}

// Observation is the per-step view of the world the environment exposes:
// ordered stocks and ordered product demands.
type Observation struct {
	Stocks   []Stock
	Products []Product
}

// RemainingDemand sums the outstanding quantities over all products.
func (o Observation) RemainingDemand() int {
	total := 0
	for _, p := range o.Products {
		total += p.Quantity
	}
	return total
}

// LargestProduct returns the largest-area product with remaining quantity,
// or nil when demand is exhausted.
func (o Observation) LargestProduct() *Product {
	best := -1
	bestArea := 0
	for i, p := range o.Products {
		if p.Quantity > 0 && p.Area() > bestArea {
			bestArea = p.Area()
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &o.Products[best]
}

// StepInfo carries the observation side channel.
type StepInfo struct {
	FilledRatio float64
}
