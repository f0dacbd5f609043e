package pagination

// Column indexes.
const (
	Left  = 0
	Right = 1
)

// Slot is where ColumnFlow placed an item.
type Slot struct {
	Column int
	X      float64
	Y      float64
	Broke  bool
}

// ColumnFlow places items in two columns with strict left/right alternation,
// independent of how tall each column already is. When an item does not fit
// below its column, a page break resets both columns and the item goes to
// the left one.
type ColumnFlow struct {
	cursor *Cursor
	x      [2]float64
	y      [2]float64
	next   int
	counts [2]int
}

// Columns starts a two-column flow at the cursor's current offset.
func (c *Cursor) Columns(leftX, rightX float64) *ColumnFlow {
	return &ColumnFlow{
		cursor: c,
		x:      [2]float64{leftX, rightX},
		y:      [2]float64{c.y, c.y},
	}
}

// Place reserves height h in the next column.
func (f *ColumnFlow) Place(h float64) Slot {
	col := f.next
	broke := false
	if f.y[col]+h > f.cursor.Limit() && !f.fresh() {
		f.cursor.Break()
		top := f.cursor.Top()
		f.y = [2]float64{top, top}
		col = Left
		broke = true
	}

	slot := Slot{Column: col, X: f.x[col], Y: f.y[col], Broke: broke}
	f.y[col] += h
	f.counts[col]++
	f.next = 1 - col
	return slot
}

// Settle corrects the height used by the item placed in slot.
func (f *ColumnFlow) Settle(slot Slot, used float64) {
	f.y[slot.Column] = slot.Y + used
}

// Bottom is the lower edge of the taller column.
func (f *ColumnFlow) Bottom() float64 {
	if f.y[Left] > f.y[Right] {
		return f.y[Left]
	}
	return f.y[Right]
}

// Counts returns how many items each column received.
func (f *ColumnFlow) Counts() [2]int { return f.counts }

// fresh reports whether both columns sit at the top of a page that was
// started by this flow.
func (f *ColumnFlow) fresh() bool {
	top := f.cursor.Top()
	return f.cursor.Page() > 1 && f.y[Left] <= top && f.y[Right] <= top
}
