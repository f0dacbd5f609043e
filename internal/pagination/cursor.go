package pagination

// Pager adds pages to the document being written.
type Pager interface {
	AddPage()
}

// Cursor tracks the write position across pages. A block that would cross
// the footer reserve moves to a new page first; a block is never split.
type Cursor struct {
	opts   Options
	pager  Pager
	page   int
	y      float64
	breaks int
}

// Y returns the current vertical offset.
func (c *Cursor) Y() float64 { return c.y }

// Page returns the 1-based page index.
func (c *Cursor) Page() int { return c.page }

// Breaks returns how many page breaks the cursor has taken.
func (c *Cursor) Breaks() int { return c.breaks }

// Limit is the lowest offset content may reach on a page.
func (c *Cursor) Limit() float64 { return c.opts.PageHeight - c.opts.FooterReserve }

// Top is the offset content restarts at after a break.
func (c *Cursor) Top() float64 { return c.opts.MarginTop }

// Remaining is the space left above the footer reserve.
func (c *Cursor) Remaining() float64 { return c.Limit() - c.y }

// Fits reports whether a block of height h fits below the cursor.
func (c *Cursor) Fits(h float64) bool { return c.y+h <= c.Limit() }

// AtTop reports whether nothing has been written on the current page since
// the last break.
func (c *Cursor) AtTop() bool { return c.page > 1 && c.y <= c.opts.MarginTop }

// Ensure breaks the page when h does not fit. It breaks at most once: a
// block taller than a whole page is placed at the top and overflows.
func (c *Cursor) Ensure(h float64) bool {
	if c.Fits(h) || c.AtTop() {
		return false
	}
	c.Break()
	return true
}

// Reserve ensures room for h, returns the offset the block starts at and
// moves the cursor below it.
func (c *Cursor) Reserve(h float64) (y float64, broke bool) {
	broke = c.Ensure(h)
	y = c.y
	c.y += h
	return y, broke
}

// Break starts a new page.
func (c *Cursor) Break() {
	if c.pager != nil {
		c.pager.AddPage()
	}
	c.page++
	c.breaks++
	c.y = c.opts.MarginTop
}

// Advance moves the cursor down by dy.
func (c *Cursor) Advance(dy float64) { c.y += dy }

// SetY moves the cursor to y on the current page.
func (c *Cursor) SetY(y float64) { c.y = y }
