package pagination

// Options represents options for the pagination engine. Units are millimetres.
type Options struct {
	PageWidth  float64
	PageHeight float64
	// MarginTop is where content restarts after a page break.
	MarginTop float64
	// FooterReserve is the space kept free at the bottom of every page.
	FooterReserve float64
}

// Engine hands out cursors configured with the same page geometry.
type Engine struct {
	options Options
}

// NewEngine creates a new pagination engine for A4 portrait pages.
func NewEngine() *Engine {
	return &Engine{
		options: Options{
			PageWidth:     210,
			PageHeight:    297,
			MarginTop:     20,
			FooterReserve: 50,
		},
	}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the current page geometry.
func (e *Engine) Options() Options {
	return e.options
}

// NewCursor starts a cursor on page 1 at startY. pager is told about every
// page break the cursor takes.
func (e *Engine) NewCursor(pager Pager, startY float64) *Cursor {
	return &Cursor{
		opts:  e.options,
		pager: pager,
		page:  1,
		y:     startY,
	}
}
