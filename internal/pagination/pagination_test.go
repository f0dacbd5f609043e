package pagination

import "testing"

type countingPager struct{ pages int }

func (p *countingPager) AddPage() { p.pages++ }

func TestReserveBreaksWhenBlockCrossesFooter(t *testing.T) {
	pager := &countingPager{}
	c := NewEngine().NewCursor(pager, 200)

	y, broke := c.Reserve(40)
	if !broke {
		t.Fatal("Expected a page break")
	}
	if y != 20 || c.Page() != 2 || pager.pages != 1 {
		t.Errorf("Expected block at y=20 on page 2, got y=%v page=%d pages added=%d", y, c.Page(), pager.pages)
	}
	if c.Y() != 60 {
		t.Errorf("Expected cursor at 60, got %v", c.Y())
	}
}

func TestReserveExactFitDoesNotBreak(t *testing.T) {
	c := NewEngine().NewCursor(nil, 200)
	if _, broke := c.Reserve(47); broke {
		t.Error("Block ending exactly at the footer reserve must not break")
	}
}

func TestOversizedBlockBreaksAtMostOnce(t *testing.T) {
	tests := []struct {
		name   string
		startY float64
		height float64
		breaks int
	}{
		{"oversized block mid page", 150, 500, 1},
		{"oversized block at top of page 1", 20, 500, 1},
		{"fits", 55, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pager := &countingPager{}
			c := NewEngine().NewCursor(pager, tt.startY)
			c.Reserve(tt.height)
			if c.Breaks() != tt.breaks || pager.pages != tt.breaks {
				t.Errorf("Expected %d breaks, got %d", tt.breaks, c.Breaks())
			}
			// the next oversized block starts on a fresh page and stays there
			if tt.breaks == 1 {
				c.SetY(c.Top())
				c.Reserve(tt.height)
				if c.Breaks() != 1 {
					t.Errorf("Block at top of a fresh page must not break again")
				}
			}
		})
	}
}

func TestColumnFlowRoundRobin(t *testing.T) {
	for n := 0; n <= 8; n++ {
		c := NewEngine().NewCursor(nil, 55)
		flow := c.Columns(20, 110)
		for i := 0; i < n; i++ {
			slot := flow.Place(10)
			if slot.Column != i%2 {
				t.Fatalf("n=%d item %d: expected column %d, got %d", n, i, i%2, slot.Column)
			}
		}
		counts := flow.Counts()
		if counts[Left] != (n+1)/2 || counts[Right] != n/2 {
			t.Errorf("n=%d: expected %d/%d, got %d/%d", n, (n+1)/2, n/2, counts[Left], counts[Right])
		}
	}
}

func TestColumnFlowIgnoresColumnHeights(t *testing.T) {
	c := NewEngine().NewCursor(nil, 55)
	flow := c.Columns(20, 110)
	flow.Place(60)
	flow.Place(10)
	slot := flow.Place(10)
	if slot.Column != Left || slot.Y != 115 {
		t.Errorf("Expected third item in left column at 115, got column %d at %v", slot.Column, slot.Y)
	}
	if flow.Bottom() != 125 {
		t.Errorf("Expected bottom 125, got %v", flow.Bottom())
	}
}

func TestColumnFlowOverflowResetsBothColumns(t *testing.T) {
	pager := &countingPager{}
	c := NewEngine().NewCursor(pager, 150)
	flow := c.Columns(20, 110)

	flow.Place(80) // left 150..230
	slot := flow.Place(100)
	if !slot.Broke || slot.Column != Left || slot.Y != 20 {
		t.Fatalf("Expected break into left column at 20, got %+v", slot)
	}
	next := flow.Place(30)
	if next.Column != Right || next.Y != 20 {
		t.Errorf("Expected right column at 20 after reset, got %+v", next)
	}
	if pager.pages != 1 || c.Page() != 2 {
		t.Errorf("Expected one added page, got %d", pager.pages)
	}
}

func TestColumnFlowItemTallerThanPage(t *testing.T) {
	pager := &countingPager{}
	c := NewEngine().NewCursor(pager, 150)
	flow := c.Columns(20, 110)
	slot := flow.Place(300)
	if pager.pages != 1 || slot.Y != 20 {
		t.Errorf("Expected a single break and placement at the top, got %d breaks at %v", pager.pages, slot.Y)
	}
}

func TestColumnFlowSettle(t *testing.T) {
	c := NewEngine().NewCursor(nil, 55)
	flow := c.Columns(20, 110)
	slot := flow.Place(70)
	flow.Settle(slot, 26)
	if flow.Bottom() != 81 {
		t.Errorf("Expected bottom 81, got %v", flow.Bottom())
	}
}
