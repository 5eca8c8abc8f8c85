package extractor

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/insightdelivered/card-statement-converter/internal/document"
)

// glyph is one positioned piece of text as reported by the PDF library.
// Y grows upwards.
type glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// textCell is a horizontal run of glyphs with no large gap inside it.
type textCell struct {
	X0, X1  float64
	Text    string
	// Wrapped marks a continuation of the cell above it in the same column.
	Wrapped bool
}

// textLine is every cell sharing one baseline. Height is the largest font
// size on the line.
type textLine struct {
	Y      float64
	Height float64
	Cells  []textCell
}

// layout rebuilds lines, cells and tables from glyph positions.
type layout struct {
	// cellGap is the horizontal whitespace, in points, that separates two cells.
	cellGap float64
	// splits are x offsets at which a cell is always broken.
	splits []float64
}

// lines groups glyphs by rounded baseline, top of the page first, and splits
// each line into cells.
func (l layout) lines(glyphs []glyph) []textLine {
	byY := make(map[int][]glyph)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		y := int(math.Round(g.Y))
		byY[y] = append(byY[y], g)
	}

	ys := make([]int, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	splits := append([]float64(nil), l.splits...)
	sort.Float64s(splits)

	out := make([]textLine, 0, len(ys))
	for _, y := range ys {
		items := byY[y]
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].X < items[b].X
		})
		cells := l.cells(items, splits)
		if len(cells) == 0 {
			continue
		}
		height := 0.0
		for _, g := range items {
			height = math.Max(height, g.FontSize)
		}
		out = append(out, textLine{Y: float64(y), Height: height, Cells: cells})
	}
	return out
}

func (l layout) cells(items []glyph, splits []float64) []textCell {
	var (
		cells   []textCell
		cur     strings.Builder
		curX0   float64
		prevEnd float64
		prevX   float64
		started bool
		space   bool
	)

	flush := func() {
		text := strings.TrimSpace(cur.String())
		if text != "" {
			cells = append(cells, textCell{X0: curX0, X1: prevEnd, Text: text})
		}
		cur.Reset()
		started = false
		space = false
	}

	for _, g := range items {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			space = true
			continue
		}
		if started {
			gap := g.X - prevEnd
			switch {
			case gap > l.cellGap || splitBetween(splits, prevX, g.X):
				flush()
			case space || gap > wordGap(g.FontSize):
				cur.WriteByte(' ')
			}
		}
		if !started {
			curX0 = g.X
			started = true
		}
		cur.WriteString(g.S)
		space = false
		prevX = g.X
		prevEnd = g.X + g.W
	}
	flush()
	return cells
}

// wordGap is the smallest gap treated as a space between words.
func wordGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1
	}
	return fontSize * 0.2
}

func splitBetween(splits []float64, from, to float64) bool {
	for _, x := range splits {
		if x > from && x <= to {
			return true
		}
	}
	return false
}

// text renders lines as plain text, one line per row and cells joined by a space.
func text(lines []textLine) string {
	var b strings.Builder
	for i, ln := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, c := range ln.Cells {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// tables finds runs of consecutive multi-cell lines and aligns their cells
// into columns. Column edges are the left edges of the widest row plus any
// split offsets; a row with nothing in a column gets a nil cell there.
// A wrapped one-cell line stays in the run and is folded into the row above.
func (l layout) tables(lines []textLine) []document.Table {
	var (
		tables []document.Table
		run    []textLine
		prevY  float64
	)
	emit := func() {
		if len(run) >= 2 {
			tables = append(tables, l.align(run))
		}
		run = nil
	}
	for _, ln := range lines {
		switch {
		case len(ln.Cells) >= 2:
			run = append(run, ln)
		case l.wraps(run, prevY, ln):
			last := &run[len(run)-1]
			cell := ln.Cells[0]
			cell.Wrapped = true
			last.Cells = append(append([]textCell(nil), last.Cells...), cell)
		default:
			emit()
		}
		prevY = ln.Y
	}
	emit()
	return tables
}

// wraps reports whether the one-cell line ln continues the last row of run:
// it sits within one and a half line heights of the line above and starts
// right of the table's first column.
func (l layout) wraps(run []textLine, prevY float64, ln textLine) bool {
	if len(run) == 0 || len(ln.Cells) != 1 {
		return false
	}
	height := ln.Height
	if height <= 0 {
		height = l.cellGap
	}
	if prevY-ln.Y > 1.5*height {
		return false
	}
	first := run[0].Cells[0].X0
	for _, r := range run[1:] {
		first = math.Min(first, r.Cells[0].X0)
	}
	return ln.Cells[0].X0 > first+l.cellGap/2
}

func (l layout) align(run []textLine) document.Table {
	widest := run[0]
	for _, ln := range run[1:] {
		if columns(ln) > columns(widest) {
			widest = ln
		}
	}

	edges := make([]float64, 0, len(widest.Cells)+len(l.splits))
	for _, c := range widest.Cells {
		if !c.Wrapped {
			edges = append(edges, c.X0)
		}
	}
	edges = append(edges, l.splits...)
	edges = dedupeEdges(edges, l.cellGap/2)

	tol := l.cellGap / 2
	table := make(document.Table, 0, len(run))
	for _, ln := range run {
		row := make(document.Row, len(edges))
		for _, c := range ln.Cells {
			col := columnOf(edges, c.X0+tol)
			if row[col] == nil {
				row[col] = document.Cell(c.Text)
				continue
			}
			sep := " "
			if c.Wrapped {
				sep = "\n"
			}
			joined := *row[col] + sep + c.Text
			row[col] = &joined
		}
		table = append(table, row)
	}
	return table
}

// columns counts the cells of ln that sit on its own baseline.
func columns(ln textLine) int {
	n := 0
	for _, c := range ln.Cells {
		if !c.Wrapped {
			n++
		}
	}
	return n
}

// dedupeEdges sorts edges and drops any within tol of the previous one.
func dedupeEdges(edges []float64, tol float64) []float64 {
	sort.Float64s(edges)
	out := edges[:0]
	for _, e := range edges {
		if len(out) > 0 && e-out[len(out)-1] <= tol {
			continue
		}
		out = append(out, e)
	}
	return out
}

// columnOf returns the index of the last edge at or left of x.
func columnOf(edges []float64, x float64) int {
	i := sort.SearchFloat64s(edges, x)
	if i < len(edges) && edges[i] == x {
		return i
	}
	if i == 0 {
		return 0
	}
	return i - 1
}
