package document

// MemoryPage is a Page whose content is fixed up front.
type MemoryPage struct {
	Num        int
	Content    string
	TextErr    error
	PageTables []Table
	TablesErr  error
	// SplitTables, when set, is returned instead of PageTables whenever the
	// caller passes vertical split lines.
	SplitTables []Table
}

func (p *MemoryPage) Number() int { return p.Num }

func (p *MemoryPage) Text() (string, error) {
	if p.TextErr != nil {
		return "", p.TextErr
	}
	return p.Content, nil
}

func (p *MemoryPage) Tables(settings TableSettings) ([]Table, error) {
	if p.TablesErr != nil {
		return nil, p.TablesErr
	}
	if len(settings.VerticalLines) > 0 && p.SplitTables != nil {
		return p.SplitTables, nil
	}
	return p.PageTables, nil
}

// MemoryDocument is an in-memory Document.
type MemoryDocument struct {
	PageList []*MemoryPage
	Closed   bool
}

// NewMemoryDocument numbers the pages in order and wraps them.
func NewMemoryDocument(pages ...*MemoryPage) *MemoryDocument {
	for i, p := range pages {
		if p.Num == 0 {
			p.Num = i + 1
		}
	}
	return &MemoryDocument{PageList: pages}
}

func (d *MemoryDocument) Pages() []Page {
	pages := make([]Page, len(d.PageList))
	for i, p := range d.PageList {
		pages[i] = p
	}
	return pages
}

func (d *MemoryDocument) Close() error {
	d.Closed = true
	return nil
}
