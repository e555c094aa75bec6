package render

// Paginator tracks the page currently shown by a list view.
type Paginator struct {
	pages []string
	index int
}

func NewPaginator(pages []string) *Paginator {
	if len(pages) == 0 {
		pages = []string{Default().Header()}
	}
	return &Paginator{pages: pages}
}

func (p *Paginator) Index() int      { return p.index }
func (p *Paginator) Len() int        { return len(p.pages) }
func (p *Paginator) Current() string { return p.pages[p.index] }

// HasPrevious is false on the first page, where "previous" is disabled.
func (p *Paginator) HasPrevious() bool { return p.index > 0 }

// HasNext is false on the last page, where "next" is disabled.
func (p *Paginator) HasNext() bool { return p.index < len(p.pages)-1 }

// Previous moves back one page and reports whether it moved.
func (p *Paginator) Previous() bool {
	if !p.HasPrevious() {
		return false
	}
	p.index--
	return true
}

// Next moves forward one page and reports whether it moved.
func (p *Paginator) Next() bool {
	if !p.HasNext() {
		return false
	}
	p.index++
	return true
}
