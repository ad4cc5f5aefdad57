package pagination

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 10
	// MaxSize caps how many rows any listing can request.
	MaxSize = 100
)

// Params holds page/size pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Paging describes the page that was returned and how many pages exist.
type Paging struct {
	CurrentPage int   `json:"current_page"`
	Size        int   `json:"size"`
	TotalPage   int64 `json:"total_page"`
}

// Normalize clamps page and size into their allowed ranges.
func Normalize(p Params) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := Normalize(p)
	return (n.Page - 1) * n.Size
}

// Limit returns the row limit for the normalized params.
func (p Params) Limit() int {
	return Normalize(p).Size
}

// PagingFor builds the response paging block for a total row count.
func PagingFor(p Params, total int64) Paging {
	n := Normalize(p)
	pages := total / int64(n.Size)
	if total%int64(n.Size) != 0 {
		pages++
	}
	return Paging{
		CurrentPage: n.Page,
		Size:        n.Size,
		TotalPage:   pages,
	}
}
