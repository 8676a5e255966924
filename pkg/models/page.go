package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects a zero-based page. An unpaged request returns the whole
// collection and is only issued internally.
type PageRequest struct {
	Page    int
	Size    int
	Unpaged bool
}

// NewPageRequest clamps page and size to sane bounds.
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}
}

// Unpaged requests the entire collection.
func Unpaged() PageRequest {
	return PageRequest{Unpaged: true}
}

func (p PageRequest) Offset() int {
	if p.Unpaged {
		return 0
	}
	return p.Page * p.Size
}

// Page is one page of results together with the size of the full result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	p := &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
	}
	if req.Unpaged {
		p.Page = 0
		p.Size = len(content)
		if total > 0 {
			p.TotalPages = 1
		}
		return p
	}
	if req.Size > 0 {
		p.TotalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return p
}
