package fetchkit

// Page describes pagination progress for a list response.
type Page struct {
	Page       int `json:"page"          yaml:"page"`
	TotalPages int `json:"total_pages"   yaml:"total_pages"`
	PerPage    int `json:"per_page"      yaml:"per_page"`
	Total      int `json:"total_results" yaml:"total_results"`
}

// HasNext reports whether another page follows this one.
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// ListResponse represents a paginated list response.
type ListResponse[T any] struct {
	Pagination Page `json:"pagination" yaml:"pagination"`
	Resources  []T  `json:"resources"  yaml:"resources"`
}
