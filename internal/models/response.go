package models

// Response is the envelope of every API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the details of a failed request
type ErrorBody struct {
	Status int               `json:"status"`
	Fields map[string]string `json:"fields,omitempty"`
	Stack  string            `json:"stack,omitempty"`
}

// PaginatedResponse is the envelope of list endpoints
type PaginatedResponse struct {
	Response
	Total int  `json:"total"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is one page of an in-memory result set
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
	Next  *int
	Prev  *int
}

// Paginate slices items into the requested 1-based page
func Paginate[T any](items []T, page, limit int) Page[T] {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	p := Page[T]{
		Items: items[start:end],
		Total: total,
		Page:  page,
		Limit: limit,
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	if end < total {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		if lastPage := (total + limit - 1) / limit; prev > lastPage {
			prev = lastPage
		}
		if prev >= 1 {
			p.Prev = &prev
		}
	}
	return p
}
