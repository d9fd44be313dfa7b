package common

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList stores a slice as a JSON array in a text column. NULL and empty values
// scan as an empty list.
type JSONList[T any] []T

func (l JSONList[T]) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (l *JSONList[T]) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into a JSON list", value)
	}
	if len(raw) == 0 {
		*l = JSONList[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*l = items
	return nil
}

// ToSlice returns a non-nil copy.
func (l JSONList[T]) ToSlice() []T {
	return append(make([]T, 0, len(l)), l...)
}

// StringArray holds URLs, certifications and tags.
type StringArray = JSONList[string]

// IntArray holds completed lesson ids.
type IntArray = JSONList[int]

// Meta is the paging block of list responses.
type Meta struct {
	Page     int64 `json:"page"`
	PageSize int64 `json:"page_size"`
	Total    int64 `json:"total"`
}

// BaseParams carries paging and sorting query parameters.
type BaseParams struct {
	PageSize int64  `json:"page_size" form:"page_size"`
	Page     int64  `json:"page" form:"page"`
	SortBy   string `json:"sort_by" form:"sort_by"`
	SortDesc bool   `json:"sort_desc" form:"sort_desc"`
}

// Normalise fills in default paging values and caps the page size.
func (p *BaseParams) Normalise(defaultSize, maxSize int64) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
}

// Offset returns the row offset for the current page.
func (p BaseParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return int((p.Page - 1) * p.PageSize)
}
