package data

import (
	"testing"

	"github.com/avelarde/libris/internal/validator"
	"github.com/stretchr/testify/assert"
)

func TestValidateFilters(t *testing.T) {
	safelist := []string{"created_at", "-created_at"}
	tests := []struct {
		name    string
		filters Filters
		valid   bool
	}{
		{name: "valid", filters: Filters{Page: 1, PageSize: 20, Sort: "-created_at", SortSafeList: safelist}, valid: true},
		{name: "zero page", filters: Filters{Page: 0, PageSize: 20, Sort: "created_at", SortSafeList: safelist}, valid: false},
		{name: "oversized page size", filters: Filters{Page: 1, PageSize: 101, Sort: "created_at", SortSafeList: safelist}, valid: false},
		{name: "unsafe sort", filters: Filters{Page: 1, PageSize: 20, Sort: "password", SortSafeList: safelist}, valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateFilters(v, tt.filters)
			assert.Equal(t, tt.valid, v.Valid(), "errors: %v", v.Errors)
		})
	}
}

func TestSortColumn(t *testing.T) {
	f := Filters{Sort: "-rating", SortSafeList: []string{"rating", "-rating"}}
	assert.Equal(t, "rating", f.SortColumn())
	assert.Equal(t, "DESC", f.SortDirection())

	f.Sort = "rating"
	assert.Equal(t, "ASC", f.SortDirection())
}

func TestSortColumnPanicsOnUnsafeValue(t *testing.T) {
	f := Filters{Sort: "password", SortSafeList: []string{"rating"}}
	assert.Panics(t, func() { f.SortColumn() })
}

func TestCalculateMetadata(t *testing.T) {
	metadata := CalculateMetadata(45, 2, 20)
	assert.Equal(t, 2, metadata.CurrentPage)
	assert.Equal(t, 20, metadata.PageSize)
	assert.Equal(t, 1, metadata.FirstPage)
	assert.Equal(t, 3, metadata.LastPage)
	assert.Equal(t, 45, metadata.TotalRecords)

	assert.Equal(t, Metadata{}, CalculateMetadata(0, 1, 20))
}
