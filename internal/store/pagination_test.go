package store

import "testing"

func TestPageParamsNormalize(t *testing.T) {
	cases := []struct {
		name     string
		in       PageParams
		wantPage int
		wantSize int
	}{
		{"zero values get defaults", PageParams{}, 1, 50},
		{"negative page clamps to 1", PageParams{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size capped", PageParams{Page: 2, PageSize: 999}, 2, 200},
		{"valid params untouched", PageParams{Page: 4, PageSize: 25}, 4, 25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := c.in
			p.Normalize(50, 200)
			if p.Page != c.wantPage || p.PageSize != c.wantSize {
				t.Errorf("Normalize(%+v) = page %d size %d, want %d/%d", c.in, p.Page, p.PageSize, c.wantPage, c.wantSize)
			}
		})
	}
}

func TestPageParamsOffset(t *testing.T) {
	p := PageParams{Page: 3, PageSize: 20}
	if got := p.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, PageParams{Page: 1, PageSize: 3}, 10)
	if page.TotalPages != 4 {
		t.Errorf("TotalPages = %d, want 4", page.TotalPages)
	}
	if page.TotalItems != 10 {
		t.Errorf("TotalItems = %d, want 10", page.TotalItems)
	}

	empty := NewPage[int](nil, PageParams{Page: 1, PageSize: 50}, 0)
	if empty.TotalPages != 0 {
		t.Errorf("empty TotalPages = %d, want 0", empty.TotalPages)
	}
}
