package helpers

import "testing"

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantOffset uint64
		wantLimit  int
	}{
		{name: "first page", page: 1, size: 20, wantOffset: 0, wantLimit: 20},
		{name: "third page", page: 3, size: 10, wantOffset: 20, wantLimit: 10},
		{name: "zero page clamps to first", page: 0, size: 10, wantOffset: 0, wantLimit: 10},
		{name: "zero size uses default", page: 2, size: 0, wantOffset: 20, wantLimit: DefaultPageSize},
		{name: "oversized page size uses default", page: 1, size: MaxPageSize + 1, wantOffset: 0, wantLimit: DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page, tt.size)
			if offset != tt.wantOffset || limit != tt.wantLimit {
				t.Fatalf("expected offset=%d limit=%d, got offset=%d limit=%d",
					tt.wantOffset, tt.wantLimit, offset, limit)
			}
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	if info.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", info.TotalPages)
	}
	if info.CurrentPage != 2 || info.PageSize != 20 || info.TotalItems != 45 {
		t.Fatalf("unexpected pagination info: %+v", info)
	}

	empty := NewPaginationInfo(0, 1, 20)
	if empty.TotalPages != 1 {
		t.Fatalf("empty result set still reports one page, got %d", empty.TotalPages)
	}

	beyond := NewPaginationInfo(10, 5, 20)
	if beyond.CurrentPage != 1 {
		t.Fatalf("page beyond range clamps to the last page, got %d", beyond.CurrentPage)
	}
}
