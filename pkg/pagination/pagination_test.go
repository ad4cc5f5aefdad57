package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(Params{})
	if p.Page != 1 || p.Size != DefaultSize {
		t.Fatalf("unexpected normalized params %+v", p)
	}
}

func TestNormalizeClampsSize(t *testing.T) {
	p := Normalize(Params{Page: 2, Size: 5000})
	if p.Size != MaxSize {
		t.Fatalf("expected size clamped to %d, got %d", MaxSize, p.Size)
	}
	if p.Page != 2 {
		t.Fatalf("page should be untouched, got %d", p.Page)
	}
}

func TestOffset(t *testing.T) {
	if off := (Params{Page: 3, Size: 20}).Offset(); off != 40 {
		t.Fatalf("expected offset 40, got %d", off)
	}
	if off := (Params{}).Offset(); off != 0 {
		t.Fatalf("expected zero offset for defaults, got %d", off)
	}
}

func TestPagingFor(t *testing.T) {
	paging := PagingFor(Params{Page: 1, Size: 10}, 25)
	if paging.TotalPage != 3 {
		t.Fatalf("expected 3 pages, got %d", paging.TotalPage)
	}
	paging = PagingFor(Params{Page: 1, Size: 10}, 30)
	if paging.TotalPage != 3 {
		t.Fatalf("expected exact division to yield 3 pages, got %d", paging.TotalPage)
	}
	paging = PagingFor(Params{Page: 1, Size: 10}, 0)
	if paging.TotalPage != 0 {
		t.Fatalf("expected 0 pages for empty result, got %d", paging.TotalPage)
	}
}
