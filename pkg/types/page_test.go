package types

import "testing"

func TestNewPage_Windowing(t *testing.T) {
	all := []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

	tests := []struct {
		name      string
		req       PageRequest
		wantItems []int
		wantPage  int
		wantPages int
	}{
		{"first page", PageRequest{Page: 1, PerPage: 3}, []int{10, 9, 8}, 1, 4},
		{"middle page", PageRequest{Page: 2, PerPage: 3}, []int{7, 6, 5}, 2, 4},
		{"last partial page", PageRequest{Page: 4, PerPage: 3}, []int{1}, 4, 4},
		{"beyond the end", PageRequest{Page: 9, PerPage: 3}, []int{}, 9, 4},
		{"page clamped to 1", PageRequest{Page: 0, PerPage: 4}, []int{10, 9, 8, 7}, 1, 3},
		{"exact fit", PageRequest{Page: 1, PerPage: 5}, []int{10, 9, 8, 7, 6}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(all, tt.req)
			if p.Total != len(all) {
				t.Errorf("Total = %d, want %d", p.Total, len(all))
			}
			if p.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", p.Pages, tt.wantPages)
			}
			if len(p.Items) != len(tt.wantItems) {
				t.Fatalf("Items = %v, want %v", p.Items, tt.wantItems)
			}
			for i, v := range tt.wantItems {
				if p.Items[i] != v {
					t.Errorf("Items[%d] = %d, want %d", i, p.Items[i], v)
				}
			}
		})
	}
}

func TestNewPage_ConcatenationReproducesListing(t *testing.T) {
	all := make([]int, 23)
	for i := range all {
		all[i] = i
	}

	var got []int
	perPage := 5
	pages := PageCount(len(all), perPage)
	for pg := 1; pg <= pages; pg++ {
		p := NewPage(all, PageRequest{Page: pg, PerPage: perPage})
		got = append(got, p.Items...)
	}

	if len(got) != len(all) {
		t.Fatalf("concatenated %d items, want %d", len(got), len(all))
	}
	for i := range all {
		if got[i] != all[i] {
			t.Errorf("item %d = %d, want %d", i, got[i], all[i])
		}
	}
}

func TestNewPage_Unpaginated(t *testing.T) {
	p := NewPage([]string{"a", "b"}, PageRequest{})
	if len(p.Items) != 2 || p.Total != 2 || p.Page != 1 || p.Pages != 1 {
		t.Errorf("unexpected page: %+v", p)
	}

	empty := NewPage[string](nil, PageRequest{})
	if empty.Items == nil {
		t.Error("Items should be non-nil for JSON marshaling")
	}
	if empty.Pages != 0 {
		t.Errorf("Pages = %d, want 0 for an empty listing", empty.Pages)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 5, 5},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.perPage); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}
