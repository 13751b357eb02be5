package dialog

import "testing"

func TestPageWindows(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	cases := []struct {
		name      string
		requested int
		wantFirst int
		wantLen   int
		wantPage  int
	}{
		{"first", 0, 0, 4, 1},
		{"second", 1, 4, 4, 2},
		{"last is short", 2, 8, 2, 3},
		{"next past last wraps to first", 3, 0, 4, 1},
		{"prev before first wraps to last", -1, 8, 2, 3},
		{"far negative", -4, 8, 2, 3},
		{"far positive", 7, 4, 4, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window, page, total := Page(items, 4, tc.requested)
			if total != 3 {
				t.Fatalf("total = %d, want 3", total)
			}
			if page != tc.wantPage {
				t.Fatalf("page = %d, want %d", page, tc.wantPage)
			}
			if len(window) != tc.wantLen {
				t.Fatalf("len(window) = %d, want %d", len(window), tc.wantLen)
			}
			if window[0] != tc.wantFirst {
				t.Fatalf("window[0] = %d, want %d", window[0], tc.wantFirst)
			}
		})
	}
}

func TestPageEmptyList(t *testing.T) {
	window, page, total := Page([]string(nil), 4, 5)
	if len(window) != 0 || page != 1 || total != 1 {
		t.Fatalf("empty list: window=%v page=%d total=%d", window, page, total)
	}
}

func TestPageSingleShortPage(t *testing.T) {
	items := []string{"a", "b"}
	window, page, total := Page(items, 4, -3)
	if total != 1 || page != 1 || len(window) != 2 {
		t.Fatalf("window=%v page=%d total=%d", window, page, total)
	}
}

func TestPageBadPageSize(t *testing.T) {
	window, page, total := Page([]int{1, 2, 3}, 0, 1)
	if total != 3 || page != 2 || len(window) != 1 || window[0] != 2 {
		t.Fatalf("window=%v page=%d total=%d", window, page, total)
	}
}
