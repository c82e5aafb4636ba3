package article

import "testing"

func TestIndex_OrderAndLatest(t *testing.T) {
	idx := NewIndex([]string{"c", "b", "a"})
	idx.Add(&Article{Slug: "a", Title: "A"})
	idx.Add(&Article{Slug: "c", Title: "C"})
	idx.Add(&Article{Slug: "b", Title: "B"})

	all := idx.All()
	if len(all) != 3 {
		t.Fatalf("All() len = %d, want 3", len(all))
	}
	for i, want := range []string{"c", "b", "a"} {
		if all[i].Slug != want {
			t.Errorf("All()[%d].Slug = %q, want %q", i, all[i].Slug, want)
		}
	}
	if idx.Latest().Slug != "c" {
		t.Errorf("Latest().Slug = %q, want c", idx.Latest().Slug)
	}
}

func TestIndex_FirstAddWins(t *testing.T) {
	idx := NewIndex([]string{"a"})
	idx.Add(&Article{Slug: "a", Title: "original"})
	idx.Add(&Article{Slug: "a", Title: "replacement"})

	if got := idx.Get("a").Title; got != "original" {
		t.Errorf("Title = %q, re-adding a slug must not replace the article", got)
	}
}

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex(nil)
	if idx.Latest() != nil {
		t.Error("Latest on empty index should be nil")
	}
	if idx.Get("x") != nil {
		t.Error("Get on empty index should be nil")
	}
	if len(idx.All()) != 0 {
		t.Error("All on empty index should be empty")
	}
}
