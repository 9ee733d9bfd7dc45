// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/paper-search/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(types.KnowledgeConfig{
		Path:       filepath.Join(t.TempDir(), "paper_search.db"),
		MaxResults: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePaper(paperID, title string) types.Paper {
	return types.Paper{
		PaperID:       paperID,
		Title:         title,
		Authors:       []string{"Ada Lovelace", "Alan Turing"},
		Abstract:      "A study of efficient attention mechanisms.",
		DOI:           "10.1000/" + paperID,
		URL:           "https://example.com/" + paperID,
		PDFURL:        "https://example.com/" + paperID + ".pdf",
		Source:        "arxiv",
		Categories:    []string{"cs.LG", "cs.CL"},
		Keywords:      []string{"attention", "transformers"},
		PublishedDate: time.Date(2023, 1, 17, 0, 0, 0, 0, time.UTC),
	}
}

func TestStoreAndGetPaper(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.StorePaper(ctx, samplePaper("2301.07041", "Efficient Attention"))
	if err != nil {
		t.Fatalf("StorePaper: %v", err)
	}
	if id == "" {
		t.Fatal("StorePaper returned empty record id")
	}

	paper, err := s.GetPaper(ctx, "2301.07041")
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if paper.Title != "Efficient Attention" {
		t.Errorf("Title = %q", paper.Title)
	}
	if len(paper.Authors) != 2 || paper.Authors[0] != "Ada Lovelace" {
		t.Errorf("Authors = %v", paper.Authors)
	}
	if got := paper.PublishedDate.Format("2006-01-02"); got != "2023-01-17" {
		t.Errorf("PublishedDate = %s", got)
	}
	if paper.Source != "arxiv" {
		t.Errorf("Source = %q", paper.Source)
	}
	// Taxonomy fields survive the round trip.
	if len(paper.Categories) != 2 || paper.Categories[0] != "cs.LG" {
		t.Errorf("Categories = %v, want [cs.LG cs.CL]", paper.Categories)
	}
	if len(paper.Keywords) != 2 || paper.Keywords[0] != "attention" {
		t.Errorf("Keywords = %v, want [attention transformers]", paper.Keywords)
	}
}

func TestStorePaperUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id1, err := s.StorePaper(ctx, samplePaper("2301.07041", "First Title"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.StorePaper(ctx, samplePaper("2301.07041", "Revised Title"))
	if err != nil {
		t.Fatal(err)
	}
	if id1 != id2 {
		t.Errorf("re-storing the same paper_id changed the record id: %s vs %s", id1, id2)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Papers != 1 {
		t.Errorf("Papers = %d, want 1", stats.Papers)
	}

	paper, err := s.GetPaper(ctx, "2301.07041")
	if err != nil {
		t.Fatal(err)
	}
	if paper.Title != "Revised Title" {
		t.Errorf("Title = %q, want the updated record", paper.Title)
	}
}

func TestStorePaperWithoutID(t *testing.T) {
	s := testStore(t)
	if _, err := s.StorePaper(context.Background(), types.Paper{Title: "No ID"}); err == nil {
		t.Fatal("expected error for paper without paper_id")
	}
}

func TestGetPaperNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetPaper(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSearchPapers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	papers := []types.Paper{
		samplePaper("p1", "Attention Mechanisms Survey"),
		samplePaper("p2", "Graph Neural Networks"),
		samplePaper("p3", "Sparse Attention at Scale"),
	}
	papers[1].Abstract = "Unrelated to transformers."
	for _, p := range papers {
		if _, err := s.StorePaper(ctx, p); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond) // distinct stored_at ordering
	}

	t.Run("title match newest first", func(t *testing.T) {
		got, err := s.SearchPapers(ctx, "Attention", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].PaperID != "p3" || got[1].PaperID != "p1" {
			t.Errorf("order = %s, %s; want p3, p1", got[0].PaperID, got[1].PaperID)
		}
	})

	t.Run("abstract match", func(t *testing.T) {
		got, err := s.SearchPapers(ctx, "efficient attention", 10)
		if err != nil {
			t.Fatal(err)
		}
		// p1 and p3 share the sample abstract; p2's was replaced.
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("limit applied", func(t *testing.T) {
		got, err := s.SearchPapers(ctx, "Attention", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Errorf("len = %d, want 1", len(got))
		}
	})

	t.Run("no match", func(t *testing.T) {
		got, err := s.SearchPapers(ctx, "quantum chromodynamics", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})
}

func TestAddConceptUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id1, err := s.AddConcept(ctx, "attention", "weighting mechanism", "method")
	if err != nil {
		t.Fatalf("AddConcept: %v", err)
	}
	id2, err := s.AddConcept(ctx, "attention", "", "")
	if err != nil {
		t.Fatalf("AddConcept (second): %v", err)
	}
	if id1 != id2 {
		t.Errorf("same name produced different ids: %s vs %s", id1, id2)
	}

	// Frequency counts observations.
	if _, err := s.StorePaper(ctx, samplePaper("p1", "T")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RelatePaperToConcept(ctx, "p1", "attention", 0.9); err != nil {
		t.Fatal(err)
	}
	rels, err := s.GetRelatedConcepts(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 1 {
		t.Fatalf("len(rels) = %d, want 1", len(rels))
	}
	if rels[0].Concept.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2 after two AddConcept calls", rels[0].Concept.Frequency)
	}
}

func TestAddConceptFleshesOutStub(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// An edge to an unknown concept creates a detail-less stub.
	if _, err := s.StorePaper(ctx, samplePaper("p1", "T")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RelatePaperToConcept(ctx, "p1", "attention", 0.5); err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddConcept(ctx, "attention", "weighting mechanism", "method"); err != nil {
		t.Fatal(err)
	}

	rels, err := s.GetRelatedConcepts(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 1 {
		t.Fatalf("len(rels) = %d, want 1", len(rels))
	}
	c := rels[0].Concept
	if c.Description != "weighting mechanism" || c.Category != "method" {
		t.Errorf("stub not fleshed out: description=%q category=%q", c.Description, c.Category)
	}
	if c.Frequency != 1 {
		t.Errorf("Frequency = %d, want 1 (stub starts at 0)", c.Frequency)
	}

	// Existing details are kept, not overwritten.
	if _, err := s.AddConcept(ctx, "attention", "something else", "other"); err != nil {
		t.Fatal(err)
	}
	rels, err = s.GetRelatedConcepts(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	c = rels[0].Concept
	if c.Description != "weighting mechanism" || c.Category != "method" {
		t.Errorf("details overwritten: description=%q category=%q", c.Description, c.Category)
	}
	if c.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2", c.Frequency)
	}
}

func TestAddConceptEmptyName(t *testing.T) {
	s := testStore(t)
	if _, err := s.AddConcept(context.Background(), "", "", ""); err == nil {
		t.Fatal("expected error for empty concept name")
	}
}

func TestRelatePaperToConcept(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.StorePaper(ctx, samplePaper("p1", "T")); err != nil {
		t.Fatal(err)
	}

	t.Run("strength out of range rejected", func(t *testing.T) {
		for _, strength := range []float64{-0.1, 1.5} {
			if _, err := s.RelatePaperToConcept(ctx, "p1", "attention", strength); err == nil {
				t.Errorf("strength %v should be rejected", strength)
			}
		}
	})

	t.Run("unknown paper rejected", func(t *testing.T) {
		_, err := s.RelatePaperToConcept(ctx, "ghost", "attention", 0.5)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown concept becomes stub", func(t *testing.T) {
		edgeID, err := s.RelatePaperToConcept(ctx, "p1", "sparse attention", 0.7)
		if err != nil {
			t.Fatalf("RelatePaperToConcept: %v", err)
		}
		if edgeID == "" {
			t.Fatal("empty edge id")
		}

		rels, err := s.GetRelatedConcepts(ctx, "p1")
		if err != nil {
			t.Fatal(err)
		}
		if len(rels) != 1 {
			t.Fatalf("len(rels) = %d, want 1", len(rels))
		}
		if rels[0].Concept.Name != "sparse attention" {
			t.Errorf("Name = %q", rels[0].Concept.Name)
		}
		if rels[0].Concept.Frequency != 0 {
			t.Errorf("stub Frequency = %d, want 0", rels[0].Concept.Frequency)
		}
		if rels[0].Strength != 0.7 {
			t.Errorf("Strength = %v", rels[0].Strength)
		}
	})

	t.Run("boundary strengths accepted", func(t *testing.T) {
		for _, strength := range []float64{0, 1} {
			if _, err := s.RelatePaperToConcept(ctx, "p1", "attention", strength); err != nil {
				t.Errorf("strength %v rejected: %v", strength, err)
			}
		}
	})
}

func TestGetRelatedConceptsOrdering(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.StorePaper(ctx, samplePaper("p1", "T")); err != nil {
		t.Fatal(err)
	}
	edges := map[string]float64{"weak": 0.2, "strong": 0.9, "middle": 0.5}
	for name, strength := range edges {
		if _, err := s.RelatePaperToConcept(ctx, "p1", name, strength); err != nil {
			t.Fatal(err)
		}
	}

	rels, err := s.GetRelatedConcepts(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rels) != 3 {
		t.Fatalf("len(rels) = %d, want 3", len(rels))
	}
	for _, want := range []struct {
		name     string
		strength float64
		index    int
	}{{"strong", 0.9, 0}, {"middle", 0.5, 1}, {"weak", 0.2, 2}} {
		got := rels[want.index]
		if got.Concept.Name != want.name || got.Strength != want.strength {
			t.Errorf("rels[%d] = %s/%v, want %s/%v",
				want.index, got.Concept.Name, got.Strength, want.name, want.strength)
		}
	}
}

func TestGetSimilarPapers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, p := range []struct {
		id       string
		title    string
		concepts []string
	}{
		{"origin", "Origin Paper", []string{"attention", "transformers", "scaling"}},
		{"close", "Close Match", []string{"attention", "transformers"}},
		{"distant", "Distant Match", []string{"scaling"}},
		{"unrelated", "Unrelated", []string{"genomics"}},
	} {
		if _, err := s.StorePaper(ctx, samplePaper(p.id, p.title)); err != nil {
			t.Fatal(err)
		}
		for _, c := range p.concepts {
			if _, err := s.RelatePaperToConcept(ctx, p.id, c, 1); err != nil {
				t.Fatal(err)
			}
		}
	}

	similar, err := s.GetSimilarPapers(ctx, "origin", 10)
	if err != nil {
		t.Fatalf("GetSimilarPapers: %v", err)
	}
	if len(similar) != 2 {
		t.Fatalf("len = %d, want 2 (unrelated and origin excluded)", len(similar))
	}
	if similar[0].PaperID != "close" || similar[0].SharedConcepts != 2 {
		t.Errorf("similar[0] = %s (%d shared)", similar[0].PaperID, similar[0].SharedConcepts)
	}
	if similar[1].PaperID != "distant" || similar[1].SharedConcepts != 1 {
		t.Errorf("similar[1] = %s (%d shared)", similar[1].PaperID, similar[1].SharedConcepts)
	}

	t.Run("limit applied", func(t *testing.T) {
		got, err := s.GetSimilarPapers(ctx, "origin", 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].PaperID != "close" {
			t.Errorf("got = %+v, want only the closest match", got)
		}
	})

	t.Run("unknown origin", func(t *testing.T) {
		if _, err := s.GetSimilarPapers(ctx, "ghost", 10); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.StorePaper(ctx, samplePaper("p1", "T")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddConcept(ctx, "attention", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RelatePaperToConcept(ctx, "p1", "attention", 0.5); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RelatePaperToConcept(ctx, "p1", "scaling", 0.5); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := types.KnowledgeStats{Papers: 1, Concepts: 2, Relationships: 2}
	if stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}
}

func TestCloseIdempotent(t *testing.T) {
	s := testStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
