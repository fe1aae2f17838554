package dataio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/smrutirpanigrahi/dlib/pkg/ranksvm"
)

func sampleDataset() ranksvm.Dataset {
	return ranksvm.Dataset{
		{
			Relevant:    []ranksvm.Sample{{1, 0}, {0.9, 0.1}},
			Nonrelevant: []ranksvm.Sample{{0, 1}},
		},
		{
			Relevant:    []ranksvm.Sample{{0.8, 0.2}},
			Nonrelevant: []ranksvm.Sample{{0.1, 0.9}, {0.2, 0.8}},
		},
	}
}

func assertDatasetsEqual(t *testing.T, want, got ranksvm.Dataset) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("query count mismatch: got %d, want %d", len(got), len(want))
	}
	for qi := range want {
		if len(got[qi].Relevant) != len(want[qi].Relevant) ||
			len(got[qi].Nonrelevant) != len(want[qi].Nonrelevant) {
			t.Fatalf("query %d shape mismatch: %+v vs %+v", qi, got[qi], want[qi])
		}
		for i, x := range want[qi].Relevant {
			for k, v := range x {
				if got[qi].Relevant[i][k] != v {
					t.Fatalf("query %d relevant[%d][%d]: got %v, want %v", qi, i, k, got[qi].Relevant[i][k], v)
				}
			}
		}
		for i, x := range want[qi].Nonrelevant {
			for k, v := range x {
				if got[qi].Nonrelevant[i][k] != v {
					t.Fatalf("query %d nonrelevant[%d][%d]: got %v, want %v", qi, i, k, got[qi].Nonrelevant[i][k], v)
				}
			}
		}
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	want := sampleDataset()

	if err := SaveDataset(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assertDatasetsEqual(t, want, got)
}

func TestDatasetRoundTripGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json.gz")
	want := sampleDataset()

	if err := SaveDataset(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	assertDatasetsEqual(t, want, got)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	if _, err := LoadDataset(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestModelRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	want := ranksvm.NewModel([]float64{0.5, -1.25, 0})

	if err := SaveModel(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := LoadModel(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Dim() != want.Dim() {
		t.Fatalf("dim mismatch: got %d, want %d", got.Dim(), want.Dim())
	}
	for i, v := range want.Weights() {
		if got.Weights()[i] != v {
			t.Fatalf("weight %d: got %v, want %v", i, got.Weights()[i], v)
		}
	}
}

func TestFetchDataset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queries":[{"relevant":[[1,0]],"nonrelevant":[[0,1]]}]}`))
	}))
	defer ts.Close()

	got, err := FetchDataset(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	want := ranksvm.Dataset{{
		Relevant:    []ranksvm.Sample{{1, 0}},
		Nonrelevant: []ranksvm.Sample{{0, 1}},
	}}
	assertDatasetsEqual(t, want, got)
}

func TestFetchDatasetNon2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	if _, err := FetchDataset(context.Background(), ts.URL); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
