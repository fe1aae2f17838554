// Package dataio loads ranking datasets and persists trained models for the
// command line tools. The trainer itself deliberately knows nothing about
// files or JSON; everything format-shaped lives here.
package dataio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"

	"github.com/smrutirpanigrahi/dlib/pkg/ranksvm"
)

// DatasetFile is the on-disk JSON layout of a ranking dataset.
type DatasetFile struct {
	Queries []QueryRecord `json:"queries"`
}

// QueryRecord is one query's relevance judgment.
type QueryRecord struct {
	Relevant    [][]float64 `json:"relevant"`
	Nonrelevant [][]float64 `json:"nonrelevant"`
}

// ModelFile is the on-disk JSON layout of a trained model.
type ModelFile struct {
	Weights []float64 `json:"weights"`
}

// LoadDataset reads a dataset from a JSON file. Paths ending in .gz are
// transparently decompressed.
func LoadDataset(path string) (ranksvm.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip dataset %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return decodeDataset(data)
}

func decodeDataset(data []byte) (ranksvm.Dataset, error) {
	var df DatasetFile
	if err := sonic.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}
	return toDataset(df), nil
}

func toDataset(df DatasetFile) ranksvm.Dataset {
	dataset := make(ranksvm.Dataset, 0, len(df.Queries))
	for _, q := range df.Queries {
		query := ranksvm.Query{
			Relevant:    make([]ranksvm.Sample, len(q.Relevant)),
			Nonrelevant: make([]ranksvm.Sample, len(q.Nonrelevant)),
		}
		for i, x := range q.Relevant {
			query.Relevant[i] = x
		}
		for i, x := range q.Nonrelevant {
			query.Nonrelevant[i] = x
		}
		dataset = append(dataset, query)
	}
	return dataset
}

// SaveDataset writes a dataset as JSON, gzip-compressed when the path ends
// in .gz.
func SaveDataset(path string, dataset ranksvm.Dataset) error {
	df := DatasetFile{Queries: make([]QueryRecord, 0, len(dataset))}
	for _, q := range dataset {
		rec := QueryRecord{
			Relevant:    make([][]float64, len(q.Relevant)),
			Nonrelevant: make([][]float64, len(q.Nonrelevant)),
		}
		for i, x := range q.Relevant {
			rec.Relevant[i] = x
		}
		for i, x := range q.Nonrelevant {
			rec.Nonrelevant[i] = x
		}
		df.Queries = append(df.Queries, rec)
	}

	data, err := sonic.Marshal(df)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	return nil
}

// SaveModel writes the trained weights as JSON.
func SaveModel(path string, m *ranksvm.Model) error {
	data, err := sonic.Marshal(ModelFile{Weights: m.Weights()})
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// LoadModel reads weights written by SaveModel back into a scoring model.
func LoadModel(path string) (*ranksvm.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	var mf ModelFile
	if err := sonic.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}
	return ranksvm.NewModel(mf.Weights), nil
}
