// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset_test

import (
	"testing"

	"github.com/zintix-labs/targetlab/dataset"
)

func TestYAMLDecode(t *testing.T) {
	raw := []byte(`
name: tiny
bags:
  - label: "1"
    samples:
      - [1.0, 0.0]
      - [0.0, 1.0]
  - label: "0"
    samples:
      - [-1.0, 0.0]
`)
	d, err := dataset.GetDatasetByYAML(raw)
	if err != nil {
		t.Fatal(err)
	}
	if d.Dim() != 2 {
		t.Fatalf("dim want 2, got %d", d.Dim())
	}
	if len(d.Bags) != 2 {
		t.Fatalf("bags want 2, got %d", len(d.Bags))
	}
}

func TestDimMismatch(t *testing.T) {
	raw := []byte(`{"bags":[{"label":"1","samples":[[1,2],[1,2,3]]}]}`)
	if _, err := dataset.GetDatasetByJSON(raw); err == nil {
		t.Fatalf("dim mismatch must be rejected")
	}
}

func TestEmptyBag(t *testing.T) {
	raw := []byte(`{"bags":[{"label":"1","samples":[[1,2]]},{"label":"0","samples":[]}]}`)
	if _, err := dataset.GetDatasetByJSON(raw); err == nil {
		t.Fatalf("empty bag must be rejected")
	}
}

func TestPartition(t *testing.T) {
	d := &dataset.Dataset{Bags: []dataset.Bag{
		{Label: "t", Samples: [][]float64{{1, 1}}},
		{Label: "b", Samples: [][]float64{{0, 0}}},
		{Label: "t", Samples: [][]float64{{2, 2}}},
	}}
	pos, neg, err := d.Partition("t", "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != 2 || len(neg) != 1 {
		t.Fatalf("partition got %d/%d", len(pos), len(neg))
	}
}

func TestPartitionMalformedLabel(t *testing.T) {
	d := &dataset.Dataset{Bags: []dataset.Bag{
		{Label: "t", Samples: [][]float64{{1}}},
		{Label: "???", Samples: [][]float64{{0}}},
		{Label: "b", Samples: [][]float64{{0}}},
	}}
	if _, _, err := d.Partition("t", "b"); err == nil {
		t.Fatalf("alien label must raise a configuration error")
	}
}

func TestPartitionMissingSide(t *testing.T) {
	d := &dataset.Dataset{Bags: []dataset.Bag{
		{Label: "t", Samples: [][]float64{{1}}},
	}}
	if _, _, err := d.Partition("t", "b"); err == nil {
		t.Fatalf("missing negative bags must raise a configuration error")
	}
}
