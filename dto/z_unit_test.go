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

package dto

import (
	"encoding/json"
	"testing"

	"github.com/zintix-labs/targetlab"
	"github.com/zintix-labs/targetlab/dataset"
	"github.com/zintix-labs/targetlab/whiten"
)

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{Bags: []dataset.Bag{
		{Label: "1", Samples: [][]float64{{1, 0}}},
		{Label: "0", Samples: [][]float64{{0, 1}}},
	}}
}

func TestEstimateRequestValid(t *testing.T) {
	req := &EstimateRequest{Name: "ace_default", Dataset: testDataset()}
	if err := req.Valid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req = &EstimateRequest{Setting: json.RawMessage(`{"method":"ace"}`), Dataset: testDataset()}
	if err := req.Valid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEstimateRequestRejects(t *testing.T) {
	cases := []struct {
		tag string
		req *EstimateRequest
	}{
		{"no source", &EstimateRequest{Dataset: testDataset()}},
		{"both sources", &EstimateRequest{Name: "a", Setting: json.RawMessage(`{}`), Dataset: testDataset()}},
		{"no dataset", &EstimateRequest{Name: "a"}},
		{"empty dataset", &EstimateRequest{Name: "a", Dataset: &dataset.Dataset{}}},
		{"ragged dataset", &EstimateRequest{Name: "a", Dataset: &dataset.Dataset{Bags: []dataset.Bag{
			{Label: "1", Samples: [][]float64{{1, 0}, {1}}},
		}}}},
		{"empty bag", &EstimateRequest{Name: "a", Dataset: &dataset.Dataset{Bags: []dataset.Bag{
			{Label: "1", Samples: nil},
		}}}},
	}
	for _, c := range cases {
		if err := c.req.Valid(); err == nil {
			t.Fatalf("%s: expected error", c.tag)
		}
	}
}

func TestScoreRequestValid(t *testing.T) {
	res := &targetlab.Result{
		TargetWhitened: []float64{1, 0},
		Whitener:       &whiten.Whitener{Mean: []float64{0, 0}},
	}
	req := &ScoreRequest{Result: res, Bags: [][][]float64{{{1, 0}, {0, 1}}}}
	if err := req.Valid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScoreRequestRejects(t *testing.T) {
	res := &targetlab.Result{
		TargetWhitened: []float64{1, 0},
		Whitener:       &whiten.Whitener{Mean: []float64{0, 0}},
	}
	cases := []struct {
		tag string
		req *ScoreRequest
	}{
		{"no result", &ScoreRequest{Bags: [][][]float64{{{1, 0}}}}},
		{"no whitener", &ScoreRequest{Result: &targetlab.Result{TargetWhitened: []float64{1}}, Bags: [][][]float64{{{1}}}}},
		{"no bags", &ScoreRequest{Result: res}},
		{"empty bag", &ScoreRequest{Result: res, Bags: [][][]float64{{}}}},
		{"dim mismatch", &ScoreRequest{Result: res, Bags: [][][]float64{{{1, 2, 3}}}}},
	}
	for _, c := range cases {
		if err := c.req.Valid(); err == nil {
			t.Fatalf("%s: expected error", c.tag)
		}
	}
}
