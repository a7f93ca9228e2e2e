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

package whiten_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/targetlab/sdk/vec"
	"github.com/zintix-labs/targetlab/whiten"
)

func almost(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// 白化後背景樣本的經驗協方差應接近單位矩陣：W·Σ·Wᵀ ≈ I。
func TestWhitenDecorrelates(t *testing.T) {
	neg := [][][]float64{{
		{1.0, 2.0}, {2.0, 4.1}, {3.0, 5.9}, {4.0, 8.2}, {5.0, 9.8},
		{1.5, 3.2}, {2.5, 4.8}, {3.5, 7.1}, {4.5, 9.1}, {0.5, 1.1},
	}}
	w, err := whiten.Estimate(nil, neg, false, 1e-6)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	var ws [][]float64
	for _, s := range neg[0] {
		ws = append(ws, w.Apply(s))
	}
	m := vec.Mean(ws)
	if !almost(m[0], 0, 1e-9) || !almost(m[1], 0, 1e-9) {
		t.Fatalf("whitened mean not zero: %v", m)
	}
	div := float64(len(ws) - 1)
	var c00, c01, c11 float64
	for _, y := range ws {
		c00 += y[0] * y[0] / div
		c01 += y[0] * y[1] / div
		c11 += y[1] * y[1] / div
	}
	if !almost(c00, 1, 1e-6) || !almost(c11, 1, 1e-6) || !almost(c01, 0, 1e-6) {
		t.Fatalf("whitened covariance not identity: [%v %v; %v %v]", c00, c01, c01, c11)
	}
}

// Inverse(Apply(x−mean)) 應還原中心化後的向量。
func TestInverseRoundTrip(t *testing.T) {
	neg := [][][]float64{{
		{1.0, 0.5, -0.2}, {0.2, 1.3, 0.9}, {-0.5, 0.8, 1.1}, {1.5, -0.3, 0.4},
	}}
	w, err := whiten.Estimate(nil, neg, false, 1e-6)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	x := []float64{0.7, -0.4, 1.2}
	y := w.Apply(x)
	back := w.Inverse(y)
	for i := range x {
		want := x[i] - w.Mean[i]
		if !almost(back[i], want, 1e-9) {
			t.Fatalf("round trip dim %d: got %v want %v", i, back[i], want)
		}
	}
}

// 單一背景樣本：協方差退化為 eps·I，仍需可用。
func TestSingleSampleBackground(t *testing.T) {
	neg := [][][]float64{{{2.0, -1.0}}}
	w, err := whiten.Estimate(nil, neg, false, 1e-6)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	for i, s := range w.S {
		if !almost(s, 1e-6, 1e-12) {
			t.Fatalf("singular value %d: got %v want eps", i, s)
		}
	}
}

// global=true 時正 bag 樣本也計入背景。
func TestGlobalBackground(t *testing.T) {
	pos := [][][]float64{{{10.0, 0.0}}}
	neg := [][][]float64{{{0.0, 0.0}}}
	w, err := whiten.Estimate(pos, neg, true, 1e-6)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !almost(w.Mean[0], 5.0, 1e-12) {
		t.Fatalf("global mean: got %v want 5", w.Mean[0])
	}

	wn, err := whiten.Estimate(pos, neg, false, 1e-6)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !almost(wn.Mean[0], 0.0, 1e-12) {
		t.Fatalf("negative-only mean: got %v want 0", wn.Mean[0])
	}
}

// ACE 模式下白化樣本應被單位化。
func TestApplyBagsUnitize(t *testing.T) {
	neg := [][][]float64{{
		{1.0, 0.0}, {0.0, 1.0}, {-1.0, 0.0}, {0.0, -1.0},
	}}
	w, err := whiten.Estimate(nil, neg, false, 1e-6)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	bags := [][][]float64{{{3.0, 4.0}, {-2.0, 1.0}}}
	out, err := w.ApplyBags(bags, true)
	if err != nil {
		t.Fatalf("ApplyBags: %v", err)
	}
	for _, s := range out[0] {
		if !almost(vec.Norm(s), 1, 1e-12) {
			t.Fatalf("sample not unit norm: %v", s)
		}
	}
	// 原資料不可被改動
	if bags[0][0][0] != 3.0 {
		t.Fatalf("input bag mutated: %v", bags[0][0])
	}
}

func TestEstimateRejectsBadInput(t *testing.T) {
	if _, err := whiten.Estimate(nil, nil, false, 1e-6); err == nil {
		t.Fatal("expect error on no negative bags")
	}
	neg := [][][]float64{{{1.0}}}
	if _, err := whiten.Estimate(nil, neg, false, 0); err == nil {
		t.Fatal("expect error on zero eps")
	}
}
