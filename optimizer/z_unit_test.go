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

package optimizer_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/targetlab/optimizer"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/sdk/vec"
	"github.com/zintix-labs/targetlab/spec"
)

var (
	posA = [][][]float64{
		{{1, 0}, {0, 1}},
		{{0.8, 0.6}},
	}
	negA = [][][]float64{
		{{-1, 0}},
		{{0, -1}},
	}
)

func TestEvaluatePure(t *testing.T) {
	cand := []float64{1, 0}
	o1, r1 := optimizer.Evaluate(posA, negA, cand, 0)
	o2, r2 := optimizer.Evaluate(posA, negA, cand, 0)
	if o1 != o2 {
		t.Fatalf("evaluate not deterministic: %v vs %v", o1, o2)
	}
	for i := range r1 {
		if !vec.Equal(r1[i], r2[i]) {
			t.Fatalf("representatives not deterministic")
		}
	}
	// pos: bag0 max=dot([1,0])=1, bag1=0.8 → mean 0.9
	// neg: bag0=-1, bag1=0 → mean -0.5
	if want := 0.9 - (-0.5); math.Abs(o1-want) > 1e-12 {
		t.Fatalf("objective: got %v want %v", o1, want)
	}
	// 純 max 模式的代表是各 bag 的 argmax 樣本本身
	if !vec.Equal(r1[0], posA[0][0]) || !vec.Equal(r1[1], posA[1][0]) {
		t.Fatalf("representatives: got %v", r1)
	}
}

func TestEvaluateSoftmax(t *testing.T) {
	pos := [][][]float64{{{1, 0}, {0.5, 0}}}
	hard, _ := optimizer.Evaluate(pos, nil, []float64{1, 0}, 0)
	soft, _ := optimizer.Evaluate(pos, nil, []float64{1, 0}, 1)
	if soft >= hard {
		t.Fatalf("softmax blend should be below max: %v >= %v", soft, hard)
	}
	// 極大的 softmax 參數應退化回 max，且不可溢位成 NaN
	sharp, _ := optimizer.Evaluate(pos, nil, []float64{1, 0}, 1e6)
	if math.IsNaN(sharp) || math.Abs(sharp-hard) > 1e-9 {
		t.Fatalf("sharp softmax: got %v want %v", sharp, hard)
	}
}

// softmax 開啟時代表向量是樣本的加權混合，不是 argmax 樣本。
func TestEvaluateSoftmaxBlendRepresentative(t *testing.T) {
	pos := [][][]float64{{{2, 0}, {0, 1}}}
	cand := []float64{1, 0}
	_, reps := optimizer.Evaluate(pos, nil, cand, 1)

	// dots = 2, 0 → 權重 1, e^-2
	w := math.Exp(-2.0)
	want := []float64{2 / (1 + w), w / (1 + w)}
	for i := range want {
		if math.Abs(reps[0][i]-want[i]) > 1e-12 {
			t.Fatalf("blend representative: got %v want %v", reps[0], want)
		}
	}
}

func TestEvaluateTieBreak(t *testing.T) {
	pos := [][][]float64{{{1, 0}, {1, 0.5}}}
	// 兩個樣本與候選的內積相同 → 代表是最小索引的樣本
	_, reps := optimizer.Evaluate(pos, nil, []float64{1, 0}, 0)
	if !vec.Equal(reps[0], []float64{1, 0}) {
		t.Fatalf("tie should keep smallest index sample, got %v", reps[0])
	}
}

func TestInitBestSample(t *testing.T) {
	got, obj, err := optimizer.Init(spec.InitBestSample, posA, negA, optimizer.InitOptions{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if math.Abs(vec.Norm(got)-1) > 1e-12 {
		t.Fatalf("init target not unit norm: %v", got)
	}
	// 每個候選的目標值都不應高於回傳值
	for _, bag := range posA {
		for _, s := range bag {
			u, _ := vec.Unit(s)
			o, _ := optimizer.Evaluate(posA, negA, u, 0)
			if o > obj+1e-12 {
				t.Fatalf("candidate %v scores %v above returned %v", s, o, obj)
			}
		}
	}
}

// sample_fraction=1 時每個正樣本恰好評分一次。
func TestInitBestSampleEvalCount(t *testing.T) {
	calls := 0
	counting := func(p, n [][][]float64, c []float64, sm float64) (float64, [][]float64) {
		calls++
		return optimizer.Evaluate(p, n, c, sm)
	}
	_, _, err := optimizer.Init(spec.InitBestSample, posA, negA, optimizer.InitOptions{
		SampleFraction: 1.0,
		Eval:           counting,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if calls != 3 {
		t.Fatalf("eval calls: got %d want 3", calls)
	}
}

func TestInitBestSampleFraction(t *testing.T) {
	calls := 0
	counting := func(p, n [][][]float64, c []float64, sm float64) (float64, [][]float64) {
		calls++
		return optimizer.Evaluate(p, n, c, sm)
	}
	big := [][][]float64{make([][]float64, 10)}
	for i := range big[0] {
		big[0][i] = []float64{1, float64(i) * 0.1}
	}
	_, _, err := optimizer.Init(spec.InitBestSample, big, negA, optimizer.InitOptions{
		SampleFraction: 0.5,
		Core:           core.New(core.NewPCG64WithSeed(42)),
		Eval:           counting,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if calls != 5 {
		t.Fatalf("eval calls with fraction 0.5: got %d want 5", calls)
	}
}

func TestInitBgDissimilar(t *testing.T) {
	// 背景方向 ≈ (-1,-1)/√2；與其內積最小的正樣本是 (0.8,0.6)
	got, _, err := optimizer.Init(spec.InitBgDissimilar, posA, negA, optimizer.InitOptions{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	want, _ := vec.Unit([]float64{0.8, 0.6})
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("bg_dissimilar: got %v want %v", got, want)
		}
	}
}

// 樣本長度不得影響選擇：原始內積最負但方向相近的樣本要輸給
// 方向上真正最不相似的樣本。
func TestInitBgDissimilarIgnoresMagnitude(t *testing.T) {
	pos := [][][]float64{{{-0.1, 0}, {-10, 9}}}
	neg := [][][]float64{{{1, 0}, {2, 0}}}
	got, _, err := optimizer.Init(spec.InitBgDissimilar, pos, neg, optimizer.InitOptions{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	// unit(-0.1,0)·(1,0) = -1 勝過 unit(-10,9)·(1,0) ≈ -0.743
	want := []float64{-1, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("bg_dissimilar: got %v want %v", got, want)
		}
	}
}

func TestInitClusterCenterWithCenters(t *testing.T) {
	got, _, err := optimizer.Init(spec.InitClusterCenter, posA, negA, optimizer.InitOptions{
		Centers: [][]float64{{0, 1}, {1, 0}},
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if math.Abs(vec.Norm(got)-1) > 1e-12 {
		t.Fatalf("center not unit norm: %v", got)
	}
}

func TestInitClusterCenterCapability(t *testing.T) {
	fakeK := 0
	fake := func(samples [][]float64, k, maxIter int, c *core.Core) ([][]float64, error) {
		fakeK = k
		return [][]float64{{1, 0}}, nil
	}
	_, _, err := optimizer.Init(spec.InitClusterCenter, posA, negA, optimizer.InitOptions{
		ClusterCount: 1000,
		Cluster:      fake,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	// k 夾到樣本數（正樣本池共 3 筆）
	if fakeK != 3 {
		t.Fatalf("cluster k: got %d want 3", fakeK)
	}
}

func TestInitClusterCenterMissingCapability(t *testing.T) {
	_, _, err := optimizer.Init(spec.InitClusterCenter, posA, negA, optimizer.InitOptions{})
	if err == nil {
		t.Fatal("expect error without cluster capability and centers")
	}
}

func TestInitUnknownStrategy(t *testing.T) {
	_, _, err := optimizer.Init(spec.InitKey("bogus"), posA, negA, optimizer.InitOptions{})
	if err == nil {
		t.Fatal("expect error on unknown strategy")
	}
}

func TestRefineConverges(t *testing.T) {
	init, _, err := optimizer.Init(spec.InitBestSample, posA, negA, optimizer.InitOptions{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	res, err := optimizer.Refine(posA, negA, init, 0, 1000)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if res.Status != optimizer.StatusConverged {
		t.Fatalf("status: got %v want converged", res.Status)
	}
	if math.Abs(vec.Norm(res.Target)-1) > 1e-12 {
		t.Fatalf("target not unit norm: %v", res.Target)
	}
	initObj, _ := optimizer.Evaluate(posA, negA, init, 0)
	if res.Objective < initObj-1e-12 {
		t.Fatalf("refined objective %v below init %v", res.Objective, initObj)
	}
	// 歷程第一筆是初始簽名
	if len(res.History) == 0 || !vec.Equal(res.History[0].Target, init) {
		t.Fatalf("history should start with init target")
	}
}

func TestRefineIterationLimit(t *testing.T) {
	// [0,1] 起步至少需兩輪才能撞到歷程中的固定點
	pos := [][][]float64{{{1, 0}}}
	neg := [][][]float64{{{-1, 0}}}
	res, err := optimizer.Refine(pos, neg, []float64{0, 1}, 0, 1)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if res.Status != optimizer.StatusIterationLimitReached {
		t.Fatalf("status: got %v want iteration_limit_reached", res.Status)
	}
	if res.Iterations != 1 {
		t.Fatalf("iterations: got %d want 1", res.Iterations)
	}
	// 同資料給足迭代數應收斂在 [1,0]
	res2, err := optimizer.Refine(pos, neg, []float64{0, 1}, 0, 100)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if res2.Status != optimizer.StatusConverged {
		t.Fatalf("status: got %v want converged", res2.Status)
	}
	if math.Abs(res2.Target[0]-1) > 1e-12 || math.Abs(res2.Target[1]) > 1e-12 {
		t.Fatalf("target: got %v want [1 0]", res2.Target)
	}
}

// softmax 模式的更新方向要跟著加權混合走，而不是 argmax 樣本。
func TestRefineSoftmaxUpdateDirection(t *testing.T) {
	pos := [][][]float64{{{2, 0}, {0, 1}}}
	neg := [][][]float64{{{0, 0}}}
	res, err := optimizer.Refine(pos, neg, []float64{1, 0}, 1, 1)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}

	// 第一輪：dots = 2, 0 → 混合 = ([2,0] + e^-2·[0,1]) / (1 + e^-2)
	w := math.Exp(-2.0)
	want, _ := vec.Unit([]float64{2 / (1 + w), w / (1 + w)})
	for i := range want {
		if math.Abs(res.Target[i]-want[i]) > 1e-12 {
			t.Fatalf("softmax update: got %v want %v", res.Target, want)
		}
	}
	// 純 max 模式同一輪會停在 [1,0]；兩者必須分道
	hard, err := optimizer.Refine(pos, neg, []float64{1, 0}, 0, 1)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if vec.Equal(res.Target, hard.Target) {
		t.Fatalf("softmax trajectory should differ from max trajectory: %v", res.Target)
	}
}

// 收斂的那一步也要記入歷程：len(History) = Iterations + 1。
func TestRefineHistoryIncludesConvergingStep(t *testing.T) {
	pos := [][][]float64{{{1, 0}}}
	neg := [][][]float64{{{-1, 0}}}
	res, err := optimizer.Refine(pos, neg, []float64{1, 0}, 0, 100)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if res.Status != optimizer.StatusConverged {
		t.Fatalf("status: got %v want converged", res.Status)
	}
	if len(res.History) != res.Iterations+1 {
		t.Fatalf("history length: got %d want %d", len(res.History), res.Iterations+1)
	}
	last := res.History[len(res.History)-1]
	if !vec.Equal(last.Target, res.Target) || last.Objective != res.Objective {
		t.Fatalf("last history entry should be the converging step")
	}
}

func TestRefineSingleBags(t *testing.T) {
	pos := [][][]float64{{{0.6, 0.8}}}
	neg := [][][]float64{{{-0.6, -0.8}}}
	res, err := optimizer.Refine(pos, neg, []float64{1, 0}, 0, 100)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if res.Status != optimizer.StatusConverged {
		t.Fatalf("status: got %v", res.Status)
	}
	want, _ := vec.Unit([]float64{0.6, 0.8})
	for i := range want {
		if math.Abs(res.Target[i]-want[i]) > 1e-12 {
			t.Fatalf("target: got %v want %v", res.Target, want)
		}
	}
}

func TestRefineZeroDifference(t *testing.T) {
	// 代表平均與背景平均重合 → 零差向量是錯誤
	same := [][][]float64{{{1, 0}}}
	_, err := optimizer.Refine(same, same, []float64{1, 0}, 0, 10)
	if err == nil {
		t.Fatal("expect error when representative mean equals background mean")
	}
}

func TestStatusString(t *testing.T) {
	if optimizer.StatusConverged.String() != "converged" {
		t.Fatalf("got %q", optimizer.StatusConverged.String())
	}
	if optimizer.StatusIterationLimitReached.String() != "iteration_limit_reached" {
		t.Fatalf("got %q", optimizer.StatusIterationLimitReached.String())
	}
}
