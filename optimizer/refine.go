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

package optimizer

import (
	"math"

	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/sdk/vec"
)

// Status 是精煉迴圈的結束狀態。
type Status int

const (
	StatusRunning Status = iota
	StatusConverged
	StatusIterationLimitReached
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusConverged:
		return "converged"
	case StatusIterationLimitReached:
		return "iteration_limit_reached"
	default:
		return "unknown"
	}
}

// Step 是精煉歷程中一個被接受的候選。
type Step struct {
	Objective float64   `json:"objective"`
	Target    []float64 `json:"target"`
}

// RefineResult 保存最終簽名與完整歷程。
type RefineResult struct {
	Target     []float64 `json:"target"`
	Objective  float64   `json:"objective"`
	Iterations int       `json:"iterations"`
	Status     Status    `json:"status"`
	History    []Step    `json:"history,omitempty"`
}

// Refine 由初始簽名迭代精煉：每輪取各正 bag 的代表向量
// （純 max 模式為 argmax 樣本，softmax 模式為加權混合），
// 以「代表平均 − 負背景平均」的單位向量為新候選。
//
// 收斂判定是精確的 (目標值, 向量) 循環偵測：新候選與歷程中任何一筆
// 逐元素完全相等即收斂（固定點是長度 1 的循環）。查表先以捨入後的
// 目標值縮小範圍，再做精確比對，避免逐筆全掃。達到迭代上限是正常
// 結束狀態，不是錯誤；代表平均與背景重合（零差向量）才是錯誤。
func Refine(posBags, negBags [][][]float64, init []float64, softmax float64, maxIter int) (*RefineResult, error) {
	if len(posBags) == 0 {
		return nil, errs.NewWarn("optimizer err: no positive bags")
	}
	if len(init) == 0 {
		return nil, errs.NewWarn("optimizer err: empty init target")
	}
	if maxIter <= 0 {
		maxIter = 1
	}

	// 負背景平均只算一次：bag 平均的平均，與 Evaluate 的負項一致。
	negMean := make([]float64, len(init))
	if len(negBags) > 0 {
		for _, bag := range negBags {
			bm := vec.Mean(bag)
			for i := range negMean {
				negMean[i] += bm[i] / float64(len(negBags))
			}
		}
	}

	initObj, reps := Evaluate(posBags, negBags, init, softmax)

	res := &RefineResult{
		Target:    vec.Clone(init),
		Objective: initObj,
		Status:    StatusRunning,
	}
	res.History = append(res.History, Step{Objective: initObj, Target: vec.Clone(init)})

	// 捨入目標值 → 歷程索引，縮小精確比對的範圍
	seen := map[int64][]int{roundKey(initObj): {0}}

	for iter := 1; iter <= maxIter; iter++ {
		// 1. 代表平均（softmax 模式下代表是加權混合，不是單一樣本）
		repMean := make([]float64, len(init))
		for _, rp := range reps {
			for j := range repMean {
				repMean[j] += rp[j] / float64(len(posBags))
			}
		}

		// 2. 新候選 = unit(代表平均 − 背景平均)
		cand, err := vec.Unit(vec.Sub(repMean, negMean))
		if err != nil {
			return nil, errs.Wrap(err, "optimizer err: representative mean coincides with background mean")
		}

		obj, candReps := Evaluate(posBags, negBags, cand, softmax)
		res.Target = cand
		res.Objective = obj
		res.Iterations = iter

		// 3. 循環偵測；收斂的那一步同樣記入歷程
		key := roundKey(obj)
		for _, h := range seen[key] {
			if vec.Equal(res.History[h].Target, cand) {
				res.Status = StatusConverged
				res.History = append(res.History, Step{Objective: obj, Target: vec.Clone(cand)})
				return res, nil
			}
		}
		seen[key] = append(seen[key], len(res.History))
		res.History = append(res.History, Step{Objective: obj, Target: vec.Clone(cand)})
		reps = candReps
	}

	res.Status = StatusIterationLimitReached
	return res, nil
}

// roundKey 把目標值捨入到 1e-12 精度作為查表鍵。
// 只是縮小候選範圍；相等與否由 vec.Equal 的精確比對決定。
func roundKey(v float64) int64 {
	return int64(math.Round(v * 1e12))
}
