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

// Package optimizer 實作白化空間中的目標簽名估計：
// 目標函數、三種初始化策略、以及迭代精煉器。
// 所有輸入皆假設已經白化（ACE 模式下並已單位化）。
package optimizer

import (
	"math"

	"github.com/zintix-labs/targetlab/sdk/vec"
)

// EvalFunc 是目標函數簽名；測試可用包裝函數計數呼叫次數。
type EvalFunc func(posBags, negBags [][][]float64, candidate []float64, softmax float64) (float64, [][]float64)

// Evaluate 計算候選簽名的目標值。純函數，不修改任何輸入。
//
//	obj = mean_{正 bag}( <代表向量, c> ) − mean_{負 bag}( mean_{樣本} <x, c> )
//
// 回傳值第二項是每個正 bag 的代表向量：預設為 argmax 樣本本身
// （平手取最小索引）；softmax > 0 時改為樣本的 softmax 加權混合
// （權重以 max 平移防止 exp 溢位）。精煉器的更新方向直接建立在
// 這些代表向量上，因此 softmax 模式會同時改變目標值與更新軌跡。
func Evaluate(posBags, negBags [][][]float64, candidate []float64, softmax float64) (float64, [][]float64) {
	reps := make([][]float64, len(posBags))

	var posTerm float64
	for i, bag := range posBags {
		best := math.Inf(-1)
		bestIdx := 0
		dots := make([]float64, len(bag))
		for j, s := range bag {
			d := vec.Dot(s, candidate)
			dots[j] = d
			if d > best {
				best = d
				bestIdx = j
			}
		}

		if softmax > 0 {
			// softmax 加權混合；先減 max 避免 exp 溢位
			rep := make([]float64, len(candidate))
			var wSum float64
			for j, d := range dots {
				w := math.Exp(softmax * (d - best))
				wSum += w
				for k, x := range bag[j] {
					rep[k] += w * x
				}
			}
			for k := range rep {
				rep[k] /= wSum
			}
			reps[i] = rep
			posTerm += vec.Dot(rep, candidate)
		} else {
			reps[i] = bag[bestIdx]
			posTerm += best
		}
	}
	posTerm /= float64(len(posBags))

	var negTerm float64
	if len(negBags) > 0 {
		for _, bag := range negBags {
			var m float64
			for _, s := range bag {
				m += vec.Dot(s, candidate)
			}
			negTerm += m / float64(len(bag))
		}
		negTerm /= float64(len(negBags))
	}

	return posTerm - negTerm, reps
}
