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

// Package cluster 提供 cluster_center 初始化的預設聚類能力（k-means）。
// 簽名與 optimizer.ClusterFunc 相容，可整組替換成其他聚類實作。
package cluster

import (
	"math"

	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/sdk/vec"
)

// shiftTol：所有中心位移都小於此值時提前停止。
const shiftTol = 1e-9

// Centers 以 k-means 把樣本分成最多 k 群並回傳各群中心。
//
// 初始中心由 PRNG 無放回抽樣，同 seed 結果可重現。k 會被夾到樣本數；
// 空群以輪替樣本補種，不會回傳少於 k 個中心。
func Centers(samples [][]float64, k, maxIter int, c *core.Core) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, errs.NewWarn("cluster err: no samples")
	}
	if k <= 0 {
		return nil, errs.NewWarn("cluster err: cluster count must be positive")
	}
	if c == nil {
		return nil, errs.NewFatal("cluster err: nil rand core")
	}
	if k > len(samples) {
		k = len(samples)
	}
	if maxIter <= 0 {
		maxIter = 1
	}
	dim := len(samples[0])

	// 1. 隨機抽 k 筆樣本當初始中心
	centers := make([][]float64, k)
	for i, j := range c.SampleIndex(len(samples), k) {
		centers[i] = vec.Clone(samples[j])
	}

	assign := make([]int, len(samples))
	for iter := 0; iter < maxIter; iter++ {
		// 2. 指派：最近中心（平方歐氏距離，平手取最小索引）
		for i, s := range samples {
			best, bestD := 0, math.Inf(1)
			for j, ct := range centers {
				if d := sqDist(s, ct); d < bestD {
					bestD = d
					best = j
				}
			}
			assign[i] = best
		}

		// 3. 重算中心
		next := make([][]float64, k)
		count := make([]int, k)
		for j := range next {
			next[j] = make([]float64, dim)
		}
		for i, s := range samples {
			j := assign[i]
			count[j]++
			for d := range s {
				next[j][d] += s[d]
			}
		}
		var maxShift float64
		for j := range next {
			if count[j] == 0 {
				// 空群：輪替補種一筆樣本，保持 k 個中心
				next[j] = vec.Clone(samples[j%len(samples)])
			} else {
				for d := range next[j] {
					next[j][d] /= float64(count[j])
				}
			}
			if s := math.Sqrt(sqDist(next[j], centers[j])); s > maxShift {
				maxShift = s
			}
		}
		centers = next
		if maxShift < shiftTol {
			break
		}
	}
	return centers, nil
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
