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

// Package vec 提供估計管線共用的稠密向量運算。
//
// 所有向量皆為 []float64；此包只做最小的長度假設（呼叫端保證同維度），
// 熱路徑不做 runtime assert。內積與累加交給 gonum/floats。
package vec

import (
	"math"

	"github.com/zintix-labs/targetlab/errs"
	"gonum.org/v1/gonum/floats"
)

// normEps 低於此 L2 norm 視為退化向量，正規化必須報錯而不是產生 NaN。
const normEps = 1e-12

// Dot 回傳 a·b。
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Norm 回傳 L2 norm。
func Norm(a []float64) float64 {
	return floats.Norm(a, 2)
}

// Clone 回傳 a 的複本。
func Clone(a []float64) []float64 {
	out := make([]float64, len(a))
	copy(out, a)
	return out
}

// Unit 回傳 a 的單位向量複本。
// norm 過小（退化）時回傳錯誤，呼叫端不應繼續使用結果。
func Unit(a []float64) ([]float64, error) {
	n := Norm(a)
	if n < normEps || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, errs.Fatalf("can not normalize vector: norm=%g", n)
	}
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = v / n
	}
	return out, nil
}

// Mean 回傳多個同維度向量的逐元素平均。
// 單一向量時直接回傳其複本（單 bag 分支）。
func Mean(vs [][]float64) []float64 {
	if len(vs) == 0 {
		return nil
	}
	if len(vs) == 1 {
		return Clone(vs[0])
	}
	out := make([]float64, len(vs[0]))
	for _, v := range vs {
		floats.Add(out, v)
	}
	floats.Scale(1.0/float64(len(vs)), out)
	return out
}

// Sub 回傳 a-b 的新向量。
func Sub(a, b []float64) []float64 {
	out := Clone(a)
	floats.Sub(out, b)
	return out
}

// Equal 逐元素「精確」比較兩向量。
//
// 收斂偵測依賴 bit 等值，不可以改成 epsilon 比較：更新規則在代表樣本
// 固定時是決定性的，精確重複的 (objective, candidate) 即代表無窮循環。
func Equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
