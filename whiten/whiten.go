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

// Package whiten 估計背景統計並建立線性白化轉換。
//
// 流程：由負 bag（或全部樣本）估出背景平均與協方差，加上 eps·I 正則化
// 後做 SVD，得到前向轉換 W = D^{-1/2}·Uᵀ，滿足 W·Σ·Wᵀ ≈ I。
// U 與奇異值會完整保留，結尾時用 U·D^{1/2} 把目標向量精確映回原空間。
package whiten

import (
	"math"

	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/sdk/vec"
	"gonum.org/v1/gonum/mat"
)

// Whitener 持有背景統計與分解狀態。
// 欄位全部導出：結果會原樣回傳給呼叫端除錯/重用（例如對新資料做同一套白化）。
type Whitener struct {
	Mean []float64   `json:"mean"`            // 背景平均 (len D)
	S    []float64   `json:"singular_values"` // 正則化後協方差的奇異值 (len D)
	U    [][]float64 `json:"basis"`           // 正交基底，row i = U 的第 i 列
	W    [][]float64 `json:"forward"`         // 前向轉換，row i = D^{-1/2}·Uᵀ 的第 i 列
}

// Estimate 估計背景統計並完成分解。
//
//   - global=false：背景 = 負 bag 樣本聯集（預設）。
//   - global=true ：背景 = 全部樣本聯集。
//
// 協方差以 eps·I 正則化保證可逆；單一樣本的退化背景會得到 eps·I 本身，
// 不會當掉。SVD 本身失敗屬於 Fatal 設定錯誤。
func Estimate(posBags [][][]float64, negBags [][][]float64, global bool, eps float64) (*Whitener, error) {
	if len(negBags) == 0 {
		return nil, errs.NewWarn("whiten err: at least one negative bag required")
	}
	if eps <= 0 {
		return nil, errs.NewWarn("whiten err: cov eps must be positive")
	}

	var samples [][]float64
	for _, b := range negBags {
		samples = append(samples, b...)
	}
	if global {
		for _, b := range posBags {
			samples = append(samples, b...)
		}
	}
	if len(samples) == 0 {
		return nil, errs.NewWarn("whiten err: no background samples")
	}
	dim := len(samples[0])

	// 1. 背景平均
	mean := vec.Mean(samples)

	// 2. 協方差 + eps·I
	// n==1 時除數取 1，協方差為零矩陣，正則化後即 eps·I。
	cov := mat.NewDense(dim, dim, nil)
	div := float64(len(samples) - 1)
	if div < 1 {
		div = 1
	}
	centered := make([]float64, dim)
	for _, s := range samples {
		for i := range centered {
			centered[i] = s[i] - mean[i]
		}
		for i := 0; i < dim; i++ {
			ci := centered[i]
			for j := 0; j < dim; j++ {
				cov.Set(i, j, cov.At(i, j)+ci*centered[j]/div)
			}
		}
	}
	for i := 0; i < dim; i++ {
		cov.Set(i, i, cov.At(i, i)+eps)
	}

	// 3. SVD 分解
	var svd mat.SVD
	if ok := svd.Factorize(cov, mat.SVDFull); !ok {
		return nil, errs.NewFatal("whiten err: covariance decomposition failed")
	}
	var u mat.Dense
	svd.UTo(&u)
	s := svd.Values(nil)

	w := &Whitener{
		Mean: mean,
		S:    s,
		U:    make([][]float64, dim),
		W:    make([][]float64, dim),
	}
	for i := 0; i < dim; i++ {
		w.U[i] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			w.U[i][j] = u.At(i, j)
		}
	}
	// W = D^{-1/2}·Uᵀ ：第 i 列 = U 的第 i 行 / sqrt(s_i)
	for i := 0; i < dim; i++ {
		inv := 1.0 / math.Sqrt(s[i])
		row := make([]float64, dim)
		for j := 0; j < dim; j++ {
			row[j] = u.At(j, i) * inv
		}
		w.W[i] = row
	}
	return w, nil
}

// Apply 把單一樣本映入白化空間：y = W·(x−mean)。
func (w *Whitener) Apply(x []float64) []float64 {
	dim := len(w.Mean)
	centered := make([]float64, dim)
	for i := range centered {
		centered[i] = x[i] - w.Mean[i]
	}
	y := make([]float64, dim)
	for i, row := range w.W {
		y[i] = vec.Dot(row, centered)
	}
	return y
}

// ApplyBags 白化整組 bag 並回傳衍生複本；原 bag 不被修改。
//
// unitize=true 時（ACE）每個白化後樣本再各自單位化，使後續內積成為
// cosine 相似度。退化樣本（白化後幾乎為零）直接報錯而不是產生 NaN。
func (w *Whitener) ApplyBags(bags [][][]float64, unitize bool) ([][][]float64, error) {
	out := make([][][]float64, len(bags))
	for i, b := range bags {
		nb := make([][]float64, len(b))
		for j, s := range b {
			y := w.Apply(s)
			if unitize {
				u, err := vec.Unit(y)
				if err != nil {
					return nil, errs.Wrap(err, "whiten err: degenerate sample after whitening")
				}
				y = u
			}
			nb[j] = y
		}
		out[i] = nb
	}
	return out, nil
}

// Inverse 把白化空間的方向向量精確映回原特徵空間：x = U·D^{1/2}·y。
// 方向向量不加回背景平均；呼叫端負責最後的再正規化。
func (w *Whitener) Inverse(y []float64) []float64 {
	dim := len(w.Mean)
	scaled := make([]float64, dim)
	for j := range scaled {
		scaled[j] = math.Sqrt(w.S[j]) * y[j]
	}
	x := make([]float64, dim)
	for i := 0; i < dim; i++ {
		x[i] = vec.Dot(w.U[i], scaled)
	}
	return x
}
