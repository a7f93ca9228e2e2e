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

package demo

import (
	"math"

	"github.com/zintix-labs/targetlab/dataset"
	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/sdk/vec"
)

// GenSetting 控制合成資料集的形狀。零值欄位會被補上預設值。
type GenSetting struct {
	Dim           int     // 特徵維度
	PosBags       int     // 正 bag 數
	NegBags       int     // 負 bag 數
	BagSize       int     // 每個 bag 的樣本數
	TargetPerBag  int     // 每個正 bag 內的目標樣本數（至少 1）
	NoiseSigma    float64 // 背景高斯雜訊標準差
	TargetScale   float64 // 目標方向上的訊號強度
	PositiveLabel string
	NegativeLabel string
}

func (g *GenSetting) fill() {
	if g.Dim <= 0 {
		g.Dim = 8
	}
	if g.PosBags <= 0 {
		g.PosBags = 6
	}
	if g.NegBags <= 0 {
		g.NegBags = 6
	}
	if g.BagSize <= 0 {
		g.BagSize = 20
	}
	if g.TargetPerBag <= 0 {
		g.TargetPerBag = 3
	}
	if g.NoiseSigma <= 0 {
		g.NoiseSigma = 0.5
	}
	if g.TargetScale <= 0 {
		g.TargetScale = 2.0
	}
	if g.PositiveLabel == "" {
		g.PositiveLabel = "1"
	}
	if g.NegativeLabel == "" {
		g.NegativeLabel = "0"
	}
}

// Generate 產生一份帶已知目標方向的合成資料集。
//
// 背景樣本是零均值高斯雜訊；每個正 bag 內有 TargetPerBag 個樣本
// 額外疊加 TargetScale 倍的目標方向。回傳的第二個值是植入的
// 單位目標方向，方便與估計結果比對。
func Generate(c *core.Core, g GenSetting) (*dataset.Dataset, []float64, error) {
	if c == nil {
		return nil, nil, errs.NewWarn("generate err: core required")
	}
	g.fill()

	raw := make([]float64, g.Dim)
	for i := range raw {
		raw[i] = gauss(c)
	}
	target, err := vec.Unit(raw)
	if err != nil {
		return nil, nil, err
	}

	ds := &dataset.Dataset{Name: "synthetic"}
	for b := 0; b < g.PosBags; b++ {
		bag := dataset.Bag{Label: g.PositiveLabel}
		for s := 0; s < g.BagSize; s++ {
			x := noise(c, g.Dim, g.NoiseSigma)
			if s < g.TargetPerBag {
				for i := range x {
					x[i] += g.TargetScale * target[i]
				}
			}
			bag.Samples = append(bag.Samples, x)
		}
		ds.Bags = append(ds.Bags, bag)
	}
	for b := 0; b < g.NegBags; b++ {
		bag := dataset.Bag{Label: g.NegativeLabel}
		for s := 0; s < g.BagSize; s++ {
			bag.Samples = append(bag.Samples, noise(c, g.Dim, g.NoiseSigma))
		}
		ds.Bags = append(ds.Bags, bag)
	}

	return ds, target, nil
}

func noise(c *core.Core, dim int, sigma float64) []float64 {
	x := make([]float64, dim)
	for i := range x {
		x[i] = sigma * gauss(c)
	}
	return x
}

// gauss 以 Box-Muller 從 Float64 取標準常態樣本。
func gauss(c *core.Core) float64 {
	u := c.Float64()
	for u == 0 {
		u = c.Float64()
	}
	v := c.Float64()
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}
