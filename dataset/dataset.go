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

// Package dataset 定義弱標記資料的輸入格式：一組 bag，每個 bag 帶一個
// label 與若干同維度特徵向量。
//
// Bag 一旦載入即視為不可變；估計管線只會建立白化後的衍生複本。
package dataset

import (
	"encoding/json"

	"github.com/zintix-labs/targetlab/errs"
	"gopkg.in/yaml.v3"
)

// Bag 是一組共享同一個 label 的樣本向量。
type Bag struct {
	Label   string      `yaml:"label"   json:"label"`
	Samples [][]float64 `yaml:"samples" json:"samples"`
}

// Dataset 是一次估計的完整輸入。
type Dataset struct {
	Name string `yaml:"name" json:"name"`
	Bags []Bag  `yaml:"bags" json:"bags"`
}

// Dim 回傳特徵維度（取第一個樣本；空 dataset 回傳 0）。
func (d *Dataset) Dim() int {
	for _, b := range d.Bags {
		if len(b.Samples) > 0 {
			return len(b.Samples[0])
		}
	}
	return 0
}

// Validate 執行基本檢查：至少一個 bag、每個 bag 至少一個樣本、維度一致。
//
// YAML/JSON 載入器會自動呼叫；直接以 struct 組資料（例如 HTTP 請求
// 解出來的 dataset）的呼叫端要在進管線前自行呼叫，避免參差的樣本
// 維度深入數值層。
func (d *Dataset) Validate() error {
	if len(d.Bags) == 0 {
		return errs.NewWarn("dataset err: bags required")
	}
	dim := d.Dim()
	if dim == 0 {
		return errs.NewWarn("dataset err: empty samples")
	}
	for i, b := range d.Bags {
		if len(b.Samples) == 0 {
			return errs.Warnf("dataset err: bag %d has no samples", i)
		}
		for j, s := range b.Samples {
			if len(s) != dim {
				return errs.Warnf("dataset err: bag %d sample %d dim %d != %d", i, j, len(s), dim)
			}
		}
	}
	return nil
}

// Partition 依 label 把 bag 分成正負兩群。
//
// 任何 label 不屬於 pos/neg 兩值之一的 bag 都是設定錯誤：靜默丟棄會讓
// 呼叫端的 bag 數量預期失真，因此直接報錯並指名第一個出錯的 bag。
func (d *Dataset) Partition(pos string, neg string) (posBags [][][]float64, negBags [][][]float64, err error) {
	for i, b := range d.Bags {
		switch b.Label {
		case pos:
			posBags = append(posBags, b.Samples)
		case neg:
			negBags = append(negBags, b.Samples)
		default:
			return nil, nil, errs.Warnf("dataset err: bag %d label %q matches neither %q nor %q", i, b.Label, pos, neg)
		}
	}
	if len(posBags) == 0 {
		return nil, nil, errs.Warnf("dataset err: no positive bags with label %q", pos)
	}
	if len(negBags) == 0 {
		return nil, nil, errs.Warnf("dataset err: no negative bags with label %q", neg)
	}
	return posBags, negBags, nil
}

// GetDatasetByYAML 會讀取 YAML 資料並執行基本檢查後回傳。
func GetDatasetByYAML(data []byte) (*Dataset, error) {
	d := &Dataset{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}
	if err := d.Validate(); err != nil {
		return nil, errs.Wrap(err, "dataset initialized err")
	}
	return d, nil
}

// GetDatasetByJSON 會讀取 Json 資料並執行基本檢查後回傳。
func GetDatasetByJSON(data []byte) (*Dataset, error) {
	d := &Dataset{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}
	if err := d.Validate(); err != nil {
		return nil, errs.Wrap(err, "dataset initialized err")
	}
	return d, nil
}
