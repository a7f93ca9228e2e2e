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

// Package dto 定義 HTTP 邊界的請求/回應型別。
// 伺服器是無狀態的：估計結果完整回傳，打分請求自帶估計結果。
package dto

import (
	"encoding/json"

	"github.com/zintix-labs/targetlab"
	"github.com/zintix-labs/targetlab/dataset"
	"github.com/zintix-labs/targetlab/errs"
)

// EstimateRequest 觸發一次完整估計。
//
// 設定來源二選一：
//   - Name：使用 catalog 中的具名預設組。
//   - Setting：呼叫端自帶 JSON 設定（不經 catalog）。
//
// Seed 不給時由伺服器產生並回傳在結果內。
type EstimateRequest struct {
	Name        string           `json:"name,omitempty"`
	Setting     json.RawMessage  `json:"setting,omitempty"`
	Seed        *int64           `json:"seed,omitempty"`
	Dataset     *dataset.Dataset `json:"dataset"`
	WithHistory bool             `json:"with_history,omitempty"`
}

func (r *EstimateRequest) Valid() error {
	if r.Name == "" && len(r.Setting) == 0 {
		return errs.NewWarn("estimate request err: name or setting required")
	}
	if r.Name != "" && len(r.Setting) != 0 {
		return errs.NewWarn("estimate request err: name and setting are mutually exclusive")
	}
	if r.Dataset == nil || len(r.Dataset.Bags) == 0 {
		return errs.NewWarn("estimate request err: dataset required")
	}
	// JSON 直接解出來的 dataset 未經載入器檢查，這裡補上
	return r.Dataset.Validate()
}

// EstimateResponse 是單次估計的完整輸出；內容見 targetlab.Result。
type EstimateResponse struct {
	Result *targetlab.Result `json:"result"`
}

// ScoreRequest 以先前的估計結果對新 bag 打分。
// Result 必須帶有 whitener 與白化簽名（即 /v1/estimate 的原樣輸出）。
type ScoreRequest struct {
	Result *targetlab.Result `json:"result"`
	Bags   [][][]float64     `json:"bags"`
}

func (r *ScoreRequest) Valid() error {
	if r.Result == nil || r.Result.Whitener == nil || len(r.Result.TargetWhitened) == 0 {
		return errs.NewWarn("score request err: estimate result with whitener required")
	}
	if len(r.Bags) == 0 {
		return errs.NewWarn("score request err: bags required")
	}
	dim := len(r.Result.Whitener.Mean)
	for i, b := range r.Bags {
		if len(b) == 0 {
			return errs.Warnf("score request err: bag %d is empty", i)
		}
		for _, s := range b {
			if len(s) != dim {
				return errs.Warnf("score request err: bag %d sample dim %d, want %d", i, len(s), dim)
			}
		}
	}
	return nil
}

// ScoreResponse 回傳逐 bag 的最大偵測分數。
type ScoreResponse struct {
	Scores []float64 `json:"scores"`
}

// CatalogResponse 列出可用的具名預設組。
type CatalogResponse struct {
	Names []string `json:"names"`
}
