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

package v1

import (
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"math"
	"math/big"
	"net/http"

	"github.com/zintix-labs/targetlab"
	"github.com/zintix-labs/targetlab/dto"
	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/server/httperr"
	"github.com/zintix-labs/targetlab/server/svrcfg"
)

// EstimateHandler 處理 /v1/estimate 與 /v1/score。
type EstimateHandler struct {
	lab          *targetlab.Targetlab
	log          *slog.Logger
	maxBodyBytes int64
}

func NewEstimateHandler(sCfg *svrcfg.SvrCfg) (*EstimateHandler, error) {
	if sCfg == nil || sCfg.Targetlab == nil {
		return nil, errs.NewFatal("targetlab is required")
	}
	return &EstimateHandler{
		lab:          sCfg.Targetlab,
		log:          sCfg.Log,
		maxBodyBytes: sCfg.MaxBodyBytes,
	}, nil
}

// Estimate 執行完整估計管線並回傳結果。
//
// 設定來源：預設組名稱或 inline JSON 設定（二選一）。
// seed 未給時由伺服器產生；結果內帶 seed + PRNG 快照供重現。
func (h *EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	req := new(dto.EstimateRequest)
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		httperr.Errs(w, errs.Wrap(err, "decode estimate request failed"))
		return
	}
	if err := req.Valid(); err != nil {
		httperr.Errs(w, err)
		return
	}

	seed := int64(0)
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		s, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		seed = s.Int64()
	}

	var (
		est *targetlab.Estimator
		err error
	)
	if req.Name != "" {
		est, err = h.lab.NewEstimatorByNameWithSeed(req.Name, seed)
	} else {
		est, err = h.lab.NewEstimatorByJSON(req.Setting, seed)
	}
	if err != nil {
		httperr.Log(h.log, "build estimator failed", err)
		httperr.Errs(w, err)
		return
	}

	res, err := est.Estimate(req.Dataset)
	if err != nil {
		httperr.Log(h.log, "estimate failed", err)
		httperr.Errs(w, err)
		return
	}
	if !req.WithHistory {
		res.History = nil
	}

	if err := json.NewEncoder(w).Encode(&dto.EstimateResponse{Result: res}); err != nil {
		httperr.Log(h.log, "encode estimate response failed", err)
	}
}

// Score 以估計結果對新 bag 打分（無狀態：結果由請求自帶）。
func (h *EstimateHandler) Score(w http.ResponseWriter, r *http.Request) {
	req := new(dto.ScoreRequest)
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		httperr.Errs(w, errs.Wrap(err, "decode score request failed"))
		return
	}
	if err := req.Valid(); err != nil {
		httperr.Errs(w, err)
		return
	}

	scores, err := req.Result.ScoreBags(req.Bags)
	if err != nil {
		httperr.Log(h.log, "score failed", err)
		httperr.Errs(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(&dto.ScoreResponse{Scores: scores}); err != nil {
		httperr.Log(h.log, "encode score response failed", err)
	}
}
