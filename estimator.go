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

package targetlab

import (
	"github.com/zintix-labs/targetlab/corefmt"
	"github.com/zintix-labs/targetlab/dataset"
	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/optimizer"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/sdk/vec"
	"github.com/zintix-labs/targetlab/spec"
	"github.com/zintix-labs/targetlab/stats"
	"github.com/zintix-labs/targetlab/whiten"
)

// Estimator 是對外提供 Estimate 的最小單位：一份設定 + 一顆可快照的亂數核心。
type Estimator struct {
	cfg      *spec.EstimatorSetting
	core     *core.Core
	cluster  optimizer.ClusterFunc
	seed     int64
	workers  int
	progress bool
}

func newEstimator(cfg *spec.EstimatorSetting, cf core.PRNGFactory, cl optimizer.ClusterFunc, seed int64) (*Estimator, error) {
	if cfg == nil {
		return nil, errs.NewFatal("estimator setting required")
	}
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	return &Estimator{
		cfg:     cfg,
		core:    core.New(cf.New(seed)),
		cluster: cl,
		seed:    seed,
	}, nil
}

func (e *Estimator) Setting() *spec.EstimatorSetting {
	return e.cfg
}

func (e *Estimator) Seed() int64 {
	return e.seed
}

// EnableProgress 讓 best_sample 掃描顯示 pb 進度條（CLI 用）。
func (e *Estimator) EnableProgress() {
	e.progress = true
}

// SetWorkers 設定初始化掃描的平行評分 worker 數；<=1 為循序。
func (e *Estimator) SetWorkers(n int) {
	e.workers = n
}

// Result 是單次估計的完整輸出。
//
// Target 與 InitTarget 均已映回原特徵空間並單位化；TargetWhitened 留在
// 白化空間，配合 Whitener 可對新資料直接打分。Seed 與 CoreSnapshot
// （估計前的 PRNG 狀態，base64）一起構成完整的重現憑據。
type Result struct {
	Name           string            `json:"name"`
	Method         spec.Method       `json:"method"`
	Init           spec.InitKey      `json:"init"`
	Target         []float64         `json:"target"`
	InitTarget     []float64         `json:"init_target"`
	TargetWhitened []float64         `json:"target_whitened"`
	Objective      float64           `json:"objective"`
	InitObjective  float64           `json:"init_objective"`
	Iterations     int               `json:"iterations"`
	Status         string            `json:"status"`
	Whitener       *whiten.Whitener  `json:"whitener"`
	PosBags        int               `json:"pos_bags"`
	NegBags        int               `json:"neg_bags"`
	Seed           int64             `json:"seed"`
	CoreSnapshot   string            `json:"core_snapshot,omitempty"`
	History        []optimizer.Step  `json:"history,omitempty"`
}

// Estimate 執行完整估計管線：
//
//  1. 依標籤把資料集切成正/負 bag。
//  2. 估計背景統計並白化（ACE 模式下白化樣本再單位化）。
//  3. 以設定的策略產生初始簽名。
//  4. 迭代精煉至收斂或達迭代上限。
//  5. 把最終/初始簽名映回原特徵空間並單位化。
//
// 輸入資料集不會被修改。
func (e *Estimator) Estimate(ds *dataset.Dataset) (*Result, error) {
	cfg := e.cfg

	if ds == nil {
		return nil, errs.NewWarn("estimate err: dataset required")
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	pos, neg, err := ds.Partition(cfg.PositiveLabel, cfg.NegativeLabel)
	if err != nil {
		return nil, err
	}

	// 估計前先快照核心：同 snapshot + 同資料可完整重放
	var snap64 string
	if be, serr := e.core.Snapshot(); serr == nil {
		snap64 = corefmt.EncodeBase64(be)
	}

	wh, err := whiten.Estimate(pos, neg, cfg.GlobalBackground, cfg.CovEps)
	if err != nil {
		return nil, err
	}
	unitize := cfg.Method == spec.MethodACE
	wpos, err := wh.ApplyBags(pos, unitize)
	if err != nil {
		return nil, err
	}
	wneg, err := wh.ApplyBags(neg, unitize)
	if err != nil {
		return nil, err
	}

	// softmax 旗標 → 目標函數的溫度參數；關閉時為純 max
	sm := 0.0
	if cfg.Softmax {
		sm = 1.0
	}

	initTgt, initObj, err := optimizer.Init(cfg.Init, wpos, wneg, optimizer.InitOptions{
		Softmax:        sm,
		SampleFraction: cfg.SampleFraction,
		ClusterCount:   cfg.ClusterCount,
		Core:           e.core,
		Cluster:        e.cluster,
		Workers:        e.workers,
		Progress:       e.progress,
	})
	if err != nil {
		return nil, err
	}

	ref, err := optimizer.Refine(wpos, wneg, initTgt, sm, cfg.MaxIterations)
	if err != nil {
		return nil, err
	}

	// 映回原空間；方向向量不加回背景平均，最後再單位化
	tgt, err := vec.Unit(wh.Inverse(ref.Target))
	if err != nil {
		return nil, errs.Wrap(err, "estimate err: degenerate target after inverse map")
	}
	initBack, err := vec.Unit(wh.Inverse(initTgt))
	if err != nil {
		return nil, errs.Wrap(err, "estimate err: degenerate init target after inverse map")
	}

	return &Result{
		Name:           cfg.Name,
		Method:         cfg.Method,
		Init:           cfg.Init,
		Target:         tgt,
		InitTarget:     initBack,
		TargetWhitened: ref.Target,
		Objective:      ref.Objective,
		InitObjective:  initObj,
		Iterations:     ref.Iterations,
		Status:         ref.Status.String(),
		Whitener:       wh,
		PosBags:        len(pos),
		NegBags:        len(neg),
		Seed:           e.seed,
		CoreSnapshot:   snap64,
		History:        ref.History,
	}, nil
}

// ScoreBags 以估計結果對新 bag 打分：白化（ACE 時並單位化）後取
// 每個 bag 與白化簽名內積的最大值。bag 必須與訓練資料同維度。
func (r *Result) ScoreBags(bags [][][]float64) ([]float64, error) {
	wb, err := r.Whitener.ApplyBags(bags, r.Method == spec.MethodACE)
	if err != nil {
		return nil, err
	}
	return stats.BagMaxScores(wb, r.TargetWhitened), nil
}

// Report 以同一資料集產出偵測統計報告。
func (r *Result) Report(ds *dataset.Dataset, posLabel, negLabel string) (*stats.DetectionReport, error) {
	pos, neg, err := ds.Partition(posLabel, negLabel)
	if err != nil {
		return nil, err
	}
	posScores, err := r.ScoreBags(pos)
	if err != nil {
		return nil, err
	}
	negScores, err := r.ScoreBags(neg)
	if err != nil {
		return nil, err
	}
	rep := &stats.DetectionReport{
		Summary: &stats.SummaryReport{
			Name:       r.Name,
			Method:     string(r.Method),
			Init:       string(r.Init),
			Dim:        len(r.Target),
			PosBags:    len(pos),
			NegBags:    len(neg),
			Objective:  r.Objective,
			Iterations: r.Iterations,
			Status:     r.Status,
		},
		Score: &stats.ScoreReport{
			Pos: posScores,
			Neg: negScores,
		},
	}
	rep.Done()
	return rep, nil
}
