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

package spec

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/targetlab/errs"
)

// Method 選擇白化後的相似度語意。
//
//   - MethodSMF：白化後直接用內積（spectral matched filter）。
//   - MethodACE：白化後把每個樣本再單位化，使內積變為 cosine 相似度
//     （adaptive cosine estimator）。
type Method string

const (
	MethodSMF Method = "smf"
	MethodACE Method = "ace"
)

// InitKey 選擇初始候選向量的策略。
type InitKey string

const (
	InitBestSample    InitKey = "best_sample"    // 掃描所有（或抽樣的）正樣本，取目標函數最高者
	InitBgDissimilar  InitKey = "bg_dissimilar"  // 取與背景平均最不相似的正樣本
	InitClusterCenter InitKey = "cluster_center" // 對正樣本分群，取最佳群中心
)

// EstimatorSetting 包含一次目標簽名估計所需的所有高階設定。
type EstimatorSetting struct {
	Name             string  `yaml:"name"               json:"name"`
	Method           Method  `yaml:"method"             json:"method"`
	Init             InitKey `yaml:"init"               json:"init"`
	GlobalBackground bool    `yaml:"global_background"  json:"global_background"`
	Softmax          bool    `yaml:"softmax"            json:"softmax"`
	PositiveLabel    string  `yaml:"positive_label"     json:"positive_label"`
	NegativeLabel    string  `yaml:"negative_label"     json:"negative_label"`
	MaxIterations    int     `yaml:"max_iterations"     json:"max_iterations"`
	SampleFraction   float64 `yaml:"sample_fraction"    json:"sample_fraction"`
	ClusterCount     int     `yaml:"cluster_count"      json:"cluster_count"`
	CovEps           float64 `yaml:"cov_eps"            json:"cov_eps"`
}

// Default 回傳帶預設值的設定（ACE + best_sample，labels "1"/"0"）。
func Default() *EstimatorSetting {
	s := &EstimatorSetting{}
	s.fill()
	return s
}

// init 補預設值並執行基本檢查。
func (s *EstimatorSetting) init() error {
	s.fill()
	return s.valid()
}

// fill 只補空值，不覆蓋呼叫端已給的設定。
func (s *EstimatorSetting) fill() {
	if s.Method == "" {
		s.Method = MethodACE
	}
	if s.Init == "" {
		s.Init = InitBestSample
	}
	if s.PositiveLabel == "" {
		s.PositiveLabel = "1"
	}
	if s.NegativeLabel == "" {
		s.NegativeLabel = "0"
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = 1000
	}
	if s.SampleFraction <= 0 {
		s.SampleFraction = 1.0
	}
	if s.ClusterCount <= 0 {
		s.ClusterCount = 1000
	}
	if s.CovEps <= 0 {
		s.CovEps = 1e-6
	}
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (s *EstimatorSetting) valid() error {
	switch Method(strings.ToLower(string(s.Method))) {
	case MethodSMF, MethodACE:
		s.Method = Method(strings.ToLower(string(s.Method)))
	default:
		return errs.NewWarn(fmt.Sprintf("setting %s err: unknown method %q", s.Name, s.Method))
	}

	switch s.Init {
	case InitBestSample, InitBgDissimilar, InitClusterCenter:
	default:
		return errs.NewWarn(fmt.Sprintf("setting %s err: unknown init strategy %q", s.Name, s.Init))
	}

	if s.PositiveLabel == s.NegativeLabel {
		return errs.NewWarn(fmt.Sprintf("setting %s err: positive and negative labels must differ", s.Name))
	}
	if s.SampleFraction > 1.0 {
		return errs.NewWarn(fmt.Sprintf("setting %s err: sample_fraction must be in (0,1]", s.Name))
	}
	return nil
}
