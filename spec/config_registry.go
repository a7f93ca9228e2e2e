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
	"encoding/json"

	"github.com/zintix-labs/targetlab/errs"
	"gopkg.in/yaml.v3"
)

// GetEstimatorSettingByYAML
// 會讀取 YAML 設定、補預設值並執行基本檢查後回傳。
func GetEstimatorSettingByYAML(data []byte) (*EstimatorSetting, error) {
	s := &EstimatorSetting{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	// 設定檔初始化
	if err := s.init(); err != nil {
		return nil, errs.Wrap(err, "estimator setting initialized err")
	}

	return s, nil
}

// GetEstimatorSettingByJSON
// 會讀取 Json 設定、補預設值並執行基本檢查後回傳
func GetEstimatorSettingByJSON(data []byte) (*EstimatorSetting, error) {
	s := &EstimatorSetting{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	// 設定檔初始化
	if err := s.init(); err != nil {
		return nil, errs.Wrap(err, "estimator setting initialized err")
	}

	return s, nil
}
