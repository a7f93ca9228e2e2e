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

// Package targetlab 提供多實例目標簽名估計的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Targetlab 把三個必需的地基組裝在一起，並提供建立 Estimator 的入口：
//  1. Catalog：估計器目錄（Single Source of Truth / SSOT），定義有哪些具名預設組、各自對應的設定檔名稱（ConfigName）。
//  2. ClusterFunc：cluster_center 初始化所需的聚類能力（預設為 cluster 包的 k-means）。
//  3. PRNGFactory：亂數核心工廠，保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Targetlab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Estimator 是對外提供 Estimate 的最小單位：一份設定 + 一顆可快照的亂數核心。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Targetlab 建立 Estimator 處理單次估計請求。
//   - CLI：讀資料集 + 預設組名稱，估計後輸出報告。
package targetlab

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/targetlab/catalog"
	"github.com/zintix-labs/targetlab/cluster"
	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/optimizer"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 可以用 go:embed 把出廠預設組直接編進 binary（部署不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機讀取外部目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Targetlab 是組裝器：持有目錄、亂數工廠與聚類能力。
//
// 使用流程分成兩階段：
//   - 註冊/組裝階段：建立 catalog、掃描設定檔、檢查重複與缺漏。
//   - 執行階段：依預設組名稱產生 Estimator，並在其上執行 Estimate。
//
// runtime 一旦開始（已對外服務）不建議再變更 Catalog。
type Targetlab struct {
	cat     *catalog.Catalog
	cf      core.PRNGFactory
	cluster optimizer.ClusterFunc
}

// Option 調整 Targetlab 的組裝行為。
type Option func(*Targetlab)

// WithCluster 替換 cluster_center 初始化使用的聚類能力。
func WithCluster(fn optimizer.ClusterFunc) Option {
	return func(t *Targetlab) {
		if fn != nil {
			t.cluster = fn
		}
	}
}

// New 建立一個 Targetlab instance（組裝階段入口）。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 PRNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 EstimatorSetting。
func New(cf core.PRNGFactory, cfgs []fs.FS, opts ...Option) (*Targetlab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	lab := &Targetlab{
		cat:     cata,
		cf:      cf,
		cluster: cluster.Centers,
	}
	for _, opt := range opts {
		opt(lab)
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Targetlab instance：
// 掃描全部設定檔、批次註冊並凍結目錄。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS, opts ...Option) (*Targetlab, error) {
	lab, err := New(cf, cfgs, opts...)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (t *Targetlab) Register(ents ...catalog.Entry) error {
	return t.cat.Register(ents...)
}

// RegisterAll
//
// 掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）
// 解析成 *spec.EstimatorSetting，並以設定檔內宣告的 name 產生 catalog.Entry 批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，立刻回傳 error。
//  2. 原子性：全部檔案都通過檢查才呼叫 Register(...) 一次性寫入，
//     不會出現只註冊一半的半完成狀態。
//  3. 穩定性：WalkDir 依檔名排序處理，行為 determinism。
func (t *Targetlab) RegisterAll() error {
	cfgs := t.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 16)
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				es   *spec.EstimatorSetting
				gerr error
			)
			switch ext {
			case ".yaml", ".yml":
				es, gerr = spec.GetEstimatorSettingByYAML(raw)
			case ".json":
				es, gerr = spec.GetEstimatorSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if gerr != nil {
				return errs.NewFatal(fmt.Sprintf("parse estimator setting failed: %s: %v", base, gerr))
			}

			name := strings.TrimSpace(es.Name)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("estimator name required: %s", base))
			}

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate estimator name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := t.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("estimator name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			entries = append(entries, catalog.Entry{
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return t.cat.Register(entries...)
}

func (t *Targetlab) Freeze() {
	t.cat.Freeze()
}

func (t *Targetlab) EntryByName(name string) (catalog.Entry, bool) {
	return t.cat.GetByName(name)
}

func (t *Targetlab) Names() []string {
	return t.cat.Names()
}

func (t *Targetlab) All() []catalog.Entry {
	return t.cat.All()
}

// SettingByName 解析指定預設組的估計器設定。
func (t *Targetlab) SettingByName(name string) (*spec.EstimatorSetting, error) {
	return t.cat.EstimatorSettingByName(name)
}

// NewEstimatorByName 依預設組名稱建立 Estimator，seed 由 crypto/rand 產生。
//
// seed 會被記錄在結果內用於追溯/重現；真正的可審計能力以 PRNG 的
// Snapshot/Restore 合約為準。
func (t *Targetlab) NewEstimatorByName(name string) (*Estimator, error) {
	seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	return t.NewEstimatorByNameWithSeed(name, seed.Int64())
}

// NewEstimatorByNameWithSeed 與 NewEstimatorByName 相同，但由呼叫端指定初始 seed。
// 同一份設定 + 同一個 seed + 同一份資料，估計結果完全一致。
func (t *Targetlab) NewEstimatorByNameWithSeed(name string, seed int64) (*Estimator, error) {
	if !t.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := t.cat.EstimatorSettingByName(name)
	if err != nil {
		return nil, err
	}
	return newEstimator(cfg, t.cf, t.cluster, seed)
}

// NewEstimatorByYAML 以呼叫端自帶的 YAML 設定建立 Estimator（不經 catalog）。
func (t *Targetlab) NewEstimatorByYAML(raw []byte, seed int64) (*Estimator, error) {
	cfg, err := spec.GetEstimatorSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	return newEstimator(cfg, t.cf, t.cluster, seed)
}

// NewEstimatorByJSON 以呼叫端自帶的 JSON 設定建立 Estimator（不經 catalog）。
func (t *Targetlab) NewEstimatorByJSON(raw []byte, seed int64) (*Estimator, error) {
	cfg, err := spec.GetEstimatorSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	return newEstimator(cfg, t.cf, t.cluster, seed)
}
