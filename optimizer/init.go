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

package optimizer

import (
	"math"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/targetlab/errs"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/sdk/vec"
	"github.com/zintix-labs/targetlab/spec"
)

// ClusterFunc 是注入的聚類能力：把樣本分成 k 群並回傳各群中心。
// 預設實作在 cluster 包；呼叫端可換成任何相同簽名的實作。
type ClusterFunc func(samples [][]float64, k, maxIter int, c *core.Core) ([][]float64, error)

// InitOptions 控制初始化策略的行為。零值欄位使用安全預設。
type InitOptions struct {
	Softmax        float64      // 目標函數的 softmax 參數，0 = 純 max
	SampleFraction float64      // best_sample 掃描比例 (0,1]，0 視為 1
	ClusterCount   int          // cluster_center 的群數上限
	Core           *core.Core   // 亂數來源；nil 時用固定掃描順序
	Cluster        ClusterFunc  // 聚類能力，cluster_center 需要
	Centers        [][]float64  // 預先算好的中心；提供時跳過聚類
	Workers        int          // best_sample 平行評分的 worker 數，<=1 循序
	Progress       bool         // 顯示 pb 進度條（CLI 用）
	Eval           EvalFunc     // nil → Evaluate；測試可換成計數包裝
}

func (o *InitOptions) eval() EvalFunc {
	if o.Eval == nil {
		return Evaluate
	}
	return o.Eval
}

// clusterMaxIter 是預設聚類能力的迭代上限。
const clusterMaxIter = 100

type initFunc func(posBags, negBags [][][]float64, opt InitOptions) ([]float64, float64, error)

// inits 是初始化策略註冊表；鍵與設定檔的 init 欄位一致。
var inits = map[spec.InitKey]initFunc{
	spec.InitBestSample:    initBestSample,
	spec.InitBgDissimilar:  initBgDissimilar,
	spec.InitClusterCenter: initClusterCenter,
}

// Init 以指定策略產生初始簽名，回傳單位化向量與其目標值。
func Init(key spec.InitKey, posBags, negBags [][][]float64, opt InitOptions) ([]float64, float64, error) {
	fn, ok := inits[key]
	if !ok {
		return nil, 0, errs.Warnf("optimizer err: unknown init strategy %q", key)
	}
	if len(posBags) == 0 {
		return nil, 0, errs.NewWarn("optimizer err: no positive bags")
	}
	return fn(posBags, negBags, opt)
}

// poolSamples 把多個 bag 的樣本攤平成單一池。
func poolSamples(bags [][][]float64) [][]float64 {
	var pool [][]float64
	for _, b := range bags {
		pool = append(pool, b...)
	}
	return pool
}

// pickBest 對候選清單逐一評分，回傳最佳者。
// 平手時取最小索引（嚴格大於才換手），確保掃描順序決定性。
func pickBest(cands [][]float64, posBags, negBags [][][]float64, opt InitOptions) ([]float64, float64, error) {
	ev := opt.eval()
	units := make([][]float64, len(cands))
	for i, c := range cands {
		u, err := vec.Unit(c)
		if err != nil {
			return nil, 0, errs.Wrap(err, "optimizer err: degenerate init candidate")
		}
		units[i] = u
	}

	scores := make([]float64, len(units))
	var bar *pb.ProgressBar
	if opt.Progress {
		bar = pb.StartNew(len(units))
	}

	workers := opt.Workers
	if workers <= 1 || len(units) < 2 {
		for i, u := range units {
			scores[i], _ = ev(posBags, negBags, u, opt.Softmax)
			if bar != nil {
				bar.Increment()
			}
		}
	} else {
		jobs := make(chan int, len(units))
		for i := range units {
			jobs <- i
		}
		close(jobs)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					scores[i], _ = ev(posBags, negBags, units[i], opt.Softmax)
					if bar != nil {
						bar.Increment()
					}
				}
			}()
		}
		wg.Wait()
	}
	if bar != nil {
		bar.Finish()
	}

	bestIdx, best := 0, math.Inf(-1)
	for i, s := range scores {
		if s > best {
			best = s
			bestIdx = i
		}
	}
	return units[bestIdx], best, nil
}

// initBestSample 掃描正 bag 樣本池，挑目標值最高的樣本。
// SampleFraction < 1 時以 PRNG 抽取子集以加速大型資料集。
func initBestSample(posBags, negBags [][][]float64, opt InitOptions) ([]float64, float64, error) {
	pool := poolSamples(posBags)
	if len(pool) == 0 {
		return nil, 0, errs.NewWarn("optimizer err: empty positive sample pool")
	}

	frac := opt.SampleFraction
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	k := int(math.Ceil(frac * float64(len(pool))))

	c := opt.Core
	if c == nil {
		c = core.New(core.NewPCG64())
	}
	idx := c.SampleIndex(len(pool), k)

	cands := make([][]float64, len(idx))
	for i, j := range idx {
		cands[i] = pool[j]
	}
	return pickBest(cands, posBags, negBags, opt)
}

// initBgDissimilar 挑與背景平均方向最不相似（內積最小）的正樣本。
// 正負樣本都先單位化再比對，樣本的原始長度不影響選擇；
// 不需評分整個池，適合極大資料集的快速起點。
func initBgDissimilar(posBags, negBags [][][]float64, opt InitOptions) ([]float64, float64, error) {
	pool := poolSamples(posBags)
	if len(pool) == 0 {
		return nil, 0, errs.NewWarn("optimizer err: empty positive sample pool")
	}
	negPool := poolSamples(negBags)
	if len(negPool) == 0 {
		return nil, 0, errs.NewWarn("optimizer err: no negative samples for background direction")
	}

	// 背景方向 = 單位化負樣本的平均，再單位化
	negUnits := make([][]float64, len(negPool))
	for i, s := range negPool {
		u, err := vec.Unit(s)
		if err != nil {
			return nil, 0, errs.Wrap(err, "optimizer err: degenerate negative sample")
		}
		negUnits[i] = u
	}
	bg, err := vec.Unit(vec.Mean(negUnits))
	if err != nil {
		return nil, 0, errs.Wrap(err, "optimizer err: degenerate background mean")
	}

	var best []float64
	lowest := math.Inf(1)
	for _, s := range pool {
		u, err := vec.Unit(s)
		if err != nil {
			return nil, 0, errs.Wrap(err, "optimizer err: degenerate init candidate")
		}
		if d := vec.Dot(u, bg); d < lowest {
			lowest = d
			best = u
		}
	}

	obj, _ := opt.eval()(posBags, negBags, best, opt.Softmax)
	return best, obj, nil
}

// initClusterCenter 把正樣本聚成 k 群，挑目標值最高的群中心。
// k 會被夾到樣本數；opt.Centers 提供時直接使用、跳過聚類。
func initClusterCenter(posBags, negBags [][][]float64, opt InitOptions) ([]float64, float64, error) {
	centers := opt.Centers
	if len(centers) == 0 {
		pool := poolSamples(posBags)
		if len(pool) == 0 {
			return nil, 0, errs.NewWarn("optimizer err: empty positive sample pool")
		}
		if opt.Cluster == nil {
			return nil, 0, errs.NewWarn("optimizer err: cluster_center init requires a cluster capability")
		}
		k := opt.ClusterCount
		if k <= 0 {
			k = 1
		}
		if k > len(pool) {
			k = len(pool)
		}
		c := opt.Core
		if c == nil {
			c = core.New(core.NewPCG64())
		}
		var err error
		centers, err = opt.Cluster(pool, k, clusterMaxIter, c)
		if err != nil {
			return nil, 0, errs.Wrap(err, "optimizer err: clustering failed")
		}
	}
	if len(centers) == 0 {
		return nil, 0, errs.NewFatal("optimizer err: clustering produced no centers")
	}
	return pickBest(centers, posBags, negBags, opt)
}
