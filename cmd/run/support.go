package main

import (
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zintix-labs/targetlab"
	"github.com/zintix-labs/targetlab/dataset"
	"github.com/zintix-labs/targetlab/demo"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	preset    string
	data      string
	out       string
	save      string
	format    string
	worker    int
	dim       int
	bags      int
	bagSize   int
	threshold float64
	seed      int64
	pprofmode string
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.preset, "preset", "ace_default", "estimator preset name")
	flag.StringVar(&cfg.data, "data", "", "dataset file (.yaml/.json); empty -> synthetic dataset")
	flag.StringVar(&cfg.out, "out", "", "write detection report to file")
	flag.StringVar(&cfg.save, "save", "", "archive the estimate as a signature frame")
	flag.StringVar(&cfg.format, "format", "yaml", "report format: yaml, json")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers for init scan")
	flag.IntVar(&cfg.dim, "dim", 16, "synthetic dataset dimension")
	flag.IntVar(&cfg.bags, "bags", 10, "synthetic positive/negative bags each")
	flag.IntVar(&cfg.bagSize, "bagsize", 50, "synthetic samples per bag")
	flag.Float64Var(&cfg.threshold, "threshold", 0, "detection threshold on bag max score")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 這裡解析輸入、跑一次估計並輸出報告
func executeEstimator() {
	cfg.valid() // 基本檢查

	lab, err := demo.NewTargetlab()
	if err != nil {
		log.Fatal(err)
	}
	est, err := lab.NewEstimatorByNameWithSeed(cfg.preset, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	set := est.Setting()
	ds := loadDataset(set.PositiveLabel, set.NegativeLabel)

	est.EnableProgress()
	est.SetWorkers(cfg.worker)

	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Printf("%s[PRESET:%s] [METHOD:%s] [INIT:%s] [BAGS:%d] [SEED:%d]%s\n",
		green, cfg.preset, set.Method, set.Init, len(ds.Bags), cfg.seed, reset)

	start := time.Now()
	res, err := est.Estimate(ds)
	if err != nil {
		log.Fatal(err)
	}
	used := time.Since(start)

	rep, err := res.Report(ds, set.PositiveLabel, set.NegativeLabel)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.threshold != 0 {
		rep.Threshold(cfg.threshold)
	}
	rep.StdOut(used)
	writeReport(rep)
	saveFrame(res)
}

func saveFrame(res *targetlab.Result) {
	if cfg.save == "" {
		return
	}
	f, err := os.Create(cfg.save)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := res.WriteFrame(f); err != nil {
		log.Fatal(err)
	}
}

func loadDataset(posLabel, negLabel string) *dataset.Dataset {
	if cfg.data == "" {
		c := core.New(core.NewPCG64WithSeed(cfg.seed))
		ds, _, err := demo.Generate(c, demo.GenSetting{
			Dim:           cfg.dim,
			PosBags:       cfg.bags,
			NegBags:       cfg.bags,
			BagSize:       cfg.bagSize,
			PositiveLabel: posLabel,
			NegativeLabel: negLabel,
		})
		if err != nil {
			log.Fatal(err)
		}
		return ds
	}

	raw, err := os.ReadFile(cfg.data)
	if err != nil {
		log.Fatal(err)
	}
	var ds *dataset.Dataset
	switch strings.ToLower(filepath.Ext(cfg.data)) {
	case ".json":
		ds, err = dataset.GetDatasetByJSON(raw)
	default:
		ds, err = dataset.GetDatasetByYAML(raw)
	}
	if err != nil {
		log.Fatal(err)
	}
	return ds
}

func writeReport(rep *stats.DetectionReport) {
	if cfg.out == "" {
		return
	}
	f, err := os.Create(cfg.out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	var r stats.DetectionReportRender
	if cfg.format == "json" {
		r = &stats.JsonDetectionReportRender{}
	} else {
		r = &stats.YAMLDetectionReportRender{}
	}
	if err := rep.WriteWith(f, r); err != nil {
		log.Fatal(err)
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	if cfg.format != "yaml" && cfg.format != "json" {
		log.Fatal("value err : format must be yaml or json")
	}

	// 合成資料集的形狀檢查
	if cfg.data == "" {
		if cfg.dim < 1 || cfg.bags < 1 || cfg.bagSize < 1 {
			log.Fatal("value err : dim/bags/bagsize must > 0")
		}
		// 維度太高對示範沒有意義，直接 resize
		if cfg.dim > 4096 {
			p.Printf("too high dimension: %d resized to 4096\n", cfg.dim)
			cfg.dim = 4096
		}
	}
}
