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

package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/zintix-labs/targetlab"
	"github.com/zintix-labs/targetlab/demo/demo_configs"
	"github.com/zintix-labs/targetlab/sdk/core"
	"github.com/zintix-labs/targetlab/server"
	"github.com/zintix-labs/targetlab/server/logger"
	"github.com/zintix-labs/targetlab/server/svrcfg"
)

// This command is intentionally a "lab server" entrypoint for the targetlab repo.
// It serves the built-in demo presets by default; point -configs at a directory
// of estimator settings to serve your own.
func main() {
	cfg, err := loadConfigFromFlags()
	if err != nil {
		fmt.Println(err)
	}
	server.Run(cfg)
}

type config struct {
	LogMode string
	Configs string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.StringVar(&cfg.Configs, "configs", "", "directory of estimator setting files; empty -> built-in demo presets")

	flag.Parse()

	log, _ := logger.NewAsync(4096, cfg.norm())

	var src fs.FS = demo_configs.FS
	if cfg.Configs != "" {
		src = os.DirFS(cfg.Configs)
	}
	lab, err := targetlab.NewAuto(
		core.Default(),
		targetlab.Configs(src),
	)
	if err != nil {
		return nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:       log,
		Targetlab: lab,
	}
	return sCfg, nil
}

func (cfg *config) norm() logger.LogMode {
	switch cfg.LogMode {
	case "ModeDev":
		return logger.ModeDev
	case "ModeProd":
		return logger.ModeProd
	case "ModeSilence":
		return logger.ModeSilence
	default:
		return logger.ModeDev
	}
}
