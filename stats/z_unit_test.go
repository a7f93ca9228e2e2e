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

package stats_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/targetlab/stats"
)

func TestBagMaxScores(t *testing.T) {
	bags := [][][]float64{
		{{1, 0}, {0, 1}},
		{{-1, 0}},
	}
	got := stats.BagMaxScores(bags, []float64{1, 0})
	if got[0] != 1 || got[1] != -1 {
		t.Fatalf("scores: got %v", got)
	}
}

func TestDoneMargin(t *testing.T) {
	r := &stats.DetectionReport{
		Summary: &stats.SummaryReport{Name: "t"},
		Score: &stats.ScoreReport{
			Pos: []float64{0.9, 0.7, 0.8},
			Neg: []float64{0.1, 0.3},
		},
	}
	r.Done()
	if math.Abs(r.Score.PosMin-0.7) > 1e-12 || math.Abs(r.Score.NegMax-0.3) > 1e-12 {
		t.Fatalf("min/max: %v %v", r.Score.PosMin, r.Score.NegMax)
	}
	if math.Abs(r.Score.Margin-0.4) > 1e-12 {
		t.Fatalf("margin: %v", r.Score.Margin)
	}
}

// 分數交錯時的完整彙整：平均、極值、負 margin 與門檻 CI 一起驗。
func TestDoneAggregatesAndMidThreshold(t *testing.T) {
	r := &stats.DetectionReport{
		Summary: &stats.SummaryReport{Name: "t"},
		Score: &stats.ScoreReport{
			Pos: []float64{0.9, 0.2, 0.7},
			Neg: []float64{0.1, 0.5},
		},
	}
	r.Done()
	if math.Abs(r.Score.PosMean-0.6) > 1e-12 || math.Abs(r.Score.NegMean-0.3) > 1e-12 {
		t.Fatalf("means: %v %v", r.Score.PosMean, r.Score.NegMean)
	}
	if math.Abs(r.Score.PosMin-0.2) > 1e-12 || math.Abs(r.Score.NegMax-0.5) > 1e-12 {
		t.Fatalf("min/max: %v %v", r.Score.PosMin, r.Score.NegMax)
	}
	// PosMin − NegMax = 0.2 − 0.5：交錯分數必為負 margin
	if math.Abs(r.Score.Margin-(-0.3)) > 1e-12 {
		t.Fatalf("margin: %v", r.Score.Margin)
	}

	// 門檻 0.45：pos 命中 2/3、neg 誤警 1/2；0<k<n 時 Lo < Hat < Hi
	r.Threshold(0.45)
	d := r.Detect
	if math.Abs(d.DetectRate.Hat-2.0/3.0) > 1e-12 {
		t.Fatalf("detect hat: %v", d.DetectRate.Hat)
	}
	if math.Abs(d.FalseAlarm.Hat-0.5) > 1e-12 {
		t.Fatalf("false alarm hat: %v", d.FalseAlarm.Hat)
	}
	if !(d.DetectRate.CI.Lo < d.DetectRate.Hat && d.DetectRate.Hat < d.DetectRate.CI.Hi) {
		t.Fatalf("detect CI should straddle hat: %+v", d.DetectRate)
	}
	if !(d.FalseAlarm.CI.Lo < d.FalseAlarm.Hat && d.FalseAlarm.Hat < d.FalseAlarm.CI.Hi) {
		t.Fatalf("false alarm CI should straddle hat: %+v", d.FalseAlarm)
	}
}

func TestThresholdCI(t *testing.T) {
	r := &stats.DetectionReport{
		Summary: &stats.SummaryReport{Name: "t"},
		Score: &stats.ScoreReport{
			Pos: []float64{0.9, 0.8, 0.7, 0.6, 0.5},
			Neg: []float64{0.1, 0.2, 0.3, 0.4},
		},
	}
	r.Threshold(0.45)
	d := r.Detect
	if d.DetectRate.Hat != 1 {
		t.Fatalf("detect hat: %v", d.DetectRate.Hat)
	}
	if d.FalseAlarm.Hat != 0 {
		t.Fatalf("false alarm hat: %v", d.FalseAlarm.Hat)
	}
	// CP 邊界：k=n 時上界恰為 1、下界嚴格小於 1；k=0 時反之
	if d.DetectRate.CI.Hi != 1 || d.DetectRate.CI.Lo >= 1 || d.DetectRate.CI.Lo < 0 {
		t.Fatalf("detect CI: %+v", d.DetectRate.CI)
	}
	if d.FalseAlarm.CI.Lo != 0 || d.FalseAlarm.CI.Hi <= 0 || d.FalseAlarm.CI.Hi > 1 {
		t.Fatalf("false alarm CI: %+v", d.FalseAlarm.CI)
	}
}

func TestYAMLRenderFlowStyle(t *testing.T) {
	r := &stats.DetectionReport{
		Summary: &stats.SummaryReport{Name: "t"},
		Score: &stats.ScoreReport{
			Pos: []float64{0.9, 0.8},
			Neg: []float64{0.1},
		},
	}
	var buf bytes.Buffer
	if err := r.WriteWith(&buf, &stats.YAMLDetectionReportRender{}); err != nil {
		t.Fatalf("WriteWith: %v", err)
	}
	out := buf.String()
	// 一維分數列表應為 flow style
	if !strings.Contains(out, "[") {
		t.Fatalf("expect flow style list in yaml:\n%s", out)
	}
}

func TestJSONRender(t *testing.T) {
	r := &stats.DetectionReport{
		Summary: &stats.SummaryReport{Name: "t"},
		Score:   &stats.ScoreReport{Pos: []float64{1}, Neg: []float64{0}},
	}
	var buf bytes.Buffer
	if err := r.WriteWith(&buf, &stats.JsonDetectionReportRender{}); err != nil {
		t.Fatalf("WriteWith: %v", err)
	}
	if !strings.Contains(buf.String(), "\"Summary\"") {
		t.Fatalf("json output missing Summary: %s", buf.String())
	}
}
