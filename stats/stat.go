package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/targetlab/sdk/vec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64 `json:"Hat"`
	CI  CI      `json:"CI"`
}

// DetectionReport 簽名偵測統計報告
type DetectionReport struct {
	Summary *SummaryReport   `json:"Summary"`
	Score   *ScoreReport     `json:"Score"`
	Detect  *DetectionResult `json:"Detect,omitempty"`
	isDone  bool
}

type SummaryReport struct {
	Name       string  `json:"Name"`
	Method     string  `json:"Method"`
	Init       string  `json:"Init"`
	Dim        int     `json:"Dim"`
	PosBags    int     `json:"PosBags"`
	NegBags    int     `json:"NegBags"`
	Objective  float64 `json:"Objective"`
	Iterations int     `json:"Iterations"`
	Status     string  `json:"Status"`
}

// ScoreReport 每個 bag 取最大偵測分數後的彙整。
// Pos/Neg 保留逐 bag 分數供畫 ROC 之類的後處理。
type ScoreReport struct {
	Pos     []float64 `json:"Pos"`
	Neg     []float64 `json:"Neg"`
	PosMean float64   `json:"PosMean"`
	NegMean float64   `json:"NegMean"`
	PosMin  float64   `json:"PosMin"`
	NegMax  float64   `json:"NegMax"`
	Margin  float64   `json:"Margin"` // PosMin − NegMax，>0 表示門檻可完全分離
}

// DetectionResult 對單一門檻的偵測率/誤警率（CP 95% CI）
type DetectionResult struct {
	Threshold  float64   `json:"Threshold"`
	DetectRate PointStat `json:"DetectRate"`
	FalseAlarm PointStat `json:"FalseAlarm"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// BagMaxScores 對每個 bag 取樣本與簽名內積的最大值。
// 白化與否由呼叫端決定；bags 與簽名必須在同一空間。
func BagMaxScores(bags [][][]float64, target []float64) []float64 {
	out := make([]float64, len(bags))
	for i, bag := range bags {
		best := math.Inf(-1)
		for _, s := range bag {
			if d := vec.Dot(s, target); d > best {
				best = d
			}
		}
		out[i] = best
	}
	return out
}

// Done 彙整逐 bag 分數為最終統計並鎖定 isDone 標記。
func (r *DetectionReport) Done() {
	if r.isDone {
		return
	}
	if r.Score != nil {
		r.Score.PosMean = mean(r.Score.Pos)
		r.Score.NegMean = mean(r.Score.Neg)
		r.Score.PosMin = minOf(r.Score.Pos)
		r.Score.NegMax = maxOf(r.Score.Neg)
		r.Score.Margin = r.Score.PosMin - r.Score.NegMax
	}
	r.isDone = true
}

// Threshold 以指定門檻計算偵測率與誤警率並填入 Detect。
func (r *DetectionReport) Threshold(th float64) {
	r.Done()
	detK := 0
	for _, s := range r.Score.Pos {
		if s >= th {
			detK++
		}
	}
	faK := 0
	for _, s := range r.Score.Neg {
		if s >= th {
			faK++
		}
	}
	detHat, detCI := proportionCICP(detK, len(r.Score.Pos), 0.95)
	faHat, faCI := proportionCICP(faK, len(r.Score.Neg), 0.95)
	r.Detect = &DetectionResult{
		Threshold:  th,
		DetectRate: PointStat{Hat: detHat, CI: detCI},
		FalseAlarm: PointStat{Hat: faHat, CI: faCI},
	}
}

func (r *DetectionReport) WriteWith(w io.Writer, rep DetectionReportRender) error {
	r.Done()
	return rep.Write(w, r)
}

func (r *DetectionReport) StdOut(ut time.Duration) {
	r.Done()
	formatDuration(ut, r.Summary.PosBags+r.Summary.NegBags)
	sk, sm := r.fmtBasic()
	str := fmtTable(r.Summary.Name, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func formatDuration(d time.Duration, bags int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	bps := int(float64(bags) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nbps : %d bags/sec\n", sec, bps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\nbps : %d bags/sec\n", m, s, bps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nbps : %d bags/sec\n", h, m, s, bps)
}

// StdOut

func (r *DetectionReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Name":          p.Sprintf("%s", r.Summary.Name),
		"Method":        strings.ToUpper(r.Summary.Method),
		"Init":          r.Summary.Init,
		"Dim":           p.Sprintf("%d", r.Summary.Dim),
		"Pos Bags":      p.Sprintf("%d", r.Summary.PosBags),
		"Neg Bags":      p.Sprintf("%d", r.Summary.NegBags),
		"Objective":     p.Sprintf("%.6f", r.Summary.Objective),
		"Iterations":    p.Sprintf("%d", r.Summary.Iterations),
		"Status":        r.Summary.Status,
		"Pos Score Avg": p.Sprintf("%.4f", r.Score.PosMean),
		"Neg Score Avg": p.Sprintf("%.4f", r.Score.NegMean),
		"Margin":        p.Sprintf("%.4f", r.Score.Margin),
	}
	keys := []string{"Name", "Method", "Init", "Dim", "Pos Bags", "Neg Bags", "Objective", "Iterations", "Status", "Pos Score Avg", "Neg Score Avg", "Margin"}
	if r.Detect != nil {
		basic["Threshold"] = p.Sprintf("%.4f", r.Detect.Threshold)
		basic["Detect Rate"] = fmtHatCIpct01(r.Detect.DetectRate.Hat, r.Detect.DetectRate.CI)
		basic["False Alarm"] = fmtHatCIpct01(r.Detect.FalseAlarm.Hat, r.Detect.FalseAlarm.CI)
		keys = append(keys, "Threshold", "Detect Rate", "False Alarm")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}
