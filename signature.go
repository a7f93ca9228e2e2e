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
	"encoding/json"
	"io"

	"github.com/zintix-labs/targetlab/corefmt"
	"github.com/zintix-labs/targetlab/errs"
)

// 簽名封存框架的 payload 上限。估計結果以 JSON 存放，大小主要由
// whitener 的 U/W 矩陣決定；64 MiB 足以涵蓋數千維的特徵空間。
const maxSignatureFrameBytes uint64 = 64 << 20

// WriteFrame 把估計結果封存成帶長度前綴的二進位框架。
//
// 框架內容是 Result 的 JSON（含 whitener 與白化簽名），讀回後可直接
// 對新資料打分，不需要重新估計。
func (r *Result) WriteFrame(w io.Writer) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return errs.Wrap(err, "encode signature frame failed")
	}
	return corefmt.WriteBlobFrame(w, raw)
}

// ReadResultFrame 讀回 WriteFrame 封存的估計結果。
func ReadResultFrame(rd io.Reader) (*Result, error) {
	raw, err := corefmt.ReadBlobFrame(rd, maxSignatureFrameBytes)
	if err != nil {
		return nil, err
	}
	res := new(Result)
	if err := json.Unmarshal(raw, res); err != nil {
		return nil, errs.Wrap(err, "decode signature frame failed")
	}
	if res.Whitener == nil || len(res.TargetWhitened) == 0 {
		return nil, errs.NewWarn("signature frame err: whitener and whitened target required")
	}
	return res, nil
}
