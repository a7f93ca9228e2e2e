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

package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/targetlab/dto"
	"github.com/zintix-labs/targetlab/server/httperr"
)

// Catalog 列出可用的具名預設組。
func (h *EstimateHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	resp := &dto.CatalogResponse{Names: h.lab.Names()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		httperr.Log(h.log, "encode catalog response failed", err)
	}
}

// Setting 回傳指定預設組解析後的完整設定（含補上的預設值）。
func (h *EstimateHandler) Setting(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	cfg, err := h.lab.SettingByName(name)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		httperr.Log(h.log, "encode setting response failed", err)
	}
}
