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

package catalog_test

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/targetlab/catalog"
	"github.com/zintix-labs/targetlab/spec"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"ace_default.yaml": {Data: []byte("name: ace_default\nmethod: ace\n")},
		"smf_fast.yaml":    {Data: []byte("name: smf_fast\nmethod: smf\ninit: bg_dissimilar\n")},
	}
}

func TestRegisterAndGet(t *testing.T) {
	c, err := catalog.New(testFS())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Register(
		catalog.Entry{Name: "Ace_Default", ConfigName: "ace_default.yaml"},
		catalog.Entry{Name: "smf_fast", ConfigName: "smf_fast.yaml"},
	)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	c.Freeze()

	// 名稱大小寫不敏感
	if _, ok := c.GetByName("ACE_DEFAULT"); !ok {
		t.Fatal("GetByName case-insensitive lookup failed")
	}
	cfg, err := c.EstimatorSettingByName("smf_fast")
	if err != nil {
		t.Fatalf("EstimatorSettingByName: %v", err)
	}
	if cfg.Method != spec.MethodSMF || cfg.Init != spec.InitBgDissimilar {
		t.Fatalf("setting: %+v", cfg)
	}

	// 凍結後拒絕註冊
	if err := c.Register(catalog.Entry{Name: "late", ConfigName: "ace_default.yaml"}); err == nil {
		t.Fatal("expect error registering after freeze")
	}
}

func TestRegisterRejectsBadEntries(t *testing.T) {
	c, err := catalog.New(testFS())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Register(catalog.Entry{Name: "x", ConfigName: "missing.yaml"}); err == nil {
		t.Fatal("expect error on missing config file")
	}
	if err := c.Register(catalog.Entry{Name: "x", ConfigName: "sub/dir.yaml"}); err == nil {
		t.Fatal("expect error on path in config name")
	}
	if err := c.Register(
		catalog.Entry{Name: "a", ConfigName: "ace_default.yaml"},
		catalog.Entry{Name: "a", ConfigName: "smf_fast.yaml"},
	); err == nil {
		t.Fatal("expect error on duplicate name in batch")
	}
	// 整批失敗不留半套狀態
	if len(c.Names()) != 0 {
		t.Fatalf("failed batch should not register anything: %v", c.Names())
	}
}

func TestFlatFSRequired(t *testing.T) {
	bad := fstest.MapFS{
		"sub/nested.yaml": {Data: []byte("name: nested\n")},
	}
	if _, err := catalog.New(bad); err == nil {
		t.Fatal("expect error on nested config FS")
	}
}

func TestNamesSorted(t *testing.T) {
	c, err := catalog.New(testFS())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Register(
		catalog.Entry{Name: "smf_fast", ConfigName: "smf_fast.yaml"},
		catalog.Entry{Name: "ace_default", ConfigName: "ace_default.yaml"},
	)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	names := c.Names()
	if len(names) != 2 || names[0] != "ace_default" || names[1] != "smf_fast" {
		t.Fatalf("names not sorted: %v", names)
	}
}
