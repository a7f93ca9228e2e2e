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

package core_test

import (
	"testing"

	"github.com/zintix-labs/targetlab/sdk/core"
)

func TestDeterministicSeed(t *testing.T) {
	a := core.Default().New(42)
	b := core.Default().New(42)
	for i := 0; i < 1000; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("same seed diverged at step %d", i)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	a := core.Default().New(7)
	for i := 0; i < 100; i++ {
		a.Uint64()
	}
	snap, err := a.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	want := make([]uint64, 50)
	for i := range want {
		want[i] = a.Uint64()
	}

	b := core.Default().New(0)
	if err := b.Restore(snap); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got := b.Uint64(); got != want[i] {
			t.Fatalf("restored stream diverged at step %d", i)
		}
	}
}

func TestSampleIndex(t *testing.T) {
	c := core.New(core.Default().New(99))

	// k >= n : 完整 0..n-1 且保持順序
	full := c.SampleIndex(5, 5)
	for i, v := range full {
		if v != i {
			t.Fatalf("full sample must keep order, got %v", full)
		}
	}

	// k < n : 長度正確且索引不重複
	sub := c.SampleIndex(100, 30)
	if len(sub) != 30 {
		t.Fatalf("want 30 indices, got %d", len(sub))
	}
	seen := map[int]bool{}
	for _, v := range sub {
		if v < 0 || v >= 100 {
			t.Fatalf("index out of range: %d", v)
		}
		if seen[v] {
			t.Fatalf("duplicate index: %d", v)
		}
		seen[v] = true
	}

	if got := c.SampleIndex(0, 3); got != nil {
		t.Fatalf("n=0 must return nil")
	}
	if got := c.SampleIndex(3, 0); got != nil {
		t.Fatalf("k=0 must return nil")
	}
}

func TestFloat64Range(t *testing.T) {
	r := core.NewPCG64WithSeed(1)
	for i := 0; i < 10000; i++ {
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 out of [0,1): %v", f)
		}
	}
}
