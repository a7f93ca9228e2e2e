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

package corefmt_test

import (
	"bytes"
	"testing"

	"github.com/zintix-labs/targetlab/corefmt"
)

func TestBlobFrameRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x02, 0xff, 0x00, 0x7f}
	frame := corefmt.EncodeBlobFrame(payload)
	got, err := corefmt.DecodeBlobFrame(frame)
	if err != nil {
		t.Fatalf("DecodeBlobFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip: got %v want %v", got, payload)
	}
}

func TestBlobFrameTruncated(t *testing.T) {
	frame := corefmt.EncodeBlobFrame([]byte("snapshot"))
	if _, err := corefmt.DecodeBlobFrame(frame[:len(frame)-2]); err == nil {
		t.Fatal("expect error on truncated frame")
	}
}

func TestReadBlobFrameMaxBytes(t *testing.T) {
	frame := corefmt.EncodeBlobFrame(make([]byte, 1024))
	if _, err := corefmt.ReadBlobFrame(bytes.NewReader(frame), 16); err == nil {
		t.Fatal("expect error when payload exceeds maxBytes")
	}
	got, err := corefmt.ReadBlobFrame(bytes.NewReader(frame), 4096)
	if err != nil {
		t.Fatalf("ReadBlobFrame: %v", err)
	}
	if len(got) != 1024 {
		t.Fatalf("payload length: got %d", len(got))
	}
}

func TestTextCodecs(t *testing.T) {
	payload := []byte("target signature state")
	for name, rt := range map[string]func([]byte) (string, func(string) ([]byte, error)){
		"base64": func(b []byte) (string, func(string) ([]byte, error)) {
			return corefmt.EncodeBase64(b), corefmt.DecodeBase64
		},
		"base64url": func(b []byte) (string, func(string) ([]byte, error)) {
			return corefmt.EncodeBase64URL(b), corefmt.DecodeBase64URL
		},
		"hex": func(b []byte) (string, func(string) ([]byte, error)) {
			return corefmt.EncodeHex(b), corefmt.DecodeHex
		},
	} {
		enc, dec := rt(payload)
		got, err := dec(enc)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("%s round trip: got %v", name, got)
		}
	}
}
