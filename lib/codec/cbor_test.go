// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sample struct {
	B string `cbor:"b"`
	A int    `cbor:"a"`
}

func TestMarshalIsDeterministicAcrossFieldOrder(t *testing.T) {
	first, err := Marshal(sample{A: 1, B: "x"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(sample{A: 1, B: "x"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Marshal produced different bytes for identical input")
	}
}

func TestUnmarshalRoundTrips(t *testing.T) {
	original := sample{A: 42, B: "hello"}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("decoded = %+v, want %+v", decoded, original)
	}
}
