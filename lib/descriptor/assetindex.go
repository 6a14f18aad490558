// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"encoding/json"
	"fmt"
)

// AssetObject is one entry in an asset index: the content-addressed
// location of a logical asset path.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// AssetIndex maps logical asset paths (e.g. "minecraft/sounds/x.ogg")
// to their content-addressed object records.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

// ParseAssetIndex decodes an asset-index JSON document.
func ParseAssetIndex(data []byte) (*AssetIndex, error) {
	var index AssetIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("descriptor: parsing asset index JSON: %w", err)
	}
	return &index, nil
}

// ObjectPath returns the on-disk relative path for an object's hash
// under assets/objects/: "<hash[0:2]>/<hash>".
func ObjectPath(hash string) string {
	if len(hash) < 2 {
		return hash
	}
	return hash[:2] + "/" + hash
}
