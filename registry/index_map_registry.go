/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"maps"
	"reflect"
	"sync"
)

// An index map names the key attributes of an item and a template for each,
// e.g. "PK": "CLUB#{ClubID}". Templates are expanded from the item's fields
// on every write.
var (
	indexMaps  = make(map[reflect.Type]map[string]string)
	indexMapMu sync.RWMutex
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterIndexMap associates T with an index map, replacing any earlier one.
// The map is copied.
func RegisterIndexMap[T any](idxMap map[string]string) {
	indexMapMu.Lock()
	defer indexMapMu.Unlock()
	indexMaps[typeOf[T]()] = maps.Clone(idxMap)
}

// GetIndexMap returns a copy of the index map registered for T, if any.
func GetIndexMap[T any]() (map[string]string, bool) {
	indexMapMu.RLock()
	defer indexMapMu.RUnlock()
	m, ok := indexMaps[typeOf[T]()]
	return maps.Clone(m), ok
}
