/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityfeed

import (
	"reflect"
	"slices"
	"sync"

	"github.com/suparena/entityfeed/datastore"
	"github.com/suparena/entityfeed/errors"
)

const storeEntity = "DataStore"

// TypedStorage keeps the named DataStores of one item type T
type TypedStorage[T any] struct {
	mu     sync.RWMutex
	stores map[string]datastore.DataStore[T]
}

// NewTypedStorage creates a new TypedStorage for type T
func NewTypedStorage[T any]() *TypedStorage[T] {
	return &TypedStorage[T]{
		stores: make(map[string]datastore.DataStore[T]),
	}
}

// Register adds a datastore under name. A name can be registered only once.
func (ts *TypedStorage[T]) Register(name string, ds datastore.DataStore[T]) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[name]; exists {
		return errors.NewAlreadyExistsError(storeEntity, name)
	}

	ts.stores[name] = ds
	return nil
}

// Get retrieves a datastore by name
func (ts *TypedStorage[T]) Get(name string) (datastore.DataStore[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	ds, exists := ts.stores[name]
	if !exists {
		return nil, errors.NewNotFoundError(storeEntity, name)
	}

	return ds, nil
}

// Remove deletes a datastore by name
func (ts *TypedStorage[T]) Remove(name string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.stores[name]; !exists {
		return errors.NewNotFoundError(storeEntity, name)
	}

	delete(ts.stores, name)
	return nil
}

// List returns all registered datastore names, sorted
func (ts *TypedStorage[T]) List() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.stores))
	for k := range ts.stores {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// MultiTypeStorage manages TypedStorage instances for different types
type MultiTypeStorage struct {
	mu       sync.RWMutex
	storages map[reflect.Type]any
}

// NewMultiTypeStorage creates a new MultiTypeStorage
func NewMultiTypeStorage() *MultiTypeStorage {
	return &MultiTypeStorage{
		storages: make(map[reflect.Type]any),
	}
}

// GetTypedStorage returns a TypedStorage for the specified type, creating it if necessary
func GetTypedStorage[T any](mts *MultiTypeStorage) *TypedStorage[T] {
	typ := reflect.TypeOf((*T)(nil)).Elem()

	mts.mu.RLock()
	storage, exists := mts.storages[typ]
	mts.mu.RUnlock()
	if exists {
		return storage.(*TypedStorage[T])
	}

	mts.mu.Lock()
	defer mts.mu.Unlock()
	if storage, exists := mts.storages[typ]; exists {
		return storage.(*TypedStorage[T])
	}
	newStorage := NewTypedStorage[T]()
	mts.storages[typ] = newStorage
	return newStorage
}

// RegisterDataStore is a convenience function to register a datastore for type T
func RegisterDataStore[T any](mts *MultiTypeStorage, name string, ds datastore.DataStore[T]) error {
	return GetTypedStorage[T](mts).Register(name, ds)
}

// GetDataStore is a convenience function to get a datastore for type T
func GetDataStore[T any](mts *MultiTypeStorage, name string) (datastore.DataStore[T], error) {
	return GetTypedStorage[T](mts).Get(name)
}

// RemoveDataStore is a convenience function to remove a datastore for type T
func RemoveDataStore[T any](mts *MultiTypeStorage, name string) error {
	return GetTypedStorage[T](mts).Remove(name)
}

// ListDataStores is a convenience function to list all datastores for type T
func ListDataStores[T any](mts *MultiTypeStorage) []string {
	return GetTypedStorage[T](mts).List()
}
