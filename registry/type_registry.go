/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EntityTypeAttribute is the attribute injected into stored items so that a
// query over a shared table can tell entity types apart.
const EntityTypeAttribute = "EntityType"

// UnmarshalFunc defines a function that takes a raw DynamoDB item and returns the unmarshaled object.
type UnmarshalFunc func(item map[string]types.AttributeValue) (interface{}, error)

var (
	// typeRegistry maps an entity type name (like "Player") to its unmarshal function.
	typeRegistry = make(map[string]UnmarshalFunc)
	typeMu       sync.RWMutex
)

// RegisterType registers an unmarshal function for a given entity type name.
// If a type is already registered under that name, it panics to prevent accidental overrides.
func RegisterType(name string, fn UnmarshalFunc) {
	typeMu.Lock()
	defer typeMu.Unlock()

	if _, exists := typeRegistry[name]; exists {
		panic(fmt.Sprintf("type registry: type %q already registered", name))
	}
	typeRegistry[name] = fn
}

// RegisterTypeOf registers T under EntityTypeName[T] with an unmarshal
// function that decodes items into a T value.
func RegisterTypeOf[T any]() {
	RegisterType(EntityTypeName[T](), func(item map[string]types.AttributeValue) (interface{}, error) {
		var v T
		if err := attributevalue.UnmarshalMap(item, &v); err != nil {
			return nil, err
		}
		return v, nil
	})
}

// GetUnmarshalFunc returns the registered unmarshal function for the given entity type name.
// If no function is registered, it returns an error.
func GetUnmarshalFunc(name string) (UnmarshalFunc, error) {
	typeMu.RLock()
	defer typeMu.RUnlock()

	fn, ok := typeRegistry[name]
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for %q", name)
	}
	return fn, nil
}

// EntityTypeName returns the name written to EntityTypeAttribute for T:
// the bare type name, with pointers dereferenced.
func EntityTypeName[T any]() string {
	t := typeOf[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
