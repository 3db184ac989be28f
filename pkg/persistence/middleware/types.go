// Package middleware wraps a RecordStore to transform what it receives before it is stored.
package middleware

import "github.com/aretw0/coredata/pkg/ports"

// Middleware allows wrapping a RecordStore to add behavior.
type Middleware func(ports.RecordStore) ports.RecordStore

// Chain applies middlewares so the first one sees actions first.
func Chain(store ports.RecordStore, mws ...Middleware) ports.RecordStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
