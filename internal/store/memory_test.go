package store_test

import (
	"testing"

	"github.com/robalobadob/hilo/internal/store"
	"github.com/robalobadob/hilo/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	})
}
