// Package testutil provides an in-memory publisher.ObjectStore for tests.
//
//	store := testutil.NewStore()
//	pub := publisher.NewStorePublisher(publisher.TypeLocal, store, publisher.StoreOptions{})
//
// Failures can be injected per key or for every operation of a kind:
//
//	store.FailPut("entity/index.html", errors.New("boom"))
//	store.SetCheckError(errors.New("unreachable"))
package testutil
