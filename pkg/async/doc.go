// Package async provides a small future abstraction over goroutines for
// fire-and-forget work whose completion still matters.
//
// The player manager uses it for the background secret load that must
// finish before a player can issue tokens: activation launches the load
// without blocking the per-tick path, and later operations await or poll
// the returned future.
//
//	future := async.Exec(ctx, identity, store.Warm)
//	...
//	if err := future.AwaitWithTimeout(5 * time.Second); err != nil {
//		// load did not finish in time
//	}
package async
