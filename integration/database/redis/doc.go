// Package redis backs the player secret store with Redis.
//
// Rotating secrets are single opaque values keyed by player identity, which
// maps directly onto Redis strings. Connect parses the connection URL and
// waits for the server to become ready so startup fails fast on
// misconfiguration.
//
//	client, err := redis.Connect(ctx, cfg.URL)
//	if err != nil {
//		return err
//	}
//	store := redis.NewSecretStore(client)
//	players := player.NewManager(auth, store, reg)
package redis
