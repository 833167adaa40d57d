// Package mongo backs the player secret store with MongoDB.
//
// Each player's rotating secret is one document keyed by identity. The
// store upserts on rotation, so first-time rotation and replacement are the
// same write.
package mongo
