// Package store provides file-based persistence for the gateway's local
// state.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files live under the daemon's configured home
// directory. The identity file is encrypted at rest using
// internal/envelope. See internal/store/badger for the alternate
// badger-backed implementation of the same interfaces.
//
// The package includes stores for:
//   - The local identity, encrypted at rest (IdentityFileStore)
//   - Pinned counterparty identities (RemoteIdentityFileStore)
//   - Signed and one-time pre-keys (PreKeyFileStore)
//   - Serialized Double Ratchet session state (RatchetSessionFileStore)
package store
