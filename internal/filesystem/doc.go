// Package filesystem wraps the few filesystem calls the thumbnail subsystem
// makes (directory listing and opening images) with retry logic for NFS
// stale file handle errors.
//
// Datasets are often kept on network shares. After the server re-exports a
// share, open handles and cached directory entries can fail once with
// ESTALE and succeed on the next attempt. Only ESTALE is retried; every
// other error is returned immediately.
//
//	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
//
// Retries back off exponentially from InitialBackoff up to MaxBackoff and are
// counted in the haigaku_filesystem_* metrics.
package filesystem
