// Package model holds the row list shown by the dataset view and the
// preview rendered for each row.
//
// Rows start without a preview and display the pending placeholder. A
// render completion fills exactly one row; ClearCache, SetFilePaths and
// SetThumbnailSize put every row back to pending. Completions that no
// longer match their row are dropped, so results may arrive in any order.
package model
