// Package viewport loads previews for the rows around the visible part of
// the list.
//
// Scroll events are debounced; when the view settles the pool queue is
// cleared and one batch is submitted for the unrendered rows in
// [first-Buffer, last+Buffer]. Renders already in flight for rows that
// scrolled away still finish and land in the cache.
package viewport
