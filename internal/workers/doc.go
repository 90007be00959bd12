/*
Package workers sizes worker pools in a way that respects container CPU limits.

# Overview

runtime.NumCPU reports the host's CPUs, not the cgroup limit. Since Go 1.19
GOMAXPROCS follows the container limit, so every calculation here starts
from runtime.GOMAXPROCS(0).

# Thumbnail Pool

The thumbnail loader uses half the available CPUs, clamped to [1, 4]:

	n := workers.ForThumbnails()

	// GOMAXPROCS=1  -> 1
	// GOMAXPROCS=4  -> 2
	// GOMAXPROCS=16 -> 4

Thumbnail work is dominated by file reads, decoding and waiting on ffmpeg.
Extra workers past the cap mostly compete with the UI for memory bandwidth.

# Environment Variable Override

THUMBNAIL_WORKERS forces a count. The override is still capped by the
limit passed to Count:

	THUMBNAIL_WORKERS=2 haigaku-thumbs render ./dataset

Invalid, zero or negative values are ignored.

# Thread Safety

All functions in this package are safe for concurrent use.
*/
package workers
