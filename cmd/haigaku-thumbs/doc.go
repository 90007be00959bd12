// Command haigaku-thumbs renders dataset thumbnails from the command line.
//
// It drives the same gallery pipeline a list view uses: a headless pager
// stands in for the view and shows one page of rows at a time, and the
// worker pool renders each page before the next one is shown.
//
// Usage:
//
//	haigaku-thumbs render ./dataset --out ./thumbs --size 256x256
//	haigaku-thumbs list ./dataset
//	haigaku-thumbs config init --path haigaku.toml
//	haigaku-thumbs config validate --config haigaku.toml
package main
