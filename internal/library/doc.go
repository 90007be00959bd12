// Package library finds the media files of a dataset directory.
package library
