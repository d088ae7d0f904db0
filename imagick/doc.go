// Package imagick is a shotfit engine backed by ImageMagick 7 through cgo.
// It is only compiled with the imagick build tag:
//
//	go build -tags imagick ./...
package imagick
