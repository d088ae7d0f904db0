//go:build imagick

package main

import (
	"github.com/pressly/shotfit"
	"github.com/pressly/shotfit/imagick"
)

func init() {
	engines["imagick"] = func() shotfit.Engine { return &imagick.Engine{} }
}
