// Package detect decides whether the watched region changed.
package detect

import (
	"bytes"
	"image"
)

// Changed reports whether cur differs from base. Any dimension mismatch or
// any differing channel value, alpha included, counts as a change. There is
// no tolerance.
func Changed(base, cur *image.RGBA) bool {
	if base == nil || cur == nil {
		return base != cur
	}
	bb, cb := base.Bounds(), cur.Bounds()
	if bb.Dx() != cb.Dx() || bb.Dy() != cb.Dy() {
		return true
	}
	rowBytes := bb.Dx() * 4
	for y := 0; y < bb.Dy(); y++ {
		bo := base.PixOffset(bb.Min.X, bb.Min.Y+y)
		co := cur.PixOffset(cb.Min.X, cb.Min.Y+y)
		if !bytes.Equal(base.Pix[bo:bo+rowBytes], cur.Pix[co:co+rowBytes]) {
			return true
		}
	}
	return false
}
