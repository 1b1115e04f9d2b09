package soft

import (
	"image"
	"math"

	"github.com/clktmr/n64squares/rcp/gbi"
)

func edge(a, b *vertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// triangle rasterizes a triangle into the color image.  Pixels are covered if
// their center is inside the triangle.  Triangles with clipped vertices are
// dropped.
func (r *RCP) triangle(v0, v1, v2 *vertex) {
	s := &r.state
	if v0.clipped || v1.clipped || v2.clipped {
		return
	}

	// Screen space y points down, so counterclockwise triangles have a
	// negative area.
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	if area > 0 && s.geometry&gbi.CullBack != 0 || area < 0 && s.geometry&gbi.CullFront != 0 {
		return
	}
	s.triangles++

	bounds := image.Rect(
		int(math.Floor(float64(min(v0.x, v1.x, v2.x)))),
		int(math.Floor(float64(min(v0.y, v1.y, v2.y)))),
		int(math.Ceil(float64(max(v0.x, v1.x, v2.x))))+1,
		int(math.Ceil(float64(max(v0.y, v1.y, v2.y))))+1,
	).Intersect(s.color.img.Rect).Intersect(s.viewport)

	zbuffer := s.geometry&gbi.ZBuffer != 0 && s.depth.img != nil
	mode := s.renderMode()
	zcompare := zbuffer && mode&gbi.ZCompare != 0
	zupdate := zbuffer && mode&gbi.ZUpdate != 0
	smooth := s.geometry&(gbi.Shade|gbi.ShadingSmooth) == gbi.Shade|gbi.ShadingSmooth

	flat := gbi.PackRGBA5551(v0.r, v0.g, v0.b, v0.a)
	inv := 1 / area

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		py := float32(y) + 0.5
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := float32(x) + 0.5
			w0 := edge(v1, v2, px, py) * inv
			w1 := edge(v2, v0, px, py) * inv
			w2 := edge(v0, v1, px, py) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			if zbuffer && !(image.Point{x, y}.In(s.depth.img.Rect)) {
				continue
			}
			z := gbi.PackZDZ(uint16(min(w0*v0.z+w1*v1.z+w2*v2.z, gbi.MaxZ)), 0)
			if zcompare && z >= s.depth.img.Raw(x, y) {
				continue
			}
			if zupdate {
				s.depth.img.SetRaw(x, y, z)
			}

			c := flat
			if smooth {
				c = gbi.PackRGBA5551(
					lerp(w0, w1, w2, v0.r, v1.r, v2.r),
					lerp(w0, w1, w2, v0.g, v1.g, v2.g),
					lerp(w0, w1, w2, v0.b, v1.b, v2.b),
					lerp(w0, w1, w2, v0.a, v1.a, v2.a),
				)
			}
			s.color.img.SetRaw(x, y, c)
		}
	}
}

func lerp(w0, w1, w2 float32, c0, c1, c2 uint8) uint8 {
	v := w0*float32(c0) + w1*float32(c1) + w2*float32(c2)
	return uint8(min(max(v+0.5, 0), 255))
}

// fillRect writes the fill color to all pixels in r, including its Max
// coordinates.  For 16-bit images the fill color holds two pixels, the upper
// half is used for even columns.
func (s *state) fillRect(r image.Rectangle) {
	r.Max = r.Max.Add(image.Point{1, 1})
	r = r.Intersect(s.color.img.Rect)
	even, odd := uint16(s.fill>>16), uint16(s.fill)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if x&1 == 0 {
				s.color.img.SetRaw(x, y, even)
			} else {
				s.color.img.SetRaw(x, y, odd)
			}
		}
	}
}
