// Package mtx builds the transformation matrices of a frame.
//
// Matrices follow the mgl32 conventions (column major, column vectors).  The
// gbi package takes care of converting them into the RSP's layout.
package mtx

import "github.com/go-gl/mathgl/mgl32"

// Perspective returns a perspective projection and the matching value for
// gbi.PerspNormalize.  fovy is in degrees, all elements are multiplied by
// scale.
func Perspective(fovy, aspect, near, far, scale float32) (m mgl32.Mat4, perspNorm uint16) {
	m = mgl32.Perspective(mgl32.DegToRad(fovy), aspect, near, far).Mul(scale)
	return m, PerspNorm(near, far)
}

// PerspNorm is the normalization factor for w of a projection with the given
// clip planes.  It keeps w in the range of the RSP's fixed point math.
func PerspNorm(near, far float32) uint16 {
	if near+far <= 2 {
		return 0xffff
	}
	n := uint32((2 * 65536) / (near + far))
	if n == 0 {
		return 1
	}
	if n > 0xffff {
		return 0xffff
	}
	return uint16(n)
}

// LookAt returns a view matrix for a camera at eye looking at target.
func LookAt(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(eye, target, up)
}

// Position returns a model matrix rotated by roll (z-axis), pitch (x-axis)
// and heading (y-axis) in degrees, uniformly scaled and then translated to
// pos.
func Position(roll, pitch, heading, scale float32, pos mgl32.Vec3) mgl32.Mat4 {
	rot := mgl32.HomogRotate3DY(mgl32.DegToRad(heading)).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(pitch))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(roll)))
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).
		Mul4(rot).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}
