package utils

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformPoint applies a homogeneous transform to a point.
func TransformPoint(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}

// RestRelativeQuat undoes the provider's bone-local axis convention:
// the result is the posed orientation expressed relative to the bone's own
// rest orientation frame.
func RestRelativeQuat(restLocal, posed mgl32.Mat4) mgl32.Quat {
	return mgl32.Mat4ToQuat(posed.Mul4(restLocal.Inv())).Normalize()
}
