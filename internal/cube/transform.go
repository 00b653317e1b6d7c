package cube

import (
	"math"

	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// Vec3 is a point or direction in renderer space.
type Vec3 [3]float64

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// Transform is a rotation about one lattice axis. The zero value is the
// identity.
type Transform struct {
	Axis  types.Axis `json:"axis"`
	Angle float64    `json:"angle"` // radians, right-handed
}

// Identity is the transform applied to slots outside a turning layer.
var Identity = Transform{}

// IsIdentity reports whether the transform leaves points in place.
func (tr Transform) IsIdentity() bool {
	return tr.Angle == 0
}

// Matrix returns the rotation matrix for the transform.
func (tr Transform) Matrix() Mat3 {
	c, s := math.Cos(tr.Angle), math.Sin(tr.Angle)
	switch tr.Axis {
	case types.AxisX:
		return Mat3{
			{1, 0, 0},
			{0, c, -s},
			{0, s, c},
		}
	case types.AxisY:
		return Mat3{
			{c, 0, s},
			{0, 1, 0},
			{-s, 0, c},
		}
	case types.AxisZ:
		return Mat3{
			{c, -s, 0},
			{s, c, 0},
			{0, 0, 1},
		}
	default:
		return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
}

// Apply rotates v.
func (tr Transform) Apply(v Vec3) Vec3 {
	m := tr.Matrix()
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

// Vec returns the coordinate as a renderer-space vector.
func (c Coord) Vec() Vec3 {
	return Vec3{float64(c.X), float64(c.Y), float64(c.Z)}
}
