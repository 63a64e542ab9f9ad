// Package mesh quantizes vertex positions and triangulates polygons for
// header export.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/utils"
)

// MaxAbsScaledCoord finds the greatest absolute per-axis coordinate of the
// mesh after applying the object scale.
func MaxAbsScaledCoord(vertices []scene.Vertex, scale mgl32.Vec3) float64 {
	ret := 0.0
	for i := range vertices {
		for axis := 0; axis < 3; axis++ {
			v := math.Abs(float64(vertices[i].Position[axis]) * float64(scale[axis]))
			if v > ret {
				ret = v
			}
		}
	}
	return ret
}

// ComputeExportScale derives the single normalization scale shared by the
// mesh, armature and animation encoders of one export. discardBits of
// precision are reserved as headroom for posed bones that travel outside
// the rest mesh bounds. maxAbsScaledCoord must be positive; zero-extent
// meshes are rejected before any scale is derived.
func ComputeExportScale(maxAbsScaledCoord float64, discardBits int) float64 {
	return 32767.0 / (maxAbsScaledCoord * math.Pow(2.0, float64(discardBits)))
}

// EncodeVertices quantizes vertex positions to int16 triples. Input order
// is preserved and doubles as the export vertex index.
func EncodeVertices(vertices []scene.Vertex, scale mgl32.Vec3, exportScale float64) [][3]int16 {
	ret := make([][3]int16, len(vertices))
	for i := range vertices {
		for axis := 0; axis < 3; axis++ {
			ret[i][axis] = utils.ToS16(float64(vertices[i].Position[axis]) * float64(scale[axis]) * exportScale)
		}
	}
	return ret
}

// Triangulate fans a polygon [v0..vn-1] into n-2 triangles (v0, vi-1, vi).
// The winding is load bearing, reversing it flips the visible faces.
func Triangulate(polygon []int) [][3]int {
	if len(polygon) < 3 {
		return nil
	}
	ret := make([][3]int, 0, len(polygon)-2)
	for i := 2; i < len(polygon); i++ {
		ret = append(ret, [3]int{polygon[0], polygon[i-1], polygon[i]})
	}
	return ret
}

// Triangle is one exported triangle, optionally carrying the diffuse color
// of the face material.
type Triangle struct {
	Indices [3]int
	Color   *[3]uint8
}

// Triangles fan-triangulates every polygon of the mesh. Color is attached
// only when the polygon has an assigned material and color export is
// enabled.
func Triangles(m *scene.Mesh, exportColor bool) []Triangle {
	ret := make([]Triangle, 0, len(m.Polygons))
	for pi := range m.Polygons {
		poly := &m.Polygons[pi]

		var color *[3]uint8
		if exportColor && poly.Material != scene.MaterialNone {
			mat := &m.Materials[poly.Material]
			color = &[3]uint8{
				utils.ToU8(float64(mat.DiffuseColor[0]) * 255.0),
				utils.ToU8(float64(mat.DiffuseColor[1]) * 255.0),
				utils.ToU8(float64(mat.DiffuseColor[2]) * 255.0),
			}
		}

		for _, tri := range Triangulate(poly.Vertices) {
			ret = append(ret, Triangle{Indices: tri, Color: color})
		}
	}
	return ret
}

// IndexType picks the narrowest element type able to represent every
// vertex index of the mesh.
func IndexType(vertexCount int) string {
	if vertexCount >= 65536 {
		return "uint32_t"
	}
	return "uint16_t"
}
