package gltfscene

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

type bufferBuilder struct {
	data []byte
}

func (b *bufferBuilder) align(n int) {
	for len(b.data)%n != 0 {
		b.data = append(b.data, 0)
	}
}

func (b *bufferBuilder) putFloats(vals ...float32) uint32 {
	b.align(4)
	offset := uint32(len(b.data))
	for _, v := range vals {
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], math.Float32bits(v))
		b.data = append(b.data, raw[:]...)
	}
	return offset
}

func (b *bufferBuilder) putU16(vals ...uint16) uint32 {
	b.align(2)
	offset := uint32(len(b.data))
	for _, v := range vals {
		var raw [2]byte
		binary.LittleEndian.PutUint16(raw[:], v)
		b.data = append(b.data, raw[:]...)
	}
	return offset
}

func (b *bufferBuilder) putU8(vals ...uint8) uint32 {
	offset := uint32(len(b.data))
	b.data = append(b.data, vals...)
	return offset
}

func addAccessor(doc *gltf.Document, offset, length, count uint32, ct gltf.ComponentType, at gltf.AccessorType) uint32 {
	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: length,
	})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(uint32(len(doc.BufferViews) - 1)),
		ComponentType: ct,
		Count:         count,
		Type:          at,
	})
	return uint32(len(doc.Accessors) - 1)
}

// riggedDoc builds a one-bone skinned triangle with a two-key
// translation animation, all backed by one binary buffer.
func riggedDoc() *gltf.Document {
	doc := &gltf.Document{}
	var b bufferBuilder

	posOff := b.putFloats(
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	)
	posAcc := addAccessor(doc, posOff, 36, 3, gltf.ComponentFloat, gltf.AccessorVec3)

	idxOff := b.putU16(0, 1, 2)
	idxAcc := addAccessor(doc, idxOff, 6, 3, gltf.ComponentUshort, gltf.AccessorScalar)

	jointsOff := b.putU8(
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	)
	jointsAcc := addAccessor(doc, jointsOff, 12, 3, gltf.ComponentUbyte, gltf.AccessorVec4)

	weightsOff := b.putFloats(
		1, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
	)
	weightsAcc := addAccessor(doc, weightsOff, 48, 3, gltf.ComponentFloat, gltf.AccessorVec4)

	inOff := b.putFloats(0, 0.5)
	inAcc := addAccessor(doc, inOff, 8, 2, gltf.ComponentFloat, gltf.AccessorScalar)

	outOff := b.putFloats(
		0, 0, 0,
		0, 0, 2,
	)
	outAcc := addAccessor(doc, outOff, 24, 2, gltf.ComponentFloat, gltf.AccessorVec3)

	doc.Buffers = []*gltf.Buffer{{ByteLength: uint32(len(b.data)), Data: b.data}}

	doc.Materials = []*gltf.Material{{
		Name: "red",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{1, 0, 0, 1},
		},
	}}

	doc.Meshes = []*gltf.Mesh{{
		Name: "CubeData",
		Primitives: []*gltf.Primitive{{
			Mode:    gltf.PrimitiveTriangles,
			Indices: gltf.Index(idxAcc),
			Attributes: map[string]uint32{
				"POSITION":  posAcc,
				"JOINTS_0":  jointsAcc,
				"WEIGHTS_0": weightsAcc,
			},
			Material: gltf.Index(0),
		}},
	}}

	doc.Nodes = []*gltf.Node{
		{Name: "root", Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
		{
			Name:     "Cube",
			Mesh:     gltf.Index(0),
			Skin:     gltf.Index(0),
			Rotation: [4]float32{0, 0, 0, 1},
			Scale:    [3]float32{1, 1, 1},
		},
	}
	doc.Skins = []*gltf.Skin{{Name: "rig", Joints: []uint32{0}}}

	doc.Animations = []*gltf.Animation{{
		Name: "move",
		Channels: []*gltf.Channel{{
			Sampler: gltf.Index(0),
			Target:  gltf.ChannelTarget{Node: gltf.Index(0), Path: gltf.TRSTranslation},
		}},
		Samplers: []*gltf.AnimationSampler{{
			Input:         gltf.Index(inAcc),
			Output:        gltf.Index(outAcc),
			Interpolation: gltf.InterpolationLinear,
		}},
	}}

	return doc
}

func TestFromDocumentMesh(t *testing.T) {
	s, err := FromDocument(riggedDoc())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	meshes := s.Meshes()
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]

	if m.Name != "Cube" {
		t.Errorf("mesh name %q; expected Cube (node name wins)", m.Name)
	}
	if len(m.Vertices) != 3 || len(m.Polygons) != 1 {
		t.Fatalf("expected 3 vertices / 1 polygon, got %d / %d", len(m.Vertices), len(m.Polygons))
	}
	if m.Vertices[0].Position != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("unexpected vertex 0 position %v", m.Vertices[0].Position)
	}
	if got := m.Polygons[0].Vertices; got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("unexpected polygon %v", got)
	}
	if m.Polygons[0].Material != 0 {
		t.Errorf("material %d; expected 0", m.Polygons[0].Material)
	}
	if m.Materials[0].DiffuseColor != ([3]float32{1, 0, 0}) {
		t.Errorf("unexpected diffuse color %v", m.Materials[0].DiffuseColor)
	}
	if len(m.Groups) != 1 || m.Groups[0] != "root" {
		t.Errorf("unexpected groups %v", m.Groups)
	}
	if len(m.Vertices[0].Influences) != 1 || m.Vertices[0].Influences[0].Weight != 1 {
		t.Errorf("unexpected influences %v", m.Vertices[0].Influences)
	}
}

func TestFromDocumentArmature(t *testing.T) {
	s, err := FromDocument(riggedDoc())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	arms := s.Armatures()
	if len(arms) != 1 {
		t.Fatalf("expected 1 armature, got %d", len(arms))
	}
	arm := arms[0]
	if arm.Name != "rig" || len(arm.Bones) != 1 {
		t.Fatalf("unexpected armature %q with %d bones", arm.Name, len(arm.Bones))
	}
	if arm.Bones[0].Name != "root" || arm.Bones[0].Parent != -1 {
		t.Errorf("unexpected bone %+v", arm.Bones[0])
	}
}

func TestCursorPlayback(t *testing.T) {
	s, err := FromDocument(riggedDoc())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	cursor, err := s.Cursor(s.Armatures()[0], s.Actions()[0])
	if err != nil {
		t.Fatalf("Cursor: %v", err)
	}
	if !cursor.HasKeyframes() {
		t.Fatalf("expected keyframes")
	}

	if f := cursor.Frame(); f != 0 {
		t.Errorf("first frame %v; expected 0", f)
	}
	if cursor.StepBack() {
		t.Errorf("StepBack at start must report false")
	}
	if head := cursor.BoneHead(0); head != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("rest head %v; expected origin", head)
	}

	if !cursor.StepForward() {
		t.Fatalf("expected a second keyframe")
	}
	if f := cursor.Frame(); f != 12 {
		t.Errorf("second frame %v; expected 12 (0.5s at 24 fps)", f)
	}
	if head := cursor.BoneHead(0); head != (mgl32.Vec3{0, 0, 2}) {
		t.Errorf("posed head %v; expected translated", head)
	}
	if cursor.StepForward() {
		t.Errorf("StepForward past the end must report false")
	}
}

func TestUnnamedJointGetsOneName(t *testing.T) {
	doc := riggedDoc()
	doc.Nodes[0].Name = ""

	s, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	bone := s.Armatures()[0].Bones[0].Name
	if bone == "" {
		t.Fatalf("unnamed joint must receive a fallback name")
	}
	// The vertex-group pass must see the exact name the bone pass drew,
	// or skinning can never resolve against the armature.
	if groups := s.Meshes()[0].Groups; len(groups) != 1 || groups[0] != bone {
		t.Errorf("vertex groups %v; expected [%q]", groups, bone)
	}

	again, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if got := again.Armatures()[0].Bones[0].Name; got != bone {
		t.Errorf("fallback name %q differs across loads from %q", got, bone)
	}
}

func TestCursorUnknownAction(t *testing.T) {
	s, err := FromDocument(riggedDoc())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if _, err := s.Cursor(s.Armatures()[0], nil); err == nil {
		t.Errorf("expected an error for a foreign action")
	}
}
