// Package gltfscene adapts a glTF 2.0 document to the scene model the
// exporter consumes. Joint transforms are flattened to scene space, so
// armatures come out with an identity placement transform.
package gltfscene

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/utils"
)

var ErrBadDocument = errors.New("malformed document")

type Scene struct {
	doc *gltf.Document

	meshes    []*scene.Mesh
	armatures []*scene.Armature
	actions   []*scene.Action

	// Node forest, shared by rest pose math and animation cursors.
	parent []int
	rest   []nodeTRS

	rigs map[*scene.Armature][]uint32
	anims map[*scene.Action]*gltf.Animation

	names utils.RandomNameGenerator
	// Fallback names per unnamed node, so every pass over the document
	// sees the same identifier for the same node.
	fallback map[uint32]string
}

// Open loads a .gltf or .glb file with external buffers resolved
// relative to it.
func Open(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}
	s, err := FromDocument(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "load %q", path)
	}
	log.Printf("[gltfscene] loaded %q: %d meshes, %d armatures, %d actions",
		path, len(s.meshes), len(s.armatures), len(s.actions))
	return s, nil
}

func FromDocument(doc *gltf.Document) (*Scene, error) {
	s := &Scene{
		doc:      doc,
		rigs:     make(map[*scene.Armature][]uint32),
		anims:    make(map[*scene.Action]*gltf.Animation),
		fallback: make(map[uint32]string),
	}
	s.buildNodeForest()
	if err := s.buildArmatures(); err != nil {
		return nil, err
	}
	if err := s.buildMeshes(); err != nil {
		return nil, err
	}
	s.buildActions()
	return s, nil
}

func (s *Scene) Meshes() []*scene.Mesh        { return s.meshes }
func (s *Scene) Armatures() []*scene.Armature { return s.armatures }
func (s *Scene) Actions() []*scene.Action     { return s.actions }

func (s *Scene) Cursor(arm *scene.Armature, action *scene.Action) (scene.PoseCursor, error) {
	joints, ok := s.rigs[arm]
	if !ok {
		return nil, errors.Wrapf(ErrBadDocument, "unknown armature %q", arm.Name)
	}
	anim, ok := s.anims[action]
	if !ok {
		return nil, errors.Wrapf(ErrBadDocument, "unknown action %q", action.Name)
	}
	return newKeyCursor(s.doc, joints, s.parent, s.rest, anim)
}

func (s *Scene) buildNodeForest() {
	s.parent = make([]int, len(s.doc.Nodes))
	s.rest = make([]nodeTRS, len(s.doc.Nodes))
	for i := range s.parent {
		s.parent[i] = -1
	}
	for i, n := range s.doc.Nodes {
		s.rest[i] = nodeLocal(n)
		for _, child := range n.Children {
			if int(child) < len(s.parent) {
				s.parent[child] = i
			}
		}
	}
}

// restWorld composes a node's rest transform through its ancestors.
func (s *Scene) restWorld(node int) mgl32.Mat4 {
	m := s.rest[node].mat4()
	for p := s.parent[node]; p >= 0; p = s.parent[p] {
		m = s.rest[p].mat4().Mul4(m)
	}
	return m
}

func (s *Scene) nodeName(index uint32) string {
	if int(index) < len(s.doc.Nodes) && s.doc.Nodes[index].Name != "" {
		return s.doc.Nodes[index].Name
	}
	if name, ok := s.fallback[index]; ok {
		return name
	}
	name := s.names.RandomName()
	s.fallback[index] = name
	return name
}

func (s *Scene) buildArmatures() error {
	for si, skin := range s.doc.Skins {
		boneOfNode := make(map[uint32]int, len(skin.Joints))
		for bi, joint := range skin.Joints {
			if int(joint) >= len(s.doc.Nodes) {
				return errors.Wrapf(ErrBadDocument, "skin %d joint node %d out of range", si, joint)
			}
			boneOfNode[joint] = bi
		}

		bones := make([]scene.Bone, len(skin.Joints))
		for bi, joint := range skin.Joints {
			world := s.restWorld(int(joint))

			parent := scene.BoneNone
			if p := s.parent[joint]; p >= 0 {
				if pb, ok := boneOfNode[uint32(p)]; ok {
					parent = pb
				}
			}

			bones[bi] = scene.Bone{
				Name:      s.nodeName(joint),
				Head:      mgl32.Vec3{world.At(0, 3), world.At(1, 3), world.At(2, 3)},
				RestLocal: world,
				Parent:    parent,
			}
		}
		// Child lists are by name, resolved against the same bone slice.
		for bi := range bones {
			if bones[bi].Parent != scene.BoneNone {
				p := bones[bi].Parent
				bones[p].Children = append(bones[p].Children, bones[bi].Name)
			}
		}

		name := skin.Name
		if name == "" {
			name = s.names.RandomName()
		}
		arm := &scene.Armature{
			Name:  name,
			Scale: mgl32.Vec3{1, 1, 1},
			Base:  mgl32.Ident4(),
			Bones: bones,
		}
		s.armatures = append(s.armatures, arm)
		s.rigs[arm] = skin.Joints
	}
	return nil
}

func (s *Scene) buildMeshes() error {
	for ni, node := range s.doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		if int(*node.Mesh) >= len(s.doc.Meshes) {
			return errors.Wrapf(ErrBadDocument, "node %d mesh %d out of range", ni, *node.Mesh)
		}
		gm := s.doc.Meshes[*node.Mesh]

		name := node.Name
		if name == "" {
			name = gm.Name
		}
		if name == "" {
			name = s.names.RandomName()
		}

		msh := &scene.Mesh{
			Name:  name,
			Scale: s.rest[ni].scale,
		}
		if node.Skin != nil {
			if int(*node.Skin) >= len(s.doc.Skins) {
				return errors.Wrapf(ErrBadDocument, "node %d skin %d out of range", ni, *node.Skin)
			}
			for _, joint := range s.doc.Skins[*node.Skin].Joints {
				msh.Groups = append(msh.Groups, s.nodeName(joint))
			}
		}
		for _, mat := range s.doc.Materials {
			msh.Materials = append(msh.Materials, materialOf(mat))
		}

		for pi, prim := range gm.Primitives {
			if err := s.appendPrimitive(msh, prim); err != nil {
				return errors.Wrapf(err, "mesh %q primitive %d", name, pi)
			}
		}
		if len(msh.Vertices) == 0 {
			log.Printf("[gltfscene] skipping mesh %q: no triangle geometry", name)
			continue
		}
		s.meshes = append(s.meshes, msh)
	}
	return nil
}

func materialOf(mat *gltf.Material) scene.Material {
	ret := scene.Material{
		Name:         mat.Name,
		DiffuseColor: [3]float32{1, 1, 1},
	}
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
		ret.DiffuseColor = [3]float32{
			pbr.BaseColorFactor[0],
			pbr.BaseColorFactor[1],
			pbr.BaseColorFactor[2],
		}
	}
	return ret
}

func (s *Scene) appendPrimitive(msh *scene.Mesh, prim *gltf.Primitive) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		log.Printf("[gltfscene] skipping primitive: mode %d is not triangles", prim.Mode)
		return nil
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return errors.Wrap(ErrBadDocument, "primitive without POSITION")
	}
	positions, err := readFloats(s.doc, posAccessor, gltf.AccessorVec3)
	if err != nil {
		return errors.Wrap(err, "positions")
	}

	var joints, weightBones [][]int
	var weights [][]float32
	if ja, ok := prim.Attributes["JOINTS_0"]; ok {
		if wa, ok := prim.Attributes["WEIGHTS_0"]; ok {
			joints, err = readUints(s.doc, ja, gltf.AccessorVec4)
			if err != nil {
				return errors.Wrap(err, "joints")
			}
			weights, err = readFloats(s.doc, wa, gltf.AccessorVec4)
			if err != nil {
				return errors.Wrap(err, "weights")
			}
			if len(joints) != len(positions) || len(weights) != len(positions) {
				return errors.Wrap(ErrBadDocument, "skinning attribute count mismatch")
			}
			weightBones = joints
		}
	}

	offset := len(msh.Vertices)
	for vi := range positions {
		v := scene.Vertex{
			Position: mgl32.Vec3{positions[vi][0], positions[vi][1], positions[vi][2]},
		}
		if weightBones != nil {
			for k := 0; k < 4; k++ {
				if weights[vi][k] > 0 {
					v.Influences = append(v.Influences, scene.Influence{
						Group:  joints[vi][k],
						Weight: weights[vi][k],
					})
				}
			}
		}
		msh.Vertices = append(msh.Vertices, v)
	}

	material := scene.MaterialNone
	if prim.Material != nil && int(*prim.Material) < len(msh.Materials) {
		material = int(*prim.Material)
	}

	var indices []int
	if prim.Indices != nil {
		rows, err := readUints(s.doc, *prim.Indices, gltf.AccessorScalar)
		if err != nil {
			return errors.Wrap(err, "indices")
		}
		indices = make([]int, len(rows))
		for i := range rows {
			indices[i] = rows[i][0]
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}
	if len(indices)%3 != 0 {
		return errors.Wrapf(ErrBadDocument, "triangle index count %d", len(indices))
	}

	for i := 0; i+2 < len(indices); i += 3 {
		for j := 0; j < 3; j++ {
			if indices[i+j] >= len(positions) {
				return errors.Wrapf(ErrBadDocument, "index %d exceeds %d vertices", indices[i+j], len(positions))
			}
		}
		msh.Polygons = append(msh.Polygons, scene.Polygon{
			Vertices: []int{offset + indices[i], offset + indices[i+1], offset + indices[i+2]},
			Material: material,
		})
	}
	return nil
}

func (s *Scene) buildActions() {
	for _, anim := range s.doc.Animations {
		name := anim.Name
		if name == "" {
			name = s.names.RandomName()
		}
		act := &scene.Action{Name: name}
		s.actions = append(s.actions, act)
		s.anims[act] = anim
	}
}
