// Package scene defines the read-only data model a scene provider exposes
// to the exporter. Providers own the data; everything here is valid only
// for the duration of one export call.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Influence struct {
	Group  int
	Weight float32
}

// Vertex identity is its index in Mesh.Vertices; that index is reused
// verbatim as the export vertex index.
type Vertex struct {
	Position   mgl32.Vec3
	Influences []Influence
}

type Material struct {
	Name         string
	DiffuseColor [3]float32
}

const MaterialNone = -1

type Polygon struct {
	Vertices []int
	Material int // index into Mesh.Materials, MaterialNone when unassigned
}

type Mesh struct {
	Name      string
	Scale     mgl32.Vec3
	Vertices  []Vertex
	Polygons  []Polygon
	Materials []Material
	// Vertex group names; slice index is the group id referenced by
	// Influence.Group.
	Groups []string
}

const BoneNone = -1

type Bone struct {
	Name string
	// Rest head position in armature space.
	Head mgl32.Vec3
	// Full rest transform of the bone in armature space.
	RestLocal mgl32.Mat4
	Parent    int // BoneNone for roots
	// Child bone names. Resolved against the armature bone list at encode
	// time; a name that does not resolve means the provider snapshot is
	// inconsistent.
	Children []string
}

// Armature bone ordering is authoritative: the slice index is the bone
// export index for every data block of one export.
type Armature struct {
	Name  string
	Scale mgl32.Vec3
	// Object placement transform applied to rest and posed positions.
	Base  mgl32.Mat4
	Bones []Bone
}

type Action struct {
	Name string
}

// PoseCursor is the stateful playhead over one action's keyframes. Bone
// transform reads reflect the pose at the current frame, so the cursor
// must be re-read after every move. A cursor is exclusively owned by one
// sampling pass; nothing else may move it concurrently.
type PoseCursor interface {
	// Frame reports the playhead position in frames (24 frames = 1 unit).
	Frame() float64
	// HasKeyframes reports whether the active action has any keyframes.
	// An action without keyframes yields an empty animation block.
	HasKeyframes() bool
	// StepBack moves the playhead to the previous keyframe. It reports
	// false, without moving, when already at the first keyframe or when
	// the action has no keyframes at all.
	StepBack() bool
	// StepForward moves the playhead to the next keyframe, reporting
	// false at the end of the action.
	StepForward() bool
	// BoneMatrix returns the current posed transform of a bone in
	// armature space.
	BoneMatrix(bone int) mgl32.Mat4
	// BoneHead returns the current posed head position of a bone in
	// armature space.
	BoneHead(bone int) mgl32.Vec3
}

// Provider is the host scene collaborator. All returned data is
// read-only and already validated geometry-wise.
type Provider interface {
	Meshes() []*Mesh
	Armatures() []*Armature
	Actions() []*Action
	// Cursor makes action the active action on the armature and returns
	// the keyframe cursor for it, positioned anywhere within the action.
	Cursor(arm *Armature, action *Action) (PoseCursor, error)
}
