// Package anim samples an action's keyframes into quantized per-frame
// bone transforms, expressed relative to the rest pose.
package anim

import (
	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/utils"
)

// Frame timestamps are exported in time units of 24 frames.
const framesPerUnit = 24.0

type State int

const (
	SeekingStart State = iota
	Sampling
	Done
)

// Sampler walks one action through its PoseCursor. It owns the cursor for
// the whole pass; nothing else may move it until Run returns. A Sampler
// is single-use.
type Sampler struct {
	arm         *scene.Armature
	cursor      scene.PoseCursor
	exportScale float64
	state       State
}

func NewSampler(arm *scene.Armature, cursor scene.PoseCursor, exportScale float64) *Sampler {
	return &Sampler{
		arm:         arm,
		cursor:      cursor,
		exportScale: exportScale,
		state:       SeekingStart,
	}
}

func (s *Sampler) State() State {
	return s.state
}

// Run rewinds the playhead to the first keyframe, then emits one frame
// record per keyframe until the cursor cannot advance. Each record is a
// timestamp row followed by a (px,py,pz,qw,qx,qy,qz) row per bone in
// export order. The returned size is the total element count.
func (s *Sampler) Run() ([][]int, int) {
	if s.state != SeekingStart {
		return nil, 0
	}

	if !s.cursor.HasKeyframes() {
		s.state = Done
		return [][]int{}, 0
	}

	// Rewind until the playhead cannot move further back.
	for s.cursor.StepBack() {
	}
	s.state = Sampling

	rows := make([][]int, 0, 64)
	size := 0
	for {
		rows = append(rows, []int{int(utils.ToFixed8x8(s.cursor.Frame() / framesPerUnit))})
		size++

		for i := range s.arm.Bones {
			row := s.sampleBone(i)
			rows = append(rows, row)
			size += len(row)
		}

		if !s.cursor.StepForward() {
			s.state = Done
			return rows, size
		}
	}
}

// sampleBone reads the bone's current posed transform and derives the
// rest-relative orientation and the position delta from neutral
// placement, so the runtime can apply (rotation, position) directly.
func (s *Sampler) sampleBone(bone int) []int {
	b := &s.arm.Bones[bone]

	q := utils.RestRelativeQuat(b.RestLocal, s.cursor.BoneMatrix(bone))

	posRest := utils.TransformPoint(s.arm.Base, b.Head)
	posCurr := utils.TransformPoint(s.arm.Base, s.cursor.BoneHead(bone))
	hd := q.Rotate(posRest.Mul(-1)).Add(posCurr)

	px := utils.ToS16(float64(hd[0]) * float64(s.arm.Scale[0]) * s.exportScale)
	py := utils.ToS16(float64(hd[1]) * float64(s.arm.Scale[1]) * s.exportScale)
	pz := utils.ToS16(float64(hd[2]) * float64(s.arm.Scale[2]) * s.exportScale)

	return []int{
		int(px), int(py), int(pz),
		int(utils.ToFixed4x12(float64(q.W))),
		int(utils.ToFixed4x12(float64(q.X()))),
		int(utils.ToFixed4x12(float64(q.Y()))),
		int(utils.ToFixed4x12(float64(q.Z()))),
	}
}
