package gltfscene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// Keyframe inputs are in seconds; playhead positions are reported in
// frames at the conventional 24 fps.
const framesPerSecond = 24.0

var ErrBadChannel = errors.New("malformed animation channel")

// nodeTRS is a node's local transform in decomposed form, so animation
// channels can override individual components.
type nodeTRS struct {
	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3
}

func nodeLocal(n *gltf.Node) nodeTRS {
	ret := nodeTRS{
		translation: mgl32.Vec3{n.Translation[0], n.Translation[1], n.Translation[2]},
		rotation: mgl32.Quat{
			W: n.Rotation[3],
			V: mgl32.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]},
		},
		scale: mgl32.Vec3{n.Scale[0], n.Scale[1], n.Scale[2]},
	}
	// Hand-built nodes may leave rotation and scale at their zero values.
	if ret.rotation.W == 0 && ret.rotation.V.Len() == 0 {
		ret.rotation = mgl32.QuatIdent()
	}
	if ret.scale.Len() == 0 {
		ret.scale = mgl32.Vec3{1, 1, 1}
	}
	return ret
}

func (t nodeTRS) mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.translation[0], t.translation[1], t.translation[2]).
		Mul4(t.rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2]))
}

// channel is one decoded animation channel: keyframe times plus the
// component values it drives on its target node.
type channel struct {
	node   uint32
	path   gltf.TRSProperty
	interp gltf.Interpolation
	times  []float32
	values [][]float32
}

func (c *channel) valueAt(key int) []float32 {
	if c.interp == gltf.InterpolationCubicSpline {
		// [in-tangent, value, out-tangent] per key; only the value matters
		// when sampling on keyframes.
		return c.values[3*key+1]
	}
	return c.values[key]
}

// sample evaluates the channel at an absolute time, clamping outside the
// keyframe range.
func (c *channel) sample(t float64) []float32 {
	i := sort.Search(len(c.times), func(i int) bool {
		return float64(c.times[i]) >= t
	})
	if i >= len(c.times) {
		return c.valueAt(len(c.times) - 1)
	}
	if i == 0 || float64(c.times[i]) == t {
		return c.valueAt(i)
	}
	if c.interp == gltf.InterpolationStep {
		return c.valueAt(i - 1)
	}

	a, b := c.valueAt(i-1), c.valueAt(i)
	t0, t1 := float64(c.times[i-1]), float64(c.times[i])
	frac := float32((t - t0) / (t1 - t0))

	if c.path == gltf.TRSRotation {
		qa := mgl32.Quat{W: a[3], V: mgl32.Vec3{a[0], a[1], a[2]}}
		qb := mgl32.Quat{W: b[3], V: mgl32.Vec3{b[0], b[1], b[2]}}
		q := mgl32.QuatSlerp(qa.Normalize(), qb.Normalize(), frac)
		return []float32{q.X(), q.Y(), q.Z(), q.W}
	}

	ret := make([]float32, len(a))
	for j := range ret {
		ret[j] = a[j] + (b[j]-a[j])*frac
	}
	return ret
}

// keyCursor is the playhead over one animation. Keyframe positions are
// the sorted union of every channel's input times; poses are evaluated
// lazily and cached per position.
type keyCursor struct {
	joints   []uint32
	parent   []int
	rest     []nodeTRS
	channels []*channel
	times    []float64
	pos      int

	posed []mgl32.Mat4
	built []bool
}

func newKeyCursor(doc *gltf.Document, joints []uint32, parent []int, rest []nodeTRS, anim *gltf.Animation) (*keyCursor, error) {
	ret := &keyCursor{
		joints: joints,
		parent: parent,
		rest:   rest,
	}

	timeSet := make(map[float64]struct{})
	for ci, ch := range anim.Channels {
		if ch.Target.Node == nil || ch.Target.Path == gltf.TRSWeights {
			continue
		}
		if ch.Sampler == nil || int(*ch.Sampler) >= len(anim.Samplers) {
			return nil, errors.Wrapf(ErrBadChannel, "channel %d sampler", ci)
		}
		sampler := anim.Samplers[*ch.Sampler]
		if sampler.Input == nil || sampler.Output == nil {
			return nil, errors.Wrapf(ErrBadChannel, "channel %d accessors", ci)
		}

		inputs, err := readFloats(doc, *sampler.Input, gltf.AccessorScalar)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d input", ci)
		}
		valueType := gltf.AccessorVec3
		if ch.Target.Path == gltf.TRSRotation {
			valueType = gltf.AccessorVec4
		}
		outputs, err := readFloats(doc, *sampler.Output, valueType)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %d output", ci)
		}

		perKey := 1
		if sampler.Interpolation == gltf.InterpolationCubicSpline {
			perKey = 3
		}
		if len(outputs) != len(inputs)*perKey {
			return nil, errors.Wrapf(ErrBadChannel, "channel %d: %d keys, %d values", ci, len(inputs), len(outputs))
		}

		times := make([]float32, len(inputs))
		for i := range inputs {
			times[i] = inputs[i][0]
			timeSet[float64(inputs[i][0])] = struct{}{}
		}

		ret.channels = append(ret.channels, &channel{
			node:   *ch.Target.Node,
			path:   ch.Target.Path,
			interp: sampler.Interpolation,
			times:  times,
			values: outputs,
		})
	}

	ret.times = make([]float64, 0, len(timeSet))
	for t := range timeSet {
		ret.times = append(ret.times, t)
	}
	sort.Float64s(ret.times)
	ret.invalidate()
	return ret, nil
}

func (c *keyCursor) invalidate() {
	c.posed = make([]mgl32.Mat4, len(c.rest))
	c.built = make([]bool, len(c.rest))
}

func (c *keyCursor) Frame() float64 {
	return c.times[c.pos] * framesPerSecond
}

func (c *keyCursor) HasKeyframes() bool {
	return len(c.times) > 0
}

func (c *keyCursor) StepBack() bool {
	if c.pos > 0 {
		c.pos--
		c.invalidate()
		return true
	}
	return false
}

func (c *keyCursor) StepForward() bool {
	if c.pos+1 < len(c.times) {
		c.pos++
		c.invalidate()
		return true
	}
	return false
}

func (c *keyCursor) BoneMatrix(bone int) mgl32.Mat4 {
	return c.worldOf(int(c.joints[bone]))
}

func (c *keyCursor) BoneHead(bone int) mgl32.Vec3 {
	m := c.worldOf(int(c.joints[bone]))
	return mgl32.Vec3{m.At(0, 3), m.At(1, 3), m.At(2, 3)}
}

// worldOf composes the posed transform of a node through its ancestor
// chain, caching per node for the current playhead position.
func (c *keyCursor) worldOf(node int) mgl32.Mat4 {
	if c.built[node] {
		return c.posed[node]
	}

	local := c.localOf(node)
	m := local
	if p := c.parent[node]; p >= 0 {
		m = c.worldOf(p).Mul4(local)
	}
	c.posed[node] = m
	c.built[node] = true
	return m
}

func (c *keyCursor) localOf(node int) mgl32.Mat4 {
	trs := c.rest[node]
	t := c.times[c.pos]
	for _, ch := range c.channels {
		if int(ch.node) != node {
			continue
		}
		v := ch.sample(t)
		switch ch.path {
		case gltf.TRSTranslation:
			trs.translation = mgl32.Vec3{v[0], v[1], v[2]}
		case gltf.TRSRotation:
			trs.rotation = mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
		case gltf.TRSScale:
			trs.scale = mgl32.Vec3{v[0], v[1], v[2]}
		}
	}
	return trs.mat4()
}
