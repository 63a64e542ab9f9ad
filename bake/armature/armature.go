// Package armature quantizes bone rest positions and flattens the bone
// forest into the adjacency stream consumed by the runtime.
package armature

import (
	"github.com/pkg/errors"

	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/utils"
)

var ErrUnresolvableChild = errors.New("child bone not present in armature")

// EncodeBonePositions quantizes every bone's rest head position, in bone
// enumeration order, through the armature placement transform and the
// shared export scale.
func EncodeBonePositions(arm *scene.Armature, exportScale float64) [][3]int16 {
	ret := make([][3]int16, len(arm.Bones))
	for i := range arm.Bones {
		hd := utils.TransformPoint(arm.Base, arm.Bones[i].Head)
		for axis := 0; axis < 3; axis++ {
			ret[i][axis] = utils.ToS16(float64(hd[axis]) * float64(arm.Scale[axis]) * exportScale)
		}
	}
	return ret
}

// EncodeHierarchy emits one row [childCount, childIndex...] per bone in
// export order. The returned size is 2+childCount per bone: the count
// element is counted twice. Loaders already ship with that expectation,
// so the layout is frozen.
func EncodeHierarchy(bones []scene.Bone) ([][]int, int, error) {
	index := make(map[string]int, len(bones))
	for i := range bones {
		index[bones[i].Name] = i
	}

	ret := make([][]int, 0, len(bones))
	size := 0
	for i := range bones {
		row := []int{len(bones[i].Children)}
		size++
		for _, child := range bones[i].Children {
			idx, ok := index[child]
			if !ok {
				return nil, 0, errors.Wrapf(ErrUnresolvableChild, "bone %q child %q", bones[i].Name, child)
			}
			row = append(row, idx)
		}
		ret = append(ret, row)
		size += len(row)
	}
	return ret, size, nil
}
