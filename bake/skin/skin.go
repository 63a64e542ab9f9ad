// Package skin normalizes per-vertex bone influences down to the fixed
// three-influence records the runtime expects.
package skin

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/utils"
)

var (
	ErrUnresolvableGroup = errors.New("vertex group does not match any bone")
	ErrNegativeWeight    = errors.New("negative vertex weight")
)

// GroupMap translates mesh-local vertex group indices to armature bone
// export indices. It is built once per export; a group name without a
// matching bone is a provider configuration error, not something the
// encoders recover from.
type GroupMap map[int]int

func NewGroupMap(groupNames []string, bones []scene.Bone) (GroupMap, error) {
	boneIndex := make(map[string]int, len(bones))
	for i := range bones {
		if _, exists := boneIndex[bones[i].Name]; !exists {
			boneIndex[bones[i].Name] = i
		}
	}

	ret := make(GroupMap, len(groupNames))
	for group, name := range groupNames {
		bone, ok := boneIndex[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnresolvableGroup, "vertex group %q", name)
		}
		ret[group] = bone
	}
	return ret, nil
}

// WeightRecord is one vertex's skinning data: three weight bytes followed
// by the three bone export indices they belong to.
type WeightRecord struct {
	Weights [3]uint8
	Bones   [3]int
}

type influence struct {
	weight float64
	bone   int
}

// NormalizeWeights remaps a vertex's influences through the group map,
// keeps the top three by weight and renormalizes them to a 255 budget.
// The sort is stable: equal weights keep their original relative order,
// which keeps output deterministic across exports.
func NormalizeWeights(influences []scene.Influence, groups GroupMap) (WeightRecord, error) {
	data := make([]influence, 0, len(influences)+3)
	for _, inf := range influences {
		if inf.Weight < 0 {
			return WeightRecord{}, errors.Wrapf(ErrNegativeWeight, "weight %f", inf.Weight)
		}
		bone, ok := groups[inf.Group]
		if !ok {
			return WeightRecord{}, errors.Wrapf(ErrUnresolvableGroup, "group index %d", inf.Group)
		}
		data = append(data, influence{weight: float64(inf.Weight), bone: bone})
	}

	// Zero weight stubs on bone 0 so there are always three entries.
	for len(data) < 3 {
		data = append(data, influence{})
	}

	sort.SliceStable(data, func(i, j int) bool {
		return data[i].weight > data[j].weight
	})
	data = data[:3]

	total := data[0].weight + data[1].weight + data[2].weight

	var ret WeightRecord
	for i := 0; i < 3; i++ {
		if total > 0 {
			ret.Weights[i] = utils.ToU8(data[i].weight * 255.0 / total)
		}
		ret.Bones[i] = data[i].bone
	}
	return ret, nil
}
