package skin

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/vgltools/vglbake/scene"
)

func testBones(names ...string) []scene.Bone {
	bones := make([]scene.Bone, len(names))
	for i, n := range names {
		bones[i] = scene.Bone{Name: n, RestLocal: mgl32.Ident4(), Parent: scene.BoneNone}
	}
	return bones
}

func TestNewGroupMap(t *testing.T) {
	bones := testBones("root", "arm", "hand")
	gm, err := NewGroupMap([]string{"hand", "root"}, bones)
	if err != nil {
		t.Fatal(err)
	}
	if gm[0] != 2 || gm[1] != 0 {
		t.Errorf("unexpected group map %v", gm)
	}

	if _, err := NewGroupMap([]string{"hand", "tail"}, bones); !errors.Is(err, ErrUnresolvableGroup) {
		t.Errorf("expected ErrUnresolvableGroup, got %v", err)
	}
}

func TestNormalizeWeightsSingleInfluence(t *testing.T) {
	gm := GroupMap{0: 5}
	rec, err := NormalizeWeights([]scene.Influence{{Group: 0, Weight: 1.0}}, gm)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Weights != [3]uint8{255, 0, 0} || rec.Bones != [3]int{5, 0, 0} {
		t.Errorf("unexpected record %+v; expected (255,0,0,5,0,0)", rec)
	}
}

func TestNormalizeWeightsTopThree(t *testing.T) {
	gm := GroupMap{0: 0, 1: 1, 2: 2, 3: 3}
	rec, err := NormalizeWeights([]scene.Influence{
		{Group: 0, Weight: 0.1},
		{Group: 1, Weight: 0.6},
		{Group: 2, Weight: 0.25},
		{Group: 3, Weight: 0.05},
	}, gm)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Bones != [3]int{1, 2, 0} {
		t.Errorf("unexpected bone order %v", rec.Bones)
	}
	if rec.Weights[0] < rec.Weights[1] || rec.Weights[1] < rec.Weights[2] {
		t.Errorf("weights not descending: %v", rec.Weights)
	}
	sum := int(rec.Weights[0]) + int(rec.Weights[1]) + int(rec.Weights[2])
	if sum < 253 || sum > 255 {
		t.Errorf("weight sum %d outside [253,255]", sum)
	}
}

func TestNormalizeWeightsStableTieBreak(t *testing.T) {
	gm := GroupMap{0: 7, 1: 8, 2: 9}
	rec, err := NormalizeWeights([]scene.Influence{
		{Group: 0, Weight: 0.5},
		{Group: 1, Weight: 0.5},
		{Group: 2, Weight: 0.5},
	}, gm)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Bones != [3]int{7, 8, 9} {
		t.Errorf("tie break not stable: %v", rec.Bones)
	}
}

func TestNormalizeWeightsSumBound(t *testing.T) {
	gm := GroupMap{0: 0, 1: 1, 2: 2}
	cases := [][]scene.Influence{
		{{Group: 0, Weight: 0.333}, {Group: 1, Weight: 0.333}, {Group: 2, Weight: 0.334}},
		{{Group: 0, Weight: 0.2}, {Group: 1, Weight: 0.3}},
		{{Group: 0, Weight: 0.3}, {Group: 1, Weight: 0.4}, {Group: 2, Weight: 0.2}},
		{{Group: 0, Weight: 100}, {Group: 1, Weight: 50}, {Group: 2, Weight: 25}},
	}
	for _, infs := range cases {
		rec, err := NormalizeWeights(infs, gm)
		if err != nil {
			t.Fatal(err)
		}
		sum := int(rec.Weights[0]) + int(rec.Weights[1]) + int(rec.Weights[2])
		if sum < 253 || sum > 255 {
			t.Errorf("weight sum %d outside [253,255] for %v", sum, infs)
		}
	}
}

func TestNormalizeWeightsDegenerate(t *testing.T) {
	rec, err := NormalizeWeights(nil, GroupMap{})
	if err != nil {
		t.Fatal(err)
	}
	if rec.Weights != [3]uint8{0, 0, 0} || rec.Bones != [3]int{0, 0, 0} {
		t.Errorf("unexpected degenerate record %+v", rec)
	}
}

func TestNormalizeWeightsNegative(t *testing.T) {
	_, err := NormalizeWeights([]scene.Influence{{Group: 0, Weight: -0.25}}, GroupMap{0: 0})
	if !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("expected ErrNegativeWeight, got %v", err)
	}
}
