package armature

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/vgltools/vglbake/scene"
)

func TestEncodeBonePositions(t *testing.T) {
	arm := &scene.Armature{
		Scale: mgl32.Vec3{1, 1, 1},
		Base:  mgl32.Translate3D(1, 0, 0),
		Bones: []scene.Bone{
			{Name: "root", Head: mgl32.Vec3{0, 0, 0}, Parent: scene.BoneNone},
			{Name: "tip", Head: mgl32.Vec3{0, 2, 0}, Parent: 0},
		},
	}

	enc := EncodeBonePositions(arm, 100.0)
	if enc[0] != [3]int16{100, 0, 0} {
		t.Errorf("root encoded to %v; expected [100 0 0]", enc[0])
	}
	if enc[1] != [3]int16{100, 200, 0} {
		t.Errorf("tip encoded to %v; expected [100 200 0]", enc[1])
	}
}

func TestEncodeHierarchy(t *testing.T) {
	bones := []scene.Bone{
		{Name: "root", Children: []string{"left", "right"}, Parent: scene.BoneNone},
		{Name: "left", Parent: 0},
		{Name: "right", Children: []string{"tip"}, Parent: 0},
		{Name: "tip", Parent: 2},
	}

	rows, size, err := EncodeHierarchy(bones)
	if err != nil {
		t.Fatal(err)
	}

	expected := [][]int{{2, 1, 2}, {0}, {1, 3}, {0}}
	if len(rows) != len(expected) {
		t.Fatalf("expected %d rows, got %d", len(expected), len(rows))
	}
	for i := range rows {
		if len(rows[i]) != len(expected[i]) {
			t.Errorf("row %d = %v; expected %v", i, rows[i], expected[i])
			continue
		}
		for j := range rows[i] {
			if rows[i][j] != expected[i][j] {
				t.Errorf("row %d = %v; expected %v", i, rows[i], expected[i])
				break
			}
		}
	}

	// Declared size is 2+childCount per bone.
	if size != 4+3+2+2 {
		t.Errorf("declared size %d; expected 11", size)
	}
}

func TestEncodeHierarchyUnresolvableChild(t *testing.T) {
	bones := []scene.Bone{
		{Name: "root", Children: []string{"ghost"}, Parent: scene.BoneNone},
	}
	if _, _, err := EncodeHierarchy(bones); !errors.Is(err, ErrUnresolvableChild) {
		t.Errorf("expected ErrUnresolvableChild, got %v", err)
	}
}
