package bake

import (
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/vgltools/vglbake/bake/anim"
	"github.com/vgltools/vglbake/bake/armature"
	"github.com/vgltools/vglbake/bake/mesh"
	"github.com/vgltools/vglbake/bake/skin"
	"github.com/vgltools/vglbake/config"
	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/utils"
)

var (
	ErrNoExportableMesh = errors.New("could not find mesh to export")
	ErrDegenerateMesh   = errors.New("mesh has no spatial extent")
)

// Result is one fully assembled export. Text is complete before anything
// touches the output file, so a failed export never leaves partial output.
type Result struct {
	ModelName string  `json:"model"`
	Guard     string  `json:"guard"`
	Blocks    []Block `json:"blocks"`
	Text      string  `json:"-"`
}

// HeaderFileName derives the default output file name for an export:
// the sanitized name of the selected (or first) mesh plus ".h". Shared
// by the CLI and the server so the default cannot drift between them.
func HeaderFileName(p scene.Provider, selector string) string {
	name := selector
	if name == "" {
		if meshes := p.Meshes(); len(meshes) > 0 {
			name = meshes[0].Name
		} else {
			name = "model"
		}
	}
	return utils.ToExportName(name) + ".h"
}

func selectMesh(p scene.Provider, name string) *scene.Mesh {
	for _, m := range p.Meshes() {
		if name == "" || m.Name == name {
			return m
		}
	}
	return nil
}

func selectArmature(p scene.Provider, name string) *scene.Armature {
	for _, a := range p.Armatures() {
		if name == "" || a.Name == name {
			return a
		}
	}
	return nil
}

// ExportHeader runs one export: selects the mesh (and armature, if any),
// derives the shared export scale, runs every encoder and assembles the
// final header text. filename only names the include guard; writing is
// the caller's concern.
func ExportHeader(p scene.Provider, filename string, settings config.Settings) (*Result, error) {
	msh := selectMesh(p, settings.Mesh)
	if msh == nil {
		return nil, errors.Wrapf(ErrNoExportableMesh, "selector %q", settings.Mesh)
	}
	modelName := utils.ToExportName(msh.Name)
	log.Printf("[bake] selected mesh for export: %q => %q", msh.Name, modelName)

	// Everything shares one scale so armature and animation data stay in
	// range alongside the mesh. A zero extent would make that scale
	// infinite, so it aborts before any encoder sees it.
	maxAbs := mesh.MaxAbsScaledCoord(msh.Vertices, msh.Scale)
	if maxAbs == 0 {
		return nil, errors.Wrapf(ErrDegenerateMesh, "mesh %q", msh.Name)
	}
	exportScale := mesh.ComputeExportScale(maxAbs, settings.DiscardBits)

	arm := selectArmature(p, settings.Armature)

	ret := &Result{
		ModelName: modelName,
		Guard:     utils.HeaderGuardName(filename),
	}

	var fragments []string
	var groupMap skin.GroupMap

	if arm != nil {
		unit := mgl32.Vec3{1, 1, 1}
		if msh.Scale != unit || arm.Scale != unit {
			log.Printf("[bake] WARNING: suspicious mesh/armature scales: %v ; %v", msh.Scale, arm.Scale)
		}
		log.Printf("[bake] selected armature for export: %q", arm.Name)

		frag, err := ret.armatureFragment(arm, exportScale)
		if err != nil {
			return nil, errors.Wrapf(err, "armature %q", arm.Name)
		}
		fragments = append(fragments, frag)

		animFrags, err := ret.animationFragments(p, arm, exportScale)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, animFrags...)

		groupMap, err = skin.NewGroupMap(msh.Groups, arm.Bones)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %q against armature %q", msh.Name, arm.Name)
		}
	}

	meshFrag, err := ret.meshFragment(msh, groupMap, exportScale, settings.ExportColor)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh %q", msh.Name)
	}
	fragments = append(fragments, meshFrag)

	ret.Text = headerTemplate.Format(map[string]string{
		"HEADER_NAME": ret.Guard,
		"MODEL_DATA":  strings.Join(fragments, "\n\n"),
	})
	return ret, nil
}

func (r *Result) addBlock(name, dataType string, size int, rows [][]int) {
	r.Blocks = append(r.Blocks, Block{Name: name, Type: dataType, Size: size, Rows: rows})
}

func (r *Result) meshFragment(msh *scene.Mesh, groupMap skin.GroupMap, exportScale float64, exportColor bool) (string, error) {
	vrows := rowsFromTriples(mesh.EncodeVertices(msh.Vertices, msh.Scale, exportScale))

	tris := mesh.Triangles(msh, exportColor)
	irows := make([][]int, len(tris))
	for i, tri := range tris {
		row := []int{tri.Indices[0], tri.Indices[1], tri.Indices[2]}
		if tri.Color != nil {
			row = append(row, int(tri.Color[0]), int(tri.Color[1]), int(tri.Color[2]))
		}
		irows[i] = row
	}
	indexType := mesh.IndexType(len(msh.Vertices))

	ret := meshTemplate.Format(map[string]string{
		"MODEL_NAME":       r.ModelName,
		"VERTEX_DATA":      formatRows(vrows, "int16_t"),
		"VERTEX_DATA_TYPE": "int16_t",
		"VERTEX_DATA_SIZE": strconv.Itoa(len(vrows)),
		"INDEX_DATA":       formatRows(irows, indexType),
		"INDEX_DATA_TYPE":  indexType,
		"INDEX_DATA_SIZE":  strconv.Itoa(len(irows)),
	})
	r.addBlock("vertices_"+r.ModelName, "int16_t", len(vrows), vrows)
	r.addBlock("indices_"+r.ModelName, indexType, len(irows), irows)

	if len(groupMap) == 0 {
		return ret, nil
	}

	wrows := make([][]int, len(msh.Vertices))
	for i := range msh.Vertices {
		rec, err := skin.NormalizeWeights(msh.Vertices[i].Influences, groupMap)
		if err != nil {
			return "", errors.Wrapf(err, "vertex %d", i)
		}
		wrows[i] = []int{
			int(rec.Weights[0]), int(rec.Weights[1]), int(rec.Weights[2]),
			rec.Bones[0], rec.Bones[1], rec.Bones[2],
		}
	}
	if len(wrows) == 0 {
		return ret, nil
	}

	ret += "\n\n" + weightsTemplate.Format(map[string]string{
		"MODEL_NAME":       r.ModelName,
		"WEIGHT_DATA":      formatRows(wrows, "uint8_t"),
		"WEIGHT_DATA_TYPE": "uint8_t",
	})
	r.addBlock("weights_"+r.ModelName, "uint8_t", len(wrows), wrows)
	return ret, nil
}

func (r *Result) armatureFragment(arm *scene.Armature, exportScale float64) (string, error) {
	brows := rowsFromTriples(armature.EncodeBonePositions(arm, exportScale))

	arows, asize, err := armature.EncodeHierarchy(arm.Bones)
	if err != nil {
		return "", err
	}

	ret := armatureTemplate.Format(map[string]string{
		"MODEL_NAME":         r.ModelName,
		"BONE_DATA":          formatRows(brows, "int16_t"),
		"BONE_DATA_TYPE":     "int16_t",
		"BONE_DATA_SIZE":     strconv.Itoa(len(brows)),
		"ARMATURE_DATA":      formatRows(arows, "uint8_t"),
		"ARMATURE_DATA_TYPE": "uint8_t",
		"ARMATURE_DATA_SIZE": strconv.Itoa(asize),
	})
	r.addBlock("bones_"+r.ModelName, "int16_t", len(brows), brows)
	r.addBlock("armature_"+r.ModelName, "uint8_t", asize, arows)
	return ret, nil
}

type animMember struct {
	action *scene.Action
	time   float64
	marker bool
}

type animGroup struct {
	name    string
	members []animMember
}

// animationFragments emits one block per plain action and one merged
// block per pose-marker sequence (actions named "<base> <time>" sharing
// a base, ordered by timestamp).
func (r *Result) animationFragments(p scene.Provider, arm *scene.Armature, exportScale float64) ([]string, error) {
	var groups []*animGroup
	index := make(map[string]*animGroup)

	for _, act := range p.Actions() {
		base, t, marker := anim.ParsePoseName(act.Name)
		key := act.Name
		if marker {
			key = base
		}
		g, ok := index[key]
		if !ok {
			g = &animGroup{name: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, animMember{action: act, time: t, marker: marker})
	}

	var fragments []string
	for _, g := range groups {
		rows, size, err := r.sampleGroup(p, arm, g, exportScale)
		if err != nil {
			return nil, err
		}

		animName := utils.ToExportName(g.name)
		fragments = append(fragments, animTemplate.Format(map[string]string{
			"MODEL_NAME":     r.ModelName,
			"ANIM_NAME":      animName,
			"ANIM_DATA":      formatRows(rows, "int16_t"),
			"ANIM_DATA_TYPE": "int16_t",
			"ANIM_DATA_SIZE": strconv.Itoa(size),
		}))
		r.addBlock("animation_"+r.ModelName+"_"+animName, "int16_t", size, rows)
	}
	return fragments, nil
}

func (r *Result) sampleGroup(p scene.Provider, arm *scene.Armature, g *animGroup, exportScale float64) ([][]int, int, error) {
	markersOnly := true
	for _, m := range g.members {
		if !m.marker {
			markersOnly = false
			break
		}
	}

	if markersOnly && len(g.members) > 0 {
		// Pose sequence: every member is one snapshot, ordered by the
		// timestamp carried in its name.
		members := make([]animMember, len(g.members))
		copy(members, g.members)
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].time < members[j].time
		})

		rows := [][]int{}
		size := 0
		for _, m := range members {
			cursor, err := p.Cursor(arm, m.action)
			if err != nil {
				return nil, 0, errors.Wrapf(err, "action %q", m.action.Name)
			}
			mrows, msize := anim.SamplePose(arm, cursor, exportScale, m.time)
			rows = append(rows, mrows...)
			size += msize
		}
		return rows, size, nil
	}

	rows := [][]int{}
	size := 0
	for _, m := range g.members {
		cursor, err := p.Cursor(arm, m.action)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "action %q", m.action.Name)
		}
		mrows, msize := anim.NewSampler(arm, cursor, exportScale).Run()
		rows = append(rows, mrows...)
		size += msize
	}
	return rows, size, nil
}
