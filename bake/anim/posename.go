package anim

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/utils"
)

var poseNameRe = regexp.MustCompile(`^\s*(\S+)\s+([\d.]+)\s*$`)

// ParsePoseName splits a pose-marker style action name "<base> <time>"
// into its base name and timestamp (in time units). Names without
// whitespace are plain action names and pass through untouched. A name
// with whitespace that still does not parse is ambiguous: it falls back
// to the whole name at time 0, with a diagnostic.
func ParsePoseName(name string) (base string, time float64, marker bool) {
	if m := poseNameRe.FindStringSubmatch(name); m != nil {
		t, err := strconv.ParseFloat(m[2], 64)
		if err == nil {
			return m[1], t, true
		}
	}
	if strings.ContainsAny(name, " \t") {
		log.Printf("[anim] WARNING: cannot deduce timestamp from pose name %q, using %f", name, 0.0)
	}
	return name, 0.0, false
}

// SamplePose emits a single frame record at the given timestamp (already
// in time units, not frames) from the first keyframe of the cursor's
// action. Used for pose-marker sequences, where each member action is one
// snapshot and its timestamp comes from the name, not the playhead.
func SamplePose(arm *scene.Armature, cursor scene.PoseCursor, exportScale float64, time float64) ([][]int, int) {
	if !cursor.HasKeyframes() {
		return [][]int{}, 0
	}
	for cursor.StepBack() {
	}

	s := &Sampler{arm: arm, cursor: cursor, exportScale: exportScale, state: Sampling}

	rows := make([][]int, 0, 1+len(arm.Bones))
	rows = append(rows, []int{int(utils.ToFixed8x8(time))})
	size := 1
	for i := range arm.Bones {
		row := s.sampleBone(i)
		rows = append(rows, row)
		size += len(row)
	}
	s.state = Done
	return rows, size
}
