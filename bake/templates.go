package bake

import (
	"github.com/vgltools/vglbake/tmpl"
)

// The generated document layout. Placeholder coverage differs per export
// (weights and armature fragments are optional), which is why unmatched
// placeholders delete instead of erroring.

var headerTemplate = tmpl.New(`#ifndef [[HEADER_NAME]]
#define [[HEADER_NAME]]

[[MODEL_DATA]]

#endif`)

var meshTemplate = tmpl.New(`const unsigned g_vertices_[[MODEL_NAME]]_size = [[VERTEX_DATA_SIZE]];

const [[VERTEX_DATA_TYPE]] g_vertices_[[MODEL_NAME]][] =
{
[[VERTEX_DATA]]
};

const unsigned g_indices_[[MODEL_NAME]]_size = [[INDEX_DATA_SIZE]];

const [[INDEX_DATA_TYPE]] g_indices_[[MODEL_NAME]][] =
{
[[INDEX_DATA]]
};`)

var weightsTemplate = tmpl.New(`const [[WEIGHT_DATA_TYPE]] g_weights_[[MODEL_NAME]][] =
{
[[WEIGHT_DATA]]
};`)

var armatureTemplate = tmpl.New(`const unsigned g_bones_[[MODEL_NAME]]_size = [[BONE_DATA_SIZE]];

const [[BONE_DATA_TYPE]] g_bones_[[MODEL_NAME]][] =
{
[[BONE_DATA]]
};

const unsigned g_armature_[[MODEL_NAME]]_size = [[ARMATURE_DATA_SIZE]];

const [[ARMATURE_DATA_TYPE]] g_armature_[[MODEL_NAME]][] =
{
[[ARMATURE_DATA]]
};`)

var animTemplate = tmpl.New(`const unsigned g_animation_[[MODEL_NAME]]_[[ANIM_NAME]]_size = [[ANIM_DATA_SIZE]];

const [[ANIM_DATA_TYPE]] g_animation_[[MODEL_NAME]]_[[ANIM_NAME]][] =
{
[[ANIM_DATA]]
};`)
