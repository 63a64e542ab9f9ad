package web

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vgltools/vglbake/bake"
	"github.com/vgltools/vglbake/config"
	"github.com/vgltools/vglbake/scene"
	"github.com/vgltools/vglbake/status"
	"github.com/vgltools/vglbake/utils"
	"github.com/vgltools/vglbake/webutils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type sceneSummary struct {
	Meshes    []string `json:"meshes"`
	Armatures []string `json:"armatures"`
	Actions   []string `json:"actions"`
}

func (s *Server) summary() *sceneSummary {
	ret := &sceneSummary{
		Meshes:    []string{},
		Armatures: []string{},
		Actions:   []string{},
	}
	for _, m := range s.provider.Meshes() {
		ret.Meshes = append(ret.Meshes, m.Name)
	}
	for _, a := range s.provider.Armatures() {
		ret.Armatures = append(ret.Armatures, a.Name)
	}
	for _, a := range s.provider.Actions() {
		ret.Actions = append(ret.Actions, a.Name)
	}
	return ret
}

func (s *Server) HandlerSceneSummary(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, s.summary())
}

func (s *Server) HandlerSceneKind(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["kind"] {
	case "meshes":
		webutils.WriteJson(w, s.summary().Meshes)
	case "armatures":
		webutils.WriteJson(w, s.summary().Armatures)
	case "actions":
		webutils.WriteJson(w, s.summary().Actions)
	default:
		webutils.WriteError(w, errors.Errorf("unknown scene kind %q", mux.Vars(r)["kind"]))
	}
}

func (s *Server) HandlerSceneObject(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	name := mux.Vars(r)["name"]

	switch kind {
	case "meshes":
		for _, m := range s.provider.Meshes() {
			if m.Name == name {
				webutils.WriteJson(w, meshDetail(m))
				return
			}
		}
	case "armatures":
		for _, a := range s.provider.Armatures() {
			if a.Name == name {
				webutils.WriteJson(w, armatureDetail(a))
				return
			}
		}
	default:
		webutils.WriteError(w, errors.Errorf("unknown scene kind %q", kind))
		return
	}
	webutils.WriteError(w, errors.Errorf("no %v object %q", kind, name))
}

type meshInfo struct {
	Name      string   `json:"name"`
	Vertices  int      `json:"vertices"`
	Polygons  int      `json:"polygons"`
	Materials []string `json:"materials"`
	Groups    []string `json:"groups"`
}

func meshDetail(m *scene.Mesh) *meshInfo {
	ret := &meshInfo{
		Name:     m.Name,
		Vertices: len(m.Vertices),
		Polygons: len(m.Polygons),
		Groups:   m.Groups,
	}
	for _, mat := range m.Materials {
		ret.Materials = append(ret.Materials, mat.Name)
	}
	return ret
}

type armatureInfo struct {
	Name  string   `json:"name"`
	Bones []string `json:"bones"`
}

func armatureDetail(a *scene.Armature) *armatureInfo {
	ret := &armatureInfo{Name: a.Name}
	for i := range a.Bones {
		ret.Bones = append(ret.Bones, a.Bones[i].Name)
	}
	return ret
}

// export runs one serialized export against the live settings, with the
// optional model override from the route.
func (s *Server) export(r *http.Request) (*bake.Result, error) {
	s.exportMu.Lock()
	defer s.exportMu.Unlock()

	settings := config.GetSettings()
	if model := mux.Vars(r)["model"]; model != "" {
		settings.Mesh = model
	}

	filename := bake.HeaderFileName(s.provider, settings.Mesh)
	status.Info("Exporting %q", filename)

	ret, err := bake.ExportHeader(s.provider, filename, settings)
	if err != nil {
		status.Error("Export failed: %v", err)
		return nil, err
	}
	status.Progress(1.0, "Exported %q: %d blocks", filename, len(ret.Blocks))
	return ret, nil
}

func (s *Server) HandlerDumpHeader(w http.ResponseWriter, r *http.Request) {
	ret, err := s.export(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, bytes.NewReader(utils.EncodeText(ret.Text)), ret.ModelName+".h")
}

func (s *Server) HandlerExportJson(w http.ResponseWriter, r *http.Request) {
	ret, err := s.export(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJsonFile(w, ret, ret.ModelName)
}

// HandlerSettings reads the live settings on GET and replaces them on
// POST.
func (s *Server) HandlerSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		webutils.WriteJson(w, config.GetSettings())
		return
	}

	settings := config.GetSettings()
	if err := webutils.ReadJsonBody(r, &settings); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := config.Validate(settings); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if settings.Encoding != "" {
		if err := config.SetEncoding(settings.Encoding); err != nil {
			webutils.WriteError(w, err)
			return
		}
	}
	config.SetSettings(settings)
	webutils.WriteJson(w, settings)
}

func (s *Server) HandlerStatusWs(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	status.NewClient(conn)
}
