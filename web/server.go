// Package web serves the loaded scene and on-demand header exports over
// HTTP, with export progress streamed to websocket subscribers.
package web

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vgltools/vglbake/scene"
)

// Server owns the scene provider for the lifetime of the process. Export
// runs move animation playheads inside the provider, so they are
// serialized behind one mutex.
type Server struct {
	provider scene.Provider
	exportMu sync.Mutex
}

func StartServer(addr string, p scene.Provider) error {
	s := &Server{provider: p}

	r := mux.NewRouter()
	r.HandleFunc("/json/scene", s.HandlerSceneSummary)
	r.HandleFunc("/json/scene/{kind}", s.HandlerSceneKind)
	r.HandleFunc("/json/scene/{kind}/{name}", s.HandlerSceneObject)
	r.HandleFunc("/json/export", s.HandlerExportJson)
	r.HandleFunc("/json/export/{model}", s.HandlerExportJson)
	r.HandleFunc("/json/settings", s.HandlerSettings)
	r.HandleFunc("/dump/header", s.HandlerDumpHeader)
	r.HandleFunc("/dump/header/{model}", s.HandlerDumpHeader)
	r.HandleFunc("/ws/status", s.HandlerStatusWs)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
