package main

import (
	"flag"
	"io/ioutil"
	"log"

	"github.com/vgltools/vglbake/bake"
	"github.com/vgltools/vglbake/config"
	"github.com/vgltools/vglbake/scene/gltfscene"
	"github.com/vgltools/vglbake/utils"
	"github.com/vgltools/vglbake/web"
)

func main() {
	var addr, out, cfgpath, meshName, armName, encName string
	var discardBits int
	var exportColor, dumpScene, listEncodings bool
	flag.StringVar(&addr, "i", "", "Address of server; empty runs a one-shot export")
	flag.StringVar(&out, "o", "", "Output header file, default <model>.h")
	flag.StringVar(&cfgpath, "config", "", "Path to yaml settings file")
	flag.StringVar(&meshName, "mesh", "", "Mesh name override, default is the first mesh")
	flag.StringVar(&armName, "armature", "", "Armature name override, default is the first armature")
	flag.IntVar(&discardBits, "discardbits", -1, "Precision bits reserved as pose headroom, -1 keeps config value")
	flag.BoolVar(&exportColor, "color", false, "Emit per-triangle diffuse colors")
	flag.StringVar(&encName, "encoding", "", "Output text encoding, see -listencodings")
	flag.BoolVar(&dumpScene, "dumpscene", false, "Dump the loaded scene and exit")
	flag.BoolVar(&listEncodings, "listencodings", false, "Print supported output encodings")
	flag.Parse()

	if listEncodings {
		for _, name := range config.ListEncodings() {
			log.Println(name)
		}
		return
	}

	if cfgpath != "" {
		if err := config.LoadSettings(cfgpath); err != nil {
			log.Fatal(err)
		}
	}

	settings := config.GetSettings()
	if meshName != "" {
		settings.Mesh = meshName
	}
	if armName != "" {
		settings.Armature = armName
	}
	if discardBits >= 0 {
		settings.DiscardBits = discardBits
	}
	if exportColor {
		settings.ExportColor = true
	}
	if encName != "" {
		if err := config.SetEncoding(encName); err != nil {
			log.Fatal(err)
		}
		settings.Encoding = encName
	}
	if err := config.Validate(settings); err != nil {
		log.Fatal(err)
	}
	config.SetSettings(settings)

	input := flag.Arg(0)
	if input == "" {
		flag.PrintDefaults()
		return
	}

	s, err := gltfscene.Open(input)
	if err != nil {
		log.Fatal(err)
	}

	if dumpScene {
		for _, m := range s.Meshes() {
			utils.LogDump(m)
		}
		for _, a := range s.Armatures() {
			utils.LogDump(a)
		}
		for _, a := range s.Actions() {
			utils.LogDump(a)
		}
		return
	}

	if addr != "" {
		if err := web.StartServer(addr, s); err != nil {
			log.Fatal(err)
		}
		return
	}

	filename := out
	if filename == "" {
		filename = bake.HeaderFileName(s, settings.Mesh)
	}

	ret, err := bake.ExportHeader(s, filename, settings)
	if err != nil {
		log.Fatal(err)
	}

	if err := ioutil.WriteFile(filename, utils.EncodeText(ret.Text), 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("[main] wrote %q: model %q, %d blocks", filename, ret.ModelName, len(ret.Blocks))
}
