package utils

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/vgltools/vglbake/config"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ToExportName converts an object name to a C-friendly identifier by
// replacing dots and whitespace with underscores.
func ToExportName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
}

// HeaderGuardName builds the include guard identifier from the output
// file name: "model.hpp" => "__model_hpp__".
func HeaderGuardName(filename string) string {
	base := strings.ReplaceAll(filepath.Base(filename), ".", "_")
	return "__" + strings.ToLower(base) + "__"
}

// EncodeText converts generated header text to the configured output
// charmap. Runes without a mapping are substituted, never an error.
func EncodeText(s string) []byte {
	enc := encoding.ReplaceUnsupported(config.GetEncoding().NewEncoder())
	bs, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		panic(err)
	}
	return bs
}
