// Package tmpl implements the [[NAME]] placeholder templates used to
// assemble generated header text.
package tmpl

import (
	"log"
	"regexp"
	"sort"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

type Template struct {
	content string
}

func New(content string) *Template {
	return &Template{content: content}
}

// Format substitutes every [[KEY]] placeholder (whitespace tolerated around
// the key) with its value, inserted literally. Placeholders left without a
// substitution are deleted from the output; that is permissive by contract,
// but the unmatched names are logged to catch template typos.
func (t *Template) Format(substitutions map[string]string) string {
	ret := t.content

	keys := make([]string, 0, len(substitutions))
	for k := range substitutions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		re := regexp.MustCompile(`\[\[\s*` + regexp.QuoteMeta(k) + `\s*\]\]`)
		if !re.MatchString(ret) {
			log.Printf("[tmpl] WARNING: substitution %q has no matches", k)
			continue
		}
		ret = re.ReplaceAllLiteralString(ret, substitutions[k])
	}

	if unmatched := placeholderRe.FindAllStringSubmatch(ret, -1); unmatched != nil {
		seen := make(map[string]struct{})
		names := make([]string, 0, len(unmatched))
		for _, m := range unmatched {
			if _, ok := seen[m[1]]; !ok {
				seen[m[1]] = struct{}{}
				names = append(names, m[1])
			}
		}
		sort.Strings(names)
		log.Printf("[tmpl] substitutions not matched: %s (%d)", strings.Join(names, ", "), len(unmatched))
		ret = placeholderRe.ReplaceAllLiteralString(ret, "")
	}

	return ret
}

func (t *Template) String() string {
	return t.content
}
