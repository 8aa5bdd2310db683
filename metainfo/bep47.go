package metainfo

import "strings"

// See BEP 47. Attribute characters that can appear in a file's "attr" field.
const (
	AttrPadding    = 'p'
	AttrExecutable = 'x'
	AttrHidden     = 'h'
	AttrSymlink    = 'l'
)

func hasAttr(attr string, a rune) bool {
	return strings.ContainsRune(attr, a)
}
