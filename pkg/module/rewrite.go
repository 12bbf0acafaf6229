package module

import (
	"regexp"
	"strings"
)

// chunkImportRe matches the relative import specifiers the bundler emits for
// split chunks: "./chunk-<hash>.js", "../chunks/chunk.<hash>.mjs" and the
// like. Only this naming convention is rewritten; code loaded through
// inline-data execution cannot resolve relative imports, so anything
// differently shaped will fail to resolve there.
var chunkImportRe = regexp.MustCompile(`(["'])(\.{1,2}/(?:chunks/)?chunk[-.][\w.-]+\.m?js)(["'])`)

// RewriteImports rewrites relative intra-bundle chunk imports inside
// serialized module source to absolute references rooted at origin.
func RewriteImports(source []byte, origin string) []byte {
	origin = strings.TrimSuffix(origin, "/")
	return chunkImportRe.ReplaceAllFunc(source, func(match []byte) []byte {
		sub := chunkImportRe.FindSubmatch(match)
		spec := string(sub[2])
		for strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
			spec = strings.TrimPrefix(spec, "./")
			spec = strings.TrimPrefix(spec, "../")
		}
		var b strings.Builder
		b.Write(sub[1])
		b.WriteString(origin)
		b.WriteString("/")
		b.WriteString(spec)
		b.Write(sub[3])
		return []byte(b.String())
	})
}
