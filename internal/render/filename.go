package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	markdownSuffix = regexp.MustCompile(`(?i)\.md$`)
	nonWordRun     = regexp.MustCompile(`[^\w]+`)
	camelBoundary  = regexp.MustCompile(`(\p{Ll})(\p{Lu})`)
)

const fallbackStem = "untitled"

// DefaultTransformFilename derives a filename stem: a trailing ".md" is
// dropped, "readme" in any case becomes README, runs of non-word characters
// become "_", camel-case boundaries are split with "_" and the result is
// lower-cased.
func DefaultTransformFilename(name string) string {
	name = markdownSuffix.ReplaceAllString(name, "")
	if strings.EqualFold(name, "readme") {
		return "README"
	}
	name = nonWordRun.ReplaceAllString(name, "_")
	name = camelBoundary.ReplaceAllString(name, "${1}_${2}")
	return strings.ToLower(name)
}

// SlugTransformFilename derives stems with the slug normalizer, keeping the
// README special case and falling back to DefaultTransformFilename when the
// name has no sluggable characters.
func SlugTransformFilename(name string) string {
	name = markdownSuffix.ReplaceAllString(name, "")
	if strings.EqualFold(name, "readme") {
		return "README"
	}
	normalized, err := slug.Normalize(name)
	if err != nil || normalized == "" {
		return DefaultTransformFilename(name)
	}
	return normalized
}

// nameRegistry hands out unique names within one render call.
type nameRegistry struct {
	used map[string]struct{}
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{used: map[string]struct{}{}}
}

// claim returns name, or the first free name_N for N >= 2, and marks it used.
func (r *nameRegistry) claim(name string) (string, bool) {
	collided := false
	if _, taken := r.used[name]; taken {
		collided = true
		for i := 2; ; i++ {
			variant := name + "_" + strconv.Itoa(i)
			if _, taken := r.used[variant]; !taken {
				name = variant
				break
			}
		}
	}
	r.used[name] = struct{}{}
	return name, collided
}
