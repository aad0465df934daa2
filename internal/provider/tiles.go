package provider

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// TemplateURL expands {s}, {x}, {y} and {z} in tmpl, rotating through subdomains.
func TemplateURL(tmpl string, subdomains []string) func(maptile.Tile) string {
	next := 0
	return func(t maptile.Tile) string {
		r := strings.NewReplacer(
			"{x}", strconv.FormatUint(uint64(t.X), 10),
			"{y}", strconv.FormatUint(uint64(t.Y), 10),
			"{z}", strconv.FormatUint(uint64(t.Z), 10),
		)
		u := r.Replace(tmpl)
		if len(subdomains) > 0 {
			u = strings.ReplaceAll(u, "{s}", subdomains[next%len(subdomains)])
			next++
		}
		return u
	}
}
