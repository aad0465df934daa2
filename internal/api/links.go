package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/view>; rel="view"`,
		`</api/v1/layers>; rel="layers"`,
		`</api/v1/events>; rel="events"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/view>; rel="view"`,
	},
	"/api/v1/view": {
		`</api/v1/view/zoom-in>; rel="zoom-in"`,
		`</api/v1/view/zoom-out>; rel="zoom-out"`,
		`</api/v1/view/initial-extent>; rel="initial-extent"`,
		`</api/v1/events>; rel="events"`,
	},
	"/api/v1/layers": {
		`</api/v1/attribution>; rel="attribution"`,
		`</api/v1/base-layer>; rel="base-layer"`,
	},
	"/api/v1/layers/{name}": {
		`</api/v1/layers>; rel="collection"`,
	},
	"/api/v1/layers/{name}/visibility": {
		`</api/v1/layers>; rel="collection"`,
	},
	"/api/v1/attribution": {
		`</api/v1/layers>; rel="layers"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		return v, nil
	}
}
