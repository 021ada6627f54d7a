package composite

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

var scalers = map[string]draw.Scaler{
	"nearest":         draw.NearestNeighbor,
	"approx-bilinear": draw.ApproxBiLinear,
	"bilinear":        draw.BiLinear,
	"catmull-rom":     draw.CatmullRom,
}

// DefaultInterpolation names the scaler used when none is configured.
const DefaultInterpolation = "bilinear"

// ParseInterpolation returns the scaler registered under name.
func ParseInterpolation(name string) (draw.Scaler, error) {
	if name == "" {
		name = DefaultInterpolation
	}
	if s, ok := scalers[strings.ToLower(name)]; ok {
		return s, nil
	}
	var names []string
	for n := range scalers {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, errors.Errorf("unknown interpolation %q (want one of %s)", name, strings.Join(names, ", "))
}
