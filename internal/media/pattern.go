package media

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	patternWidth  = 320
	patternHeight = 240
	patternFPS    = 15
)

var patternColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"gray":    {128, 128, 128, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
}

// Bar order of the classic 75% colour bars, at full intensity.
var barColors = []string{"white", "yellow", "cyan", "green", "magenta", "red", "blue"}

func init() {
	RegisterSourceType("pattern", func(spec Spec) (Source, error) {
		return NewPatternSource(spec.Path)
	})
}

// PatternSource generates a synthetic picture at a fixed rate. It stands in for a
// camera in demos and tests. Its path is "<name>[@fps]" where name is a colour,
// "#rrggbb", or "bars".
type PatternSource struct {
	img      image.Image
	interval time.Duration
	loop     *Loop
}

func NewPatternSource(path string) (*PatternSource, error) {
	name, fps := path, patternFPS
	if i := strings.LastIndexByte(path, '@'); i >= 0 {
		n, err := strconv.Atoi(path[i+1:])
		if err != nil || n <= 0 {
			return nil, errors.Errorf("invalid pattern rate %q", path[i+1:])
		}
		name, fps = path[:i], n
	}

	img, err := patternImage(name)
	if err != nil {
		return nil, err
	}
	return &PatternSource{
		img:      img,
		interval: time.Second / time.Duration(fps),
	}, nil
}

func patternImage(name string) (image.Image, error) {
	bounds := image.Rect(0, 0, patternWidth, patternHeight)
	img := image.NewRGBA(bounds)

	if name == "bars" {
		w := patternWidth / len(barColors)
		for i, c := range barColors {
			r := image.Rect(i*w, 0, (i+1)*w, patternHeight)
			if i == len(barColors)-1 {
				r.Max.X = patternWidth
			}
			draw.Draw(img, r, image.NewUniform(patternColors[c]), image.Point{}, draw.Src)
		}
		return img, nil
	}

	c, err := parseColor(name)
	if err != nil {
		return nil, err
	}
	draw.Draw(img, bounds, image.NewUniform(c), image.Point{}, draw.Src)
	return img, nil
}

func parseColor(name string) (color.RGBA, error) {
	if c, ok := patternColors[strings.ToLower(name)]; ok {
		return c, nil
	}
	if len(name) == 7 && name[0] == '#' {
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err == nil {
			return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
		}
	}
	return color.RGBA{}, errors.Errorf("unknown pattern %q", name)
}

func (s *PatternSource) Start(buf *Buffer) error {
	s.loop = NewLoop("pattern", func(quit <-chan struct{}) error {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		buf.Put(s.img)
		for {
			select {
			case <-quit:
				return nil
			case <-ticker.C:
				buf.Put(s.img)
			}
		}
	})
	return s.loop.Start()
}

func (s *PatternSource) Close() error {
	if s.loop == nil {
		return nil
	}
	return s.loop.Stop()
}
