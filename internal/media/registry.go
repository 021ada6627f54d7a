package media

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// A Spec identifies a source: a source tag and a tag-specific path, written
//
//	spec = tag + ":" + path
//
// URL-style specs ("http://host/x") keep the full string in Raw.
type Spec struct {
	Tag  string
	Path string
	Raw  string
}

func ParseSpec(s string) Spec {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	spec := Spec{Tag: parts[0], Raw: s}
	if len(parts) == 2 {
		spec.Path = parts[1]
	}
	return spec
}

func (s Spec) String() string {
	return s.Raw
}

// A function used to open a specific source type.
type OpenFunc func(spec Spec) (Source, error)

var (
	registry   = map[string]OpenFunc{}
	registryMu sync.RWMutex
)

// Register a source type, identified by its source tag. Sources of this type will
// be opened with the given function. A later registration replaces an earlier one.
func RegisterSourceType(tag string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = open
}

// SourceTypes lists the registered tags in sorted order.
func SourceTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var tags []string
	for t := range registry {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Open a source from its spec string.
func OpenSource(s string) (Source, error) {
	spec := ParseSpec(s)
	log.Debug("Registered source types: %v", SourceTypes())

	registryMu.RLock()
	open, found := registry[spec.Tag]
	registryMu.RUnlock()

	if !found {
		return nil, errors.Errorf("source type '%s' not registered (spec %q)", spec.Tag, spec.Raw)
	}
	src, err := open(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "open source %q", spec.Raw)
	}
	return src, nil
}
