package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const envVar = "LOGLEVEL"

type tagLevel struct {
	tag   string
	level Level
}

var (
	tagLevels []tagLevel

	// envDefault is true when LOGLEVEL carried a bare default directive, which takes
	// precedence over SetDefaultLevel.
	envDefault bool

	configMu sync.Mutex
)

func init() {
	parseDirectives(os.Getenv(envVar))
}

// Parse comma-separated "tag=level" directives. If "tag=" is absent, the level is
// used as the default.
func parseDirectives(s string) {
	for _, d := range strings.Split(s, ",") {
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		level, err := ParseLevel(v[len(v)-1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid %s directive '%s': %s\n", envVar, d, err)
			continue
		}
		if len(v) == 1 {
			defaultLevel = level
			envDefault = true
		} else {
			tagLevels = append(tagLevels, tagLevel{v[0], level})
		}
	}
}

// SetDefaultLevel changes the level of DefaultLogger, unless LOGLEVEL already set a
// default. Loggers with a pinned level are unaffected.
func SetDefaultLevel(level Level) {
	configMu.Lock()
	defer configMu.Unlock()

	if envDefault {
		return
	}
	defaultLevel = level
}

func determineLevel(tag string, fallback Level) Level {
	configMu.Lock()
	defer configMu.Unlock()

	for _, e := range tagLevels {
		if e.tag == tag {
			return e.level
		}
	}
	return fallback
}
