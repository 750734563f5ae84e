package refdata

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// zoneinfoDirs are the usual locations of the system tz database, in the
// same order the time package probes them.
var zoneinfoDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
}

// ZoneIndex is an immutable set of IANA timezone names known to the host.
type ZoneIndex struct {
	names map[string]struct{}
}

// Zones walks the system zoneinfo database and indexes every zone name,
// the way `timedatectl list-timezones` enumerates them. Missing database
// yields an empty index; lookups then fail, which is the safe outcome on
// a box that cannot set timezones anyway.
func Zones() ZoneIndex {
	names := make(map[string]struct{})
	for _, dir := range zoneinfoDirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		root := dir
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			name, relErr := filepath.Rel(root, path)
			if relErr != nil || name == "." {
				return nil
			}
			// zone names start with an upper-case component; this skips
			// posix/, right/, leap-seconds.list and friends
			first := rune(name[0])
			if !unicode.IsUpper(first) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if strings.Contains(name, ".") {
				return nil
			}
			names[name] = struct{}{}
			return nil
		})
		if len(names) > 0 {
			break
		}
	}
	return ZoneIndex{names: names}
}

// ZonesFrom builds an index from an explicit name list (tests).
func ZonesFrom(names ...string) ZoneIndex {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return ZoneIndex{names: set}
}

// Has reports whether name is a known zone. Case-sensitive: the tz
// database is, and `Europe/paris` must not pass for `Europe/Paris`.
func (z ZoneIndex) Has(name string) bool {
	_, ok := z.names[name]
	return ok
}

// Len returns the number of indexed zones.
func (z ZoneIndex) Len() int {
	return len(z.names)
}
