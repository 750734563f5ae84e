// Package armor implements idempotent patching of tool-owned regions
// inside otherwise user-owned configuration files. A region ("armor") is
// delimited by a pair of unique literal marker lines; everything outside
// the markers is preserved byte for byte.
package armor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/offspot/runtime-config/internal/logging"
)

// CorruptError reports an unusable armored region: a marker missing,
// a marker appearing twice, or the pair out of order. This indicates
// external tampering or a prior tool bug; the file is never modified
// and no repair is guessed.
type CorruptError struct {
	Path      string
	Missing   string
	Duplicate string
}

func (e *CorruptError) Error() string {
	switch {
	case e.Duplicate != "":
		return fmt.Sprintf("corrupt armor in %s: duplicate marker %q", e.Path, e.Duplicate)
	case e.Missing != "":
		return fmt.Sprintf("corrupt armor in %s: missing marker %q", e.Path, e.Missing)
	}
	return fmt.Sprintf("corrupt armor in %s: markers out of order", e.Path)
}

// Block identifies a named armored region inside a target file.
type Block struct {
	Path  string
	Start string
	End   string
}

// Options tunes Apply for specific target files.
type Options struct {
	// EnsureInterface, when non-empty, synthesizes an
	// "interface <name>" scoping line before a freshly appended block
	// if the file declares no interface yet (dhcpcd.conf needs the
	// block to apply to a specific interface).
	EnsureInterface string
	// Mode is the permission for a newly created file. Zero means 0644.
	Mode os.FileMode
}

// Apply inserts or replaces the armored region so that it contains
// exactly body. Re-applying with the same body is a byte-level no-op;
// content outside the markers is never touched. The file is created if
// absent and always rewritten atomically (temp file + rename) so a
// concurrent reader observes either the old or the new content.
func (b Block) Apply(body string) error {
	return b.ApplyWith(body, Options{})
}

// ApplyWith is Apply with explicit Options.
func (b Block) ApplyWith(body string, opts Options) error {
	raw, err := os.ReadFile(b.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", b.Path, err)
	}
	existing := string(raw)

	lines := splitLines(existing)

	startIdx, startCount := findMarker(lines, b.Start)
	endIdx, endCount := findMarker(lines, b.End)
	if startCount > 1 {
		return &CorruptError{Path: b.Path, Duplicate: b.Start}
	}
	if endCount > 1 {
		return &CorruptError{Path: b.Path, Duplicate: b.End}
	}

	region := append([]string{b.Start}, splitLines(body)...)
	region = append(region, b.End)

	var updated []string
	switch {
	case startCount == 1 && endCount == 1:
		if startIdx > endIdx {
			return &CorruptError{Path: b.Path}
		}
		updated = append(updated, lines[:startIdx]...)
		updated = append(updated, region...)
		updated = append(updated, lines[endIdx+1:]...)
	case startCount == 0 && endCount == 0:
		updated = append(updated, lines...)
		if opts.EnsureInterface != "" && !hasInterfaceLine(lines) {
			updated = append(updated, "interface "+opts.EnsureInterface)
		}
		updated = append(updated, region...)
	case startCount == 1:
		return &CorruptError{Path: b.Path, Missing: b.End}
	default:
		return &CorruptError{Path: b.Path, Missing: b.Start}
	}

	content := strings.Join(updated, "\n") + "\n"
	if content == existing {
		logging.Debug("armor unchanged", "path", b.Path)
		return nil
	}

	if logging.Default().DebugEnabled() {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(existing),
			B:        difflib.SplitLines(content),
			FromFile: b.Path,
			ToFile:   b.Path + " (patched)",
			Context:  2,
		})
		logging.Debug("patching armor", "path", b.Path, "diff", "\n"+diff)
	}

	return writeAtomic(b.Path, content, opts.Mode)
}

// splitLines breaks content into lines without a trailing empty element
// for the final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func findMarker(lines []string, marker string) (idx, count int) {
	idx = -1
	for i, line := range lines {
		if line == marker {
			if idx == -1 {
				idx = i
			}
			count++
		}
	}
	return idx, count
}

// hasInterfaceLine reports whether any line's first field is
// "interface" (dhcpcd's per-interface scoping directive).
func hasInterfaceLine(lines []string) bool {
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "interface" {
			return true
		}
	}
	return false
}

func writeAtomic(path, content string, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", path, err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), mode); err != nil {
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// WriteFile replaces the whole file content atomically. Used for files
// the tool owns entirely (hostapd.conf, rules files) where no armor is
// needed.
func WriteFile(path, content string) error {
	return writeAtomic(path, content, 0)
}
