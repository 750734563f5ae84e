package armor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	startMarker = "### config-network: start ###"
	endMarker   = "### config-network: stop ###"
)

func blockFor(t *testing.T, initial string) (Block, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dhcpcd.conf")
	if initial != "" {
		require.NoError(t, os.WriteFile(path, []byte(initial), 0o644))
	}
	return Block{Path: path, Start: startMarker, End: endMarker}, path
}

func read(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestApplyCreatesMissingFile(t *testing.T) {
	b, path := blockFor(t, "")

	require.NoError(t, b.Apply("static ip_address=192.168.5.1/24"))

	got := read(t, path)
	want := startMarker + "\nstatic ip_address=192.168.5.1/24\n" + endMarker + "\n"
	assert.Equal(t, want, got)
}

func TestApplyAppendsToExistingContent(t *testing.T) {
	b, path := blockFor(t, "# hand edited\nhostname\n")

	require.NoError(t, b.Apply("dhcp"))

	got := read(t, path)
	assert.True(t, strings.HasPrefix(got, "# hand edited\nhostname\n"), "existing content moved: %q", got)
	assert.Contains(t, got, startMarker+"\ndhcp\n"+endMarker+"\n")
}

func TestApplyIsIdempotent(t *testing.T) {
	b, path := blockFor(t, "# keep me\n")

	require.NoError(t, b.Apply("dhcp"))
	first := read(t, path)

	require.NoError(t, b.Apply("dhcp"))
	second := read(t, path)

	assert.Equal(t, first, second, "second application changed bytes")
}

func TestApplyReplacesOnlyRegion(t *testing.T) {
	before := "before-line-1\nbefore ### not a marker\n"
	after := "after-line-1\n# a comment mentioning start does not count\n"
	initial := before + startMarker + "\nold body line 1\nold body line 2\n" + endMarker + "\n" + after
	b, path := blockFor(t, initial)

	require.NoError(t, b.Apply("new body"))

	got := read(t, path)
	want := before + startMarker + "\nnew body\n" + endMarker + "\n" + after
	assert.Equal(t, want, got)
}

func TestApplyRegionIsolationWithHostileContent(t *testing.T) {
	// attacker-chosen content around the block must survive byte-identical
	before := "## " + startMarker + "\n\t\nweird \\ content $PATH\n"
	after := "trailing ### stuff\n\n"
	initial := before + startMarker + "\nbody\n" + endMarker + "\n" + after
	b, path := blockFor(t, initial)

	require.NoError(t, b.Apply("replaced"))

	got := read(t, path)
	require.True(t, strings.HasPrefix(got, before))
	require.True(t, strings.HasSuffix(got, after))
	assert.Contains(t, got, startMarker+"\nreplaced\n"+endMarker)
}

func TestApplyMultiLineBody(t *testing.T) {
	b, path := blockFor(t, "")

	body := "static ip_address=192.168.5.1/24\nstatic routers=192.168.5.200\nstatic domain_name_servers=192.168.5.200"
	require.NoError(t, b.Apply(body))
	require.NoError(t, b.Apply("dhcp"))

	got := read(t, path)
	assert.NotContains(t, got, "static ip_address")
	assert.Contains(t, got, startMarker+"\ndhcp\n"+endMarker)
}

func TestApplyMissingEndMarkerFails(t *testing.T) {
	initial := "content\n" + startMarker + "\nbody\n"
	b, path := blockFor(t, initial)

	err := b.Apply("new")
	var corrupt *CorruptError
	require.True(t, errors.As(err, &corrupt), "got %v", err)
	assert.Equal(t, endMarker, corrupt.Missing)
	assert.Equal(t, path, corrupt.Path)

	// file must not be modified
	assert.Equal(t, initial, read(t, path))
}

func TestApplyMissingStartMarkerFails(t *testing.T) {
	initial := "content\n" + endMarker + "\n"
	b, _ := blockFor(t, initial)

	err := b.Apply("new")
	var corrupt *CorruptError
	require.True(t, errors.As(err, &corrupt), "got %v", err)
	assert.Equal(t, startMarker, corrupt.Missing)
}

func TestApplyInvertedMarkersFail(t *testing.T) {
	initial := endMarker + "\nbody\n" + startMarker + "\n"
	b, path := blockFor(t, initial)

	err := b.Apply("new")
	var corrupt *CorruptError
	require.True(t, errors.As(err, &corrupt), "got %v", err)
	assert.Contains(t, corrupt.Error(), "out of order")
	assert.Equal(t, initial, read(t, path))
}

func TestApplyDuplicateMarkersFail(t *testing.T) {
	initial := startMarker + "\nbody\n" + endMarker + "\n" + startMarker + "\nmore\n" + endMarker + "\n"
	b, _ := blockFor(t, initial)

	var corrupt *CorruptError
	require.True(t, errors.As(b.Apply("new"), &corrupt))
	// the error names the marker that appears twice, not a missing one
	assert.Equal(t, startMarker, corrupt.Duplicate)
	assert.Empty(t, corrupt.Missing)
	assert.Contains(t, corrupt.Error(), "duplicate marker")
}

func TestApplyDuplicateEndMarkerFails(t *testing.T) {
	initial := startMarker + "\nbody\n" + endMarker + "\n" + endMarker + "\n"
	b, _ := blockFor(t, initial)

	var corrupt *CorruptError
	require.True(t, errors.As(b.Apply("new"), &corrupt))
	assert.Equal(t, endMarker, corrupt.Duplicate)
}

func TestApplySynthesizesInterfaceHeader(t *testing.T) {
	b, path := blockFor(t, "# no interface here\n")

	require.NoError(t, b.ApplyWith("dhcp", Options{EnsureInterface: "eth0"}))

	got := read(t, path)
	idx := strings.Index(got, "interface eth0")
	require.GreaterOrEqual(t, idx, 0, "interface line missing: %q", got)
	assert.Less(t, idx, strings.Index(got, startMarker), "interface line must precede the block")
}

func TestApplyKeepsExistingInterfaceHeader(t *testing.T) {
	b, path := blockFor(t, "interface wlan0\n")

	require.NoError(t, b.ApplyWith("dhcp", Options{EnsureInterface: "eth0"}))

	got := read(t, path)
	assert.NotContains(t, got, "interface eth0")
	assert.Contains(t, got, "interface wlan0")
}

func TestApplyInterfaceHeaderNotAddedOnReplace(t *testing.T) {
	initial := startMarker + "\nold\n" + endMarker + "\n"
	b, path := blockFor(t, initial)

	require.NoError(t, b.ApplyWith("new", Options{EnsureInterface: "eth0"}))
	assert.NotContains(t, read(t, path), "interface eth0")
}

func TestApplyEmptyBody(t *testing.T) {
	b, path := blockFor(t, "")

	require.NoError(t, b.Apply(""))
	assert.Equal(t, startMarker+"\n"+endMarker+"\n", read(t, path))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "hostapd.conf")

	require.NoError(t, WriteFile(path, "interface=wlan0\n"))
	assert.Equal(t, "interface=wlan0\n", read(t, path))

	// overwrite
	require.NoError(t, WriteFile(path, "interface=wlan1\n"))
	assert.Equal(t, "interface=wlan1\n", read(t, path))

	// no temp file left behind
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
