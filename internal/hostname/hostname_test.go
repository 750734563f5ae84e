package hostname

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/sysrun"
)

func TestValidate(t *testing.T) {
	assert.True(t, Validate("library-lab-pi23").OK())
	assert.False(t, Validate("a..b").OK())
	assert.False(t, Validate("").OK())
}

func TestApplyUpdatesExistingEntry(t *testing.T) {
	root := t.TempDir()
	t.Setenv("OFFSPOT_ROOT", root)
	hostsPath := filepath.Join(root, brand.HostsPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(hostsPath), 0o755))
	require.NoError(t, os.WriteFile(hostsPath, []byte("127.0.0.1\tlocalhost\n127.0.1.1\told-name\n"), 0o644))

	run := sysrun.NewRecordingRunner()
	require.NoError(t, Apply(run, "new-name"))

	assert.True(t, run.Ran("hostnamectl --no-ask-password set-hostname new-name"))
	raw, err := os.ReadFile(hostsPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1\tlocalhost\n127.0.1.1\tnew-name\n", string(raw))
}

func TestApplyAppendsMissingEntry(t *testing.T) {
	root := t.TempDir()
	t.Setenv("OFFSPOT_ROOT", root)
	hostsPath := filepath.Join(root, brand.HostsPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(hostsPath), 0o755))
	require.NoError(t, os.WriteFile(hostsPath, []byte("127.0.0.1\tlocalhost\n"), 0o644))

	run := sysrun.NewRecordingRunner()
	require.NoError(t, Apply(run, "library-lab"))

	raw, err := os.ReadFile(hostsPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1\tlocalhost\n127.0.1.1\tlibrary-lab\n", string(raw))
}

func TestApplyMissingHostsFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("OFFSPOT_ROOT", root)

	run := sysrun.NewRecordingRunner()
	require.NoError(t, Apply(run, "library-lab"))

	raw, err := os.ReadFile(filepath.Join(root, brand.HostsPath))
	require.NoError(t, err)
	assert.Equal(t, "127.0.1.1\tlibrary-lab\n", string(raw))
}

func TestPatchHostsDoesNotMatchPrefixAddresses(t *testing.T) {
	root := t.TempDir()
	hostsPath := filepath.Join(root, "hosts")
	require.NoError(t, os.WriteFile(hostsPath, []byte("127.0.1.10\tother\n"), 0o644))

	require.NoError(t, patchHosts(hostsPath, "name"))

	raw, err := os.ReadFile(hostsPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.1.10\tother\n127.0.1.1\tname\n", string(raw))
}
