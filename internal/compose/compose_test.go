package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `
services:
  kiwix:
    image: ghcr.io/offspot/kiwix-serve:3.5.0
    ports:
    - "80:80"
  dashboard:
    image: ghcr.io/offspot/dashboard:1.0
`

func TestParseAndValidate(t *testing.T) {
	doc, err := Parse([]byte(validPayload))
	require.NoError(t, err)

	check := Validate(doc)
	assert.True(t, check.OK(), check.HelpText)
}

func TestParseRejectsNonMapping(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("\t{bad yaml"))
	assert.Error(t, err)
}

func TestValidateMissingWebPort(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  kiwix:
    image: ghcr.io/offspot/kiwix-serve:3.5.0
    ports:
    - "8080:80"
`))
	require.NoError(t, err)
	check := Validate(doc)
	assert.False(t, check.OK())
}

func TestNormalizeNestedKeys(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  kiwix:
    image: img
    ports:
    - target: 80
      published: 80
      protocol: tcp
`))
	require.NoError(t, err)

	services := doc["services"].(map[string]interface{})
	svc := services["kiwix"].(map[string]interface{})
	ports := svc["ports"].([]interface{})
	port := ports[0].(map[string]interface{})
	assert.Equal(t, 80, port["published"])
}

func TestServiceImages(t *testing.T) {
	doc, err := Parse([]byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"kiwix":     "ghcr.io/offspot/kiwix-serve:3.5.0",
		"dashboard": "ghcr.io/offspot/dashboard:1.0",
	}, ServiceImages(doc))
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker", "compose.yml")
	doc, err := Parse([]byte(validPayload))
	require.NoError(t, err)

	require.NoError(t, Write(path, doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	reparsed, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, ServiceImages(doc), ServiceImages(reparsed))
	assert.True(t, Validate(reparsed).OK())
}
