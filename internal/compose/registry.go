package compose

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/offspot/runtime-config/internal/brand"
	"github.com/offspot/runtime-config/internal/checks"
	"github.com/offspot/runtime-config/internal/logging"
)

// ImageRef is a parsed container image reference.
type ImageRef struct {
	Registry   string
	Repository string
	Tag        string
}

func (r ImageRef) String() string {
	return r.Registry + "/" + r.Repository + ":" + r.Tag
}

const (
	dockerHubRegistry = "registry-1.docker.io"
	dockerHubAuth     = "https://auth.docker.io/token?service=registry.docker.io&scope=repository:%s:pull"

	manifestAccept = "application/vnd.docker.distribution.manifest.v2+json, " +
		"application/vnd.docker.distribution.manifest.list.v2+json, " +
		"application/vnd.oci.image.index.v1+json, " +
		"application/vnd.oci.image.manifest.v1+json"
)

// ParseImageRef splits an image reference into registry, repository and
// tag, applying the docker conventions for the short forms.
func ParseImageRef(image string) ImageRef {
	ref := ImageRef{Registry: dockerHubRegistry, Tag: "latest"}

	rest := image
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		head := rest[:slash]
		// a registry host carries a dot, a colon, or is localhost
		if strings.ContainsAny(head, ".:") || head == "localhost" {
			ref.Registry = head
			rest = rest[slash+1:]
		}
	}
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		// digest pinned: keep the digest as the "tag"
		ref.Tag = rest[at+1:]
		rest = rest[:at]
	} else if colon := strings.LastIndexByte(rest, ':'); colon >= 0 {
		ref.Tag = rest[colon+1:]
		rest = rest[:colon]
	}
	if ref.Registry == dockerHubRegistry && !strings.Contains(rest, "/") {
		rest = "library/" + rest
	}
	ref.Repository = rest
	return ref
}

// ImageChecker verifies image existence against its registry's v2 API.
type ImageChecker struct {
	Client *http.Client

	// AuthURL overrides the docker hub token endpoint, for tests.
	AuthURL string
	// Scheme overrides https for non-hub registries, for tests.
	Scheme string
}

// NewImageChecker returns a checker with a sane request timeout.
func NewImageChecker() *ImageChecker {
	return &ImageChecker{Client: &http.Client{Timeout: 10 * time.Second}}
}

func (c *ImageChecker) scheme() string {
	if c.Scheme != "" {
		return c.Scheme
	}
	return "https"
}

// Exists checks that the referenced image manifest is retrievable.
func (c *ImageChecker) Exists(ctx context.Context, image string) checks.CheckResult {
	ref := ParseImageRef(image)

	var token string
	if ref.Registry == dockerHubRegistry {
		t, err := c.hubToken(ctx, ref.Repository)
		if err != nil {
			return checks.Fail("registry auth for %s: %s", image, err)
		}
		token = t
	}

	url := fmt.Sprintf("%s://%s/v2/%s/manifests/%s", c.scheme(), ref.Registry, ref.Repository, ref.Tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return checks.Fail("building manifest request for %s: %s", image, err)
	}
	req.Header.Set("Accept", manifestAccept)
	req.Header.Set("User-Agent", brand.UserAgent(brand.Version))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return checks.Fail("querying registry for %s: %s", image, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return checks.Fail("image %s not found on registry (HTTP %d)", image, resp.StatusCode)
	}
	return checks.Pass()
}

func (c *ImageChecker) hubToken(ctx context.Context, repository string) (string, error) {
	url := c.AuthURL
	if url == "" {
		url = fmt.Sprintf(dockerHubAuth, repository)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Token, nil
}

// DeepCheck verifies every service image exists on its registry,
// failing fast on the first missing one. Meant for interactive use:
// boot-time application skips it since the appliance may be offline.
func DeepCheck(ctx context.Context, doc map[string]interface{}, checker *ImageChecker) checks.CheckResult {
	images := ServiceImages(doc)
	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)

	log := logging.WithComponent("compose")
	for _, name := range names {
		log.Debug("checking image", "service", name, "image", images[name])
		if check := checker.Exists(ctx, images[name]); !check.OK() {
			return check
		}
	}
	return checks.Pass()
}
