package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errUnreachable = errors.New("unreachable")

func stubProbes(t *testing.T, ping, dns, http error) {
	t.Helper()
	origPing, origDNS, origHTTP := CheckPingFunc, CheckDNSFunc, CheckHTTPFunc
	t.Cleanup(func() {
		CheckPingFunc, CheckDNSFunc, CheckHTTPFunc = origPing, origDNS, origHTTP
	})
	CheckPingFunc = func(ctx context.Context, target string) error { return ping }
	CheckDNSFunc = func(ctx context.Context, resolver string) error { return dns }
	CheckHTTPFunc = func(ctx context.Context, url string) error { return http }
}

func TestIsOnlinePingSucceeds(t *testing.T) {
	stubProbes(t, nil, errUnreachable, errUnreachable)
	if !IsOnline(context.Background()) {
		t.Error("ping success should mean online")
	}
}

func TestIsOnlineDNSFallback(t *testing.T) {
	stubProbes(t, errUnreachable, nil, errUnreachable)
	if !IsOnline(context.Background()) {
		t.Error("dns success should mean online")
	}
}

func TestIsOnlineHTTPFallback(t *testing.T) {
	stubProbes(t, errUnreachable, errUnreachable, nil)
	if !IsOnline(context.Background()) {
		t.Error("http success should mean online")
	}
}

func TestIsOnlineAllFail(t *testing.T) {
	stubProbes(t, errUnreachable, errUnreachable, errUnreachable)
	if IsOnline(context.Background()) {
		t.Error("all probes failing should mean offline, not an error")
	}
}

func TestIsOnlineRespectsDeadline(t *testing.T) {
	stubProbes(t, errUnreachable, errUnreachable, nil)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	if IsOnline(ctx) {
		t.Error("expired context should short-circuit to offline")
	}
}
