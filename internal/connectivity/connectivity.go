// Package connectivity answers a single question: does this host
// currently have a route to the public internet? Absence of connectivity
// is a normal outcome on an offline hotspot, never an error.
package connectivity

import (
	"context"
	"net/http"
	"time"

	"github.com/miekg/dns"
	probing "github.com/prometheus-community/pro-bing"

	"github.com/offspot/runtime-config/internal/logging"
)

// Probe targets. Anycast resolver addresses answer from close by, which
// keeps the whole check under the boot-time budget.
var (
	pingTargets  = []string{"1.1.1.1", "8.8.8.8"}
	dnsResolvers = []string{"1.1.1.1:53", "8.8.8.8:53"}
	httpProbeURL = "http://detectportal.firefox.com/success.txt"
)

// attemptTimeout bounds each individual probe; DefaultTimeout bounds the
// whole check so a boot-time pass cannot hang offline.
const (
	attemptTimeout = 1500 * time.Millisecond
	DefaultTimeout = 5 * time.Second
)

// Probe functions are variables so tests can stub them out.
var (
	CheckPingFunc = func(ctx context.Context, target string) error {
		pinger, err := probing.NewPinger(target)
		if err != nil {
			return err
		}
		pinger.Count = 1
		pinger.Timeout = attemptTimeout
		pinger.SetPrivileged(false)

		if err := pinger.RunWithContext(ctx); err != nil {
			return err
		}
		if pinger.Statistics().PacketsRecv == 0 {
			return context.DeadlineExceeded
		}
		return nil
	}

	CheckDNSFunc = func(ctx context.Context, resolver string) error {
		m := new(dns.Msg)
		m.SetQuestion("www.kiwix.org.", dns.TypeA)
		client := &dns.Client{Timeout: attemptTimeout}
		_, _, err := client.ExchangeContext(ctx, m, resolver)
		return err
	}

	CheckHTTPFunc = func(ctx context.Context, url string) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		client := &http.Client{Timeout: attemptTimeout}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
)

// IsOnline reports whether any of the well-known endpoints answered.
// ICMP first (cheapest), then a DNS query (survives ICMP-filtering
// uplinks), then an HTTP probe as last resort. Never returns an error:
// every failure mode means offline.
func IsOnline(ctx context.Context) bool {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	log := logging.WithComponent("connectivity")

	for _, target := range pingTargets {
		if ctx.Err() != nil {
			return false
		}
		if err := CheckPingFunc(ctx, target); err == nil {
			log.Debug("online via ping", "target", target)
			return true
		}
	}
	for _, resolver := range dnsResolvers {
		if ctx.Err() != nil {
			return false
		}
		if err := CheckDNSFunc(ctx, resolver); err == nil {
			log.Debug("online via dns", "resolver", resolver)
			return true
		}
	}
	if ctx.Err() == nil {
		if err := CheckHTTPFunc(ctx, httpProbeURL); err == nil {
			log.Debug("online via http", "url", httpProbeURL)
			return true
		}
	}

	log.Debug("all probes failed, assuming offline")
	return false
}
