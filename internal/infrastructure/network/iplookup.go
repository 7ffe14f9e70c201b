// Package network discovers the station's public IP and its approximate
// location for display.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

const (
	defaultTimeout = 5 * time.Second
	cacheDuration  = 5 * time.Minute
	// Maximum response body size read from a lookup service (16KB)
	maxResponseSize = 16 << 10
)

// DefaultServices are queried in order until one answers.
var DefaultServices = []string{
	"https://api.ipify.org?format=json",
	"https://httpbin.org/ip",
	"https://ipapi.co/json/",
}

// DefaultGeoService takes the address in place of %s.
const DefaultGeoService = "https://ipapi.co/%s/json/"

// ipResponse covers ipify/ipapi ("ip") and httpbin ("origin").
type ipResponse struct {
	IP     string `json:"ip"`
	Origin string `json:"origin"`
}

// IPLookup resolves the public IP through a list of fallback services.
type IPLookup struct {
	services   []string
	geoService string
	httpClient *http.Client
	logger     logger.Interface

	mu       sync.RWMutex
	cachedIP string
	cachedAt time.Time
}

func NewIPLookup(services []string, timeout time.Duration, log logger.Interface) *IPLookup {
	if len(services) == 0 {
		services = DefaultServices
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &IPLookup{
		services:   services,
		geoService: DefaultGeoService,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// WithGeoService sets the location service URL template. Empty keeps the
// default.
func (l *IPLookup) WithGeoService(template string) *IPLookup {
	if template != "" {
		l.geoService = template
	}
	return l
}

// PublicIP returns the first address any service reports. A successful
// answer is reused for a few minutes.
func (l *IPLookup) PublicIP(ctx context.Context) (string, error) {
	l.mu.RLock()
	if l.cachedIP != "" && time.Since(l.cachedAt) < cacheDuration {
		ip := l.cachedIP
		l.mu.RUnlock()
		return ip, nil
	}
	l.mu.RUnlock()

	for _, service := range l.services {
		ip, err := l.fetch(ctx, service)
		if err != nil {
			l.logger.Warnw("ip lookup service failed", "service", service, "error", err)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}

		l.mu.Lock()
		l.cachedIP = ip
		l.cachedAt = time.Now()
		l.mu.Unlock()
		return ip, nil
	}
	return "", fmt.Errorf("all %d ip lookup services failed", len(l.services))
}

func (l *IPLookup) fetch(ctx context.Context, service string) (string, error) {
	var data ipResponse
	if err := l.getJSON(ctx, service, &data); err != nil {
		return "", err
	}

	ip := strings.TrimSpace(data.IP)
	if ip == "" {
		// httpbin may list proxies: "client, proxy1"
		ip = strings.TrimSpace(strings.SplitN(data.Origin, ",", 2)[0])
	}
	if ip == "" {
		return "", fmt.Errorf("response carried no address")
	}
	return ip, nil
}

// Location is the approximate place of an address as reported by the
// location service.
type Location struct {
	IP          string  `json:"ip"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	Org         string  `json:"org"`
}

type geoResponse struct {
	IP          string  `json:"ip"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	CountryName string  `json:"country_name"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
	Org         string  `json:"org"`
	Error       bool    `json:"error"`
	Reason      string  `json:"reason"`
}

// LocationInfo looks up where ip is. An empty ip means the station's own
// public address.
func (l *IPLookup) LocationInfo(ctx context.Context, ip string) (*Location, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		own, err := l.PublicIP(ctx)
		if err != nil {
			return nil, err
		}
		ip = own
	}
	if net.ParseIP(ip) == nil {
		return nil, errors.NewValidationError("invalid ip address", ip)
	}

	var data geoResponse
	if err := l.getJSON(ctx, fmt.Sprintf(l.geoService, ip), &data); err != nil {
		l.logger.Warnw("location lookup failed", "ip", ip, "error", err)
		return nil, err
	}
	if data.Error {
		return nil, fmt.Errorf("location service refused %s: %s", ip, data.Reason)
	}
	if data.IP == "" {
		data.IP = ip
	}
	return &Location{
		IP:          data.IP,
		City:        data.City,
		Region:      data.Region,
		Country:     data.CountryName,
		CountryCode: data.Country,
		Latitude:    data.Latitude,
		Longitude:   data.Longitude,
		Timezone:    data.Timezone,
		Org:         data.Org,
	}, nil
}

func (l *IPLookup) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
