// Package fetching downloads bill documents from caller-supplied URLs. URLs
// are validated before any request is made: only public http/https hosts
// are allowed, optionally restricted to an allow-list of domains.
package fetching

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// maxDocumentSize caps downloaded documents at 50MB, matching the upload
// limit used for direct file submission paths.
const maxDocumentSize = 50 << 20

var (
	driveFileRe = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)
	driveIDRe   = regexp.MustCompile(`drive\.google\.com.*?id=([a-zA-Z0-9_-]+)`)
)

// Client downloads documents over HTTP with SSRF protection.
type Client struct {
	httpClient     *http.Client
	allowedDomains []string
	lookupIP       func(host string) ([]net.IP, error)
}

// NewClient creates a new Client. allowedDomains restricts downloads to the
// listed domains and their subdomains; an empty list allows any public host.
func NewClient(allowedDomains []string) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		allowedDomains: allowedDomains,
		lookupIP:       net.LookupIP,
	}
}

// NormalizeDriveURL converts common Google Drive sharing URLs to the direct
// download form. URLs that do not look like Drive share links are returned
// unchanged.
func NormalizeDriveURL(rawURL string) string {
	if m := driveFileRe.FindStringSubmatch(rawURL); m != nil {
		return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", m[1])
	}
	if m := driveIDRe.FindStringSubmatch(rawURL); m != nil {
		return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", m[1])
	}
	return rawURL
}

// ValidateURL checks the URL scheme and hostname to prevent SSRF attacks.
func (c *Client) ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q. Only http and https are allowed", parsed.Scheme)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return fmt.Errorf("invalid URL: missing hostname")
	}

	if len(c.allowedDomains) > 0 && !c.domainAllowed(hostname) {
		return fmt.Errorf("domain %q is not in the allowed list", hostname)
	}

	if c.resolvesToPrivateIP(hostname) {
		return fmt.Errorf("access to private/internal IP addresses is not allowed")
	}

	return nil
}

// domainAllowed reports whether hostname matches an allowed domain exactly
// or as a subdomain.
func (c *Client) domainAllowed(hostname string) bool {
	for _, domain := range c.allowedDomains {
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			return true
		}
	}
	return false
}

// resolvesToPrivateIP reports whether the hostname resolves to a private,
// loopback, link-local, multicast, or unspecified address. Hostnames that
// cannot be resolved are treated as private for safety.
func (c *Client) resolvesToPrivateIP(hostname string) bool {
	ips, err := c.lookupIP(hostname)
	if err != nil || len(ips) == 0 {
		return true
	}
	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
			ip.IsLinkLocalMulticast() || ip.IsMulticast() || ip.IsUnspecified() {
			return true
		}
	}
	return false
}

// Fetch downloads a document and returns its content and MIME type. Google
// Drive share links are normalized to their direct-download form first.
func (c *Client) Fetch(rawURL string) ([]byte, string, error) {
	rawURL = NormalizeDriveURL(rawURL)

	if err := c.ValidateURL(rawURL); err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("downloading document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("downloading document: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading document: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, "", fmt.Errorf("document exceeds the maximum size of 50MB")
	}

	return data, documentMIMEType(rawURL, resp.Header.Get("Content-Type"), data), nil
}

// documentMIMEType classifies a downloaded document. PDFs are recognized by
// Content-Type, URL suffix, or the %PDF magic bytes; everything else passes
// through as an image type for the page converter to decode.
func documentMIMEType(rawURL, contentType string, data []byte) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	isPDF := strings.Contains(contentType, "pdf") ||
		strings.HasSuffix(strings.ToLower(rawURL), ".pdf") ||
		(len(data) >= 4 && bytes.Equal(data[:4], []byte("%PDF")))
	if isPDF {
		return "application/pdf"
	}
	if contentType == "" {
		return "image/jpeg"
	}
	return contentType
}
