package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/fleveque/stylist-service/internal/llm"
)

// ItemImageLoader resolves a product image reference into image bytes for
// the outfit call.
type ItemImageLoader interface {
	Load(ctx context.Context, ref string) (*llm.Image, error)
}

// ImageLoader downloads http(s) images or decodes data URIs, then normalizes
// them with the ImageProcessor.
type ImageLoader struct {
	processor  *ImageProcessor
	httpClient *http.Client
	maxBytes   int64
	userAgent  string
}

// errBlockedAddress is returned when an image URL resolves to an address
// the server must not fetch from.
var errBlockedAddress = errors.New("address is not publicly routable")

// NewImageLoader creates a loader. maxBytes caps downloads and decoded data
// URIs alike. Unless allowPrivateHosts is set, downloads may only connect to
// public addresses; the check runs on every dial, redirects included.
func NewImageLoader(processor *ImageProcessor, timeout time.Duration, maxBytes int, userAgent string, allowPrivateHosts bool) *ImageLoader {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !allowPrivateHosts {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
			Control:   publicOnly,
		}
		transport.DialContext = dialer.DialContext
		transport.Proxy = nil
	}

	return &ImageLoader{
		processor:  processor,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		maxBytes:   int64(maxBytes),
		userAgent:  userAgent,
	}
}

// publicOnly is a net.Dialer Control hook. It sees the resolved address, so
// hostnames that resolve to private ranges are caught too.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if blockedAddr(addr) {
		return fmt.Errorf("%w: %s", errBlockedAddress, addr)
	}
	return nil
}

// blockedAddr covers loopback, private, link-local (including cloud metadata
// endpoints), multicast and unspecified addresses.
func blockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified()
}

// Load returns the normalized image. Malformed data URIs and URLs pointing at
// non-public addresses wrap ErrInvalidRequest; download and decode failures
// of remote images wrap ErrUpstream.
func (l *ImageLoader) Load(ctx context.Context, ref string) (*llm.Image, error) {
	if strings.HasPrefix(strings.ToLower(ref), "data:") {
		data, err := decodeDataURI(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid item image data URI: %v", ErrInvalidRequest, err)
		}
		if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
			return nil, fmt.Errorf("%w: item image exceeds %d bytes", ErrInvalidRequest, l.maxBytes)
		}
		img, err := l.processor.Normalize(data)
		if err != nil {
			return nil, fmt.Errorf("%w: item image: %v", ErrInvalidRequest, err)
		}
		return img, nil
	}

	data, err := l.download(ctx, ref)
	if errors.Is(err, errBlockedAddress) {
		return nil, fmt.Errorf("%w: item image URL must point to a public host", ErrInvalidRequest)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: downloading item image: %v", ErrUpstream, err)
	}
	img, err := l.processor.Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: item image from %s: %v", ErrUpstream, ref, err)
	}
	return img, nil
}

func (l *ImageLoader) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	limit := l.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds %d bytes", limit)
	}
	return data, nil
}

// decodeDataURI decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURI(uri string) ([]byte, error) {
	rest := uri[len("data:"):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, fmt.Errorf("missing comma")
	}
	meta, payload := rest[:comma], rest[comma+1:]

	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding base64: %w", err)
		}
		return data, nil
	}

	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("unescaping payload: %w", err)
	}
	return []byte(data), nil
}
