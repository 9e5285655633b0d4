// Package statsd is a small buffered UDP StatsD client with DogStatsD-style tags.
package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// maxPacketSize keeps datagrams under a typical 1500-byte MTU.
	maxPacketSize        = 1432
	defaultFlushInterval = time.Second
)

// Sink describes the minimal interface required to emit StatsD-style metrics.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes how to connect to a StatsD-compatible sink.
type Config struct {
	Enabled    bool
	Address    string
	Prefix     string
	Logger     *slog.Logger
	GlobalTags map[string]string
	// FlushInterval bounds how long a metric waits in the buffer. Defaults to one second.
	FlushInterval time.Duration
}

// Client batches metric lines into datagrams and sends them over UDP.
// It is safe for concurrent use. A Client without a connection drops metrics.
type Client struct {
	prefix string
	global map[string]string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
	buf  []byte

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

var _ Sink = (*Client)(nil)

// Noop discards every metric. It is used when metrics are disabled.
type Noop struct{}

func (Noop) Count(string, int64, map[string]string) {}
func (Noop) Gauge(string, float64, map[string]string) {}
func (Noop) Timing(string, time.Duration, map[string]string) {}

var _ Sink = Noop{}

// Incr increments a counter by one. A nil sink is ignored.
func Incr(sink Sink, name string, tags map[string]string) {
	if sink == nil {
		return
	}
	sink.Count(name, 1, tags)
}

// NewClient dials the configured StatsD endpoint and starts the flush loop.
// When disabled or without an address it returns a client that drops metrics.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		global: mergeTags(cfg.GlobalTags, nil),
		logger: logger.With("component", "statsd"),
	}

	address := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || address == "" {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	c.conn = conn
	c.buf = make([]byte, 0, maxPacketSize)
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.flushLoop(interval)
	return c, nil
}

// Enabled reports whether the client still holds an open connection.
func (c *Client) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Count adds value to a counter.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.emit(name, strconv.FormatInt(value, 10), "c", tags)
}

// Gauge sets a gauge.
func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.emit(name, strconv.FormatFloat(value, 'f', -1, 64), "g", tags)
}

// Timing records a duration in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.emit(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Flush sends buffered metrics now.
func (c *Client) Flush() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushLocked()
}

// Close stops the flush loop, sends what is buffered and closes the connection.
// It is safe to call more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		if c.stop != nil {
			close(c.stop)
			<-c.done
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.flushLocked()
		if c.conn != nil {
			err = c.conn.Close()
			c.conn = nil
		}
	})
	return err
}

func (c *Client) flushLoop(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Flush()
		case <-c.stop:
			return
		}
	}
}

func (c *Client) emit(name, value, kind string, tags map[string]string) {
	if c == nil {
		return
	}
	metric := c.metricName(name)
	if metric == "" {
		return
	}
	line := metric + ":" + value + "|" + kind + formatTags(mergeTags(c.global, tags))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if len(c.buf) > 0 && len(c.buf)+1+len(line) > maxPacketSize {
		c.flushLocked()
	}
	if len(c.buf) > 0 {
		c.buf = append(c.buf, '\n')
	}
	c.buf = append(c.buf, line...)
}

// flushLocked must be called with mu held.
func (c *Client) flushLocked() {
	if len(c.buf) == 0 || c.conn == nil {
		return
	}
	if _, err := c.conn.Write(c.buf); err != nil {
		c.logger.Debug("statsd write failed", "error", err, "bytes", len(c.buf))
	}
	c.buf = c.buf[:0]
}

func (c *Client) metricName(name string) string {
	n := normalizeMetricName(name)
	switch {
	case n == "":
		return ""
	case c.prefix == "":
		return n
	default:
		return c.prefix + "." + n
	}
}

// normalizeMetricName replaces characters that are reserved in the line
// protocol and drops empty path segments.
func normalizeMetricName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', ':', '|', '@', '#', ',':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))

	parts := strings.Split(mapped, ".")
	parts = slices.DeleteFunc(parts, func(s string) bool { return s == "" })
	return strings.Join(parts, ".")
}

// mergeTags returns base overlaid with extra. Keys and values are trimmed and
// blank keys are dropped.
func mergeTags(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for _, src := range []map[string]string{base, extra} {
		for k, v := range src {
			if key := strings.TrimSpace(k); key != "" {
				out[key] = strings.TrimSpace(v)
			}
		}
	}
	return out
}

func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(tags[k])
	}
	return b.String()
}
