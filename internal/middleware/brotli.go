package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes the Brotli middleware.
type BrotliConfig struct {
	Quality int
	// MinLength is the smallest body worth compressing. Shorter bodies are
	// sent as is.
	MinLength int
	Skipper   func(c *gin.Context) bool
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brotliWriter holds back the body until MinLength bytes arrive, then
// commits to compressing everything or, on a short body, to plain output.
type brotliWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int

	pending []byte
	br      *brotli.Writer
	decided bool
}

func (w *brotliWriter) Write(data []byte) (int, error) {
	if w.decided {
		if w.br != nil {
			return w.br.Write(data)
		}
		return w.ResponseWriter.Write(data)
	}

	w.pending = append(w.pending, data...)
	if len(w.pending) >= w.minLength {
		if err := w.decide(true); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *brotliWriter) decide(compress bool) error {
	w.decided = true
	if compress && w.Header().Get("Content-Encoding") == "" {
		w.Header().Set("Content-Encoding", "br")
		w.Header().Del("Content-Length")
		w.br = brotli.NewWriterLevel(w.ResponseWriter, w.quality)
	}

	buf := w.pending
	w.pending = nil
	if len(buf) == 0 {
		return nil
	}
	if w.br != nil {
		_, err := w.br.Write(buf)
		return err
	}
	_, err := w.ResponseWriter.Write(buf)
	return err
}

// Flush commits to whatever has been decided so far and pushes it out.
func (w *brotliWriter) Flush() {
	if !w.decided {
		_ = w.decide(len(w.pending) >= w.minLength)
	}
	if w.br != nil {
		_ = w.br.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *brotliWriter) close() error {
	if !w.decided {
		if err := w.decide(false); err != nil {
			return err
		}
	}
	if w.br != nil {
		return w.br.Close()
	}
	return nil
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isStreaming(c) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = bw
		defer func() {
			if err := bw.close(); err != nil {
				_ = c.Error(err)
			}
		}()

		c.Next()
	}
}

// isStreaming reports requests whose responses must not be buffered.
func isStreaming(c *gin.Context) bool {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(enc, ";")
		if strings.EqualFold(strings.TrimSpace(name), "br") {
			return true
		}
	}
	return false
}
