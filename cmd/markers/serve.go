package main

import (
	"bytes"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ha1tch/chartmarkers/pkg/marker"
	"github.com/ha1tch/chartmarkers/pkg/markerfile"
)

var (
	renderDurationMetrics = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "markers_render_duration_milliseconds",
			Help:    "Frame render duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5ms to ~1s
		}, []string{"format"},
	)

	renderTotalMetrics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markers_render_total",
			Help: "Total number of frame renders",
		}, []string{"format", "success"},
	)

	hitTestTotalMetrics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markers_hit_test_total",
			Help: "Total number of hit tests by outcome",
		}, []string{"hit"},
	)
)

func init() {
	prometheus.MustRegister(
		renderDurationMetrics,
		renderTotalMetrics,
		hitTestTotalMetrics,
	)

	ServeCmd.Flags().String("listen", ":8080", "listen address")
	addRenderFlags(ServeCmd)
	RootCmd.AddCommand(ServeCmd)
}

var ServeCmd = &cobra.Command{
	Use:   "serve <frame>",
	Short: "serve a frame preview over http",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := markerfile.Load(args[0])
		if err != nil {
			return err
		}
		p, err := newPreview(f, settings.RenderOptions())
		if err != nil {
			return err
		}

		log.Infof("serving %s on %s", args[0], settings.Listen)
		return p.routes().Run(settings.Listen)
	},
}

// preview holds one frame and its latched hover. The renderer is not safe
// for concurrent use, so every handler takes mu.
type preview struct {
	mu       sync.Mutex
	frame    *markerfile.Frame
	renderer *marker.Renderer
	hover    *marker.HoverResult
	opts     markerfile.Options
}

func newPreview(f *markerfile.Frame, opts markerfile.Options) (*preview, error) {
	p := &preview{opts: opts}
	if err := p.load(f); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *preview) load(f *markerfile.Frame) error {
	r, err := markerfile.Prepare(f, p.opts)
	if err != nil {
		return err
	}
	p.frame = f
	p.renderer = r
	p.hover = f.Previous()
	return nil
}

func (p *preview) routes() *gin.Engine {
	r := gin.Default()

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/frame.png", p.handleFrame(markerfile.OutputPNG, "image/png"))
	r.GET("/frame.svg", p.handleFrame(markerfile.OutputSVG, "image/svg+xml"))
	r.GET("/frame.trace", p.handleFrame(markerfile.OutputTrace, "text/plain; charset=utf-8"))

	r.GET("/hit", func(c *gin.Context) {
		x, errX := strconv.ParseFloat(c.Query("x"), 64)
		y, errY := strconv.ParseFloat(c.Query("y"), 64)
		if errX != nil || errY != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y are required numbers"})
			return
		}
		c.JSON(http.StatusOK, p.hit(x, y))
	})

	r.GET("/frame", func(c *gin.Context) {
		p.mu.Lock()
		defer p.mu.Unlock()
		c.JSON(http.StatusOK, p.frame)
	})

	r.POST("/frame", p.replaceFrame)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// replaceFrame swaps in a posted frame and resets the hover to its latch.
func (p *preview) replaceFrame(c *gin.Context) {
	var f markerfile.Frame
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.load(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": len(f.Items)})
}

// hit runs a hit test against the latched hover and latches the result.
func (p *preview) hit(x, y float64) gin.H {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hover = p.renderer.HitTest(x, y, p.hover)
	hitTestTotalMetrics.With(prometheus.Labels{"hit": strconv.FormatBool(p.hover != nil)}).Inc()

	if p.hover == nil {
		return gin.H{"hover": nil}
	}
	return gin.H{"hover": p.hover.InternalID, "externalId": p.hover.ExternalID}
}

func (p *preview) handleFrame(format, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := p.render(format)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// render draws the frame with the latched hover and no pointer.
func (p *preview) render(format string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := *p.frame
	f.Pointer = nil
	f.Hover = nil
	if p.hover != nil {
		id := p.hover.InternalID
		f.Hover = &id
	}

	opts := p.opts
	opts.Format = format

	start := time.Now()
	var buf bytes.Buffer
	_, err := markerfile.Render(&f, &buf, opts)
	renderTotalMetrics.With(prometheus.Labels{"format": format, "success": strconv.FormatBool(err == nil)}).Inc()
	if err != nil {
		return nil, errors.Wrapf(err, "render %s", format)
	}
	renderDurationMetrics.With(prometheus.Labels{"format": format}).
		Observe(float64(time.Since(start)) / float64(time.Millisecond))
	return buf.Bytes(), nil
}
