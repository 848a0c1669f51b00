// Command markerview shows a marker frame in the terminal and hovers the
// marker under the mouse.
package main

import (
	"fmt"
	"image"
	"os"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ha1tch/chartmarkers/pkg/config"
	"github.com/ha1tch/chartmarkers/pkg/marker"
	"github.com/ha1tch/chartmarkers/pkg/markerfile"
)

// Viewer holds all viewer state
type Viewer struct {
	screen   tcell.Screen
	filename string
	opts     markerfile.Options

	frame    *markerfile.Frame
	renderer *marker.Renderer
	img      *image.RGBA
	hover    *marker.HoverResult

	vp      viewport
	pointer *[2]float64 // last pointer position in frame pixels
	message string
}

func main() {
	os.Exit(viewerMain(os.Args[1:]))
}

// viewerMain is main without os.Exit, so deferred cleanup such as closing the
// debug log happens on every exit path.
func viewerMain(args []string) int {
	flags := pflag.NewFlagSet("markerview", pflag.ContinueOnError)
	flags.String("config", "", "config file")
	flags.Bool("debug", false, "write debug output to the log file")
	flags.String("log-file", "markerview.log", "debug log file")
	flags.Float64("font-size", 12, "label font size in px")
	flags.String("font-family", "Go", "label font family")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: markerview [flags] <frame>\n\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 1
	}

	path, _ := flags.GetString("config")
	cfg, err := config.Load(config.New(), path, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	if cfg.Debug {
		// The screen owns stdout; debug output goes to a file.
		logPath, _ := flags.GetString("log-file")
		lf, err := os.Create(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
			return 1
		}
		defer func() {
			log.SetOutput(os.Stderr)
			lf.Close()
		}()
		log.SetOutput(lf)
		log.SetLevel(log.DebugLevel)
	}

	v := &Viewer{filename: flags.Arg(0), opts: cfg.RenderOptions()}
	if err := v.load(); err != nil {
		log.WithError(err).WithField("file", v.filename).Debug("cannot load frame")
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", v.filename, err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		return 1
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.Clear()

	v.screen = screen
	v.run()
	return 0
}

// load reads the frame file and rasterises it with its latched hover.
func (v *Viewer) load() error {
	f, err := markerfile.Load(v.filename)
	if err != nil {
		return err
	}
	r, err := markerfile.Prepare(f, v.opts)
	if err != nil {
		return err
	}
	v.frame = f
	v.renderer = r
	v.hover = f.Previous()
	if v.pointer != nil {
		v.hover = r.HitTest(v.pointer[0], v.pointer[1], v.hover)
	}
	return v.rasterize()
}

func (v *Viewer) rasterize() error {
	img, err := markerfile.Rasterize(v.frame, v.renderer, v.hover.ID(), v.opts)
	if err != nil {
		return err
	}
	v.img = img
	return nil
}

func (v *Viewer) run() {
	for {
		v.draw()
		v.screen.Show()

		ev := v.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			v.handleMouse(ev)
		}
	}
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'r', 'R':
			if err := v.load(); err != nil {
				v.message = "reload failed: " + err.Error()
			} else {
				v.message = "reloaded"
			}
		}
	}
	return false
}

func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	cx, cy := ev.Position()
	x, y, ok := v.vp.pixel(cx, cy)
	if !ok {
		return
	}
	v.pointer = &[2]float64{x, y}

	next := v.renderer.HitTest(x, y, v.hover)
	if next.ID() == v.hover.ID() {
		v.hover = next
		return
	}
	id, hovered := next.ID().Get()
	log.WithFields(log.Fields{"x": x, "y": y, "id": id, "hovered": hovered}).Debug("hover changed")
	v.hover = next
	v.message = ""
	if err := v.rasterize(); err != nil {
		v.message = err.Error()
	}
}
