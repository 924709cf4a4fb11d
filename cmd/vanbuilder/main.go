package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"VanBuilder/internal/catalog"
	"VanBuilder/internal/config"
	"VanBuilder/internal/engine"
	"VanBuilder/internal/gizmo"
	"VanBuilder/internal/logger"
	"VanBuilder/internal/persistence"
	"VanBuilder/internal/selection"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// console prints selection updates the way the info panel would show them.
type console struct {
	out io.Writer
}

func (c console) SelectionChanged(info *selection.PanelInfo) {
	if info == nil {
		fmt.Fprintln(c.out, "selection: none")
		return
	}
	fmt.Fprintf(c.out, "selection: %s (%s) %s\n", info.Label, info.ID, info.Image)
}

func (c console) DimensionsUpdated(d selection.Dimensions) {
	fmt.Fprintf(c.out, "dimensions: L %.2f  H %.2f  W %.2f\n", d.Length, d.Height, d.Width)
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	logger.InitWithConfig(cfg.LogLevel, cfg.Development)
	defer logger.Sync()

	if err := run(cfg, os.Stdin, os.Stdout); err != nil {
		logger.Log.Error("vanbuilder stopped", zap.Error(err))
		os.Exit(1)
	}
}

// restoreSaved brings back the stored van and layout. A layout is restored
// even when no van type was stored.
func restoreSaved(session *engine.Session, store persistence.Store) {
	if vt := persistence.VanType(store); vt != "" {
		if err := session.LoadVan(vt); err != nil {
			logger.Log.Warn("Stored van type ignored", zap.String("vanType", vt), zap.Error(err))
		}
	}
	if err := session.Restore(); err != nil {
		logger.Log.Warn("Restore failed", zap.Error(err))
	}
}

func run(cfg config.Config, in io.Reader, out io.Writer) error {
	store, err := persistence.OpenSQLiteStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	cat := catalog.Default(cfg.AssetDir)
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			return err
		}
	}

	session := engine.NewSession(cfg, store, cat, console{out: out})
	defer session.Close()

	restoreSaved(session, store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopErr := make(chan error, 1)
	go func() { loopErr <- session.Run(ctx) }()

	cmds := NewRegistry(out)
	registerCommands(cmds, session, cfg, out, stop)

	lines := bufio.NewScanner(in)
	fmt.Fprintln(out, "vanbuilder ready, type help for commands")
	for ctx.Err() == nil && lines.Scan() {
		args, err := Parse(lines.Text())
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		result := make(chan error, 1)
		session.Do(func() { result <- cmds.Execute(args) })
		select {
		case err := <-result:
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		case <-ctx.Done():
		}
	}
	stop()

	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return lines.Err()
}

func registerCommands(r *Registry, s *engine.Session, cfg config.Config, out io.Writer, quit func()) {
	r.Register("help", "list commands", nil, func([]string) error {
		r.Help()
		return nil
	})
	r.Register("quit", "exit", nil, func([]string) error {
		quit()
		return nil
	})
	r.Register("continue", "show where the start page leads", nil, func([]string) error {
		fmt.Fprintln(out, "route:", s.Route())
		return nil
	})
	r.Register("van", "<small|large> load a van", nil, func(args []string) error {
		if len(args) != 1 {
			return errors.New("usage: van <small|large>")
		}
		return s.LoadVan(args[0])
	})
	r.Register("catalog", "list furniture categories", nil, func([]string) error {
		for _, c := range s.Catalog.Categories() {
			fmt.Fprintln(out, " ", c)
		}
		return nil
	})
	r.Register("add", "<category> place furniture", nil, func(args []string) error {
		if len(args) != 1 {
			return errors.New("usage: add <category>")
		}
		return s.AddFromCatalog(args[0])
	})
	r.Register("list", "list placed objects", nil, func([]string) error {
		for _, o := range s.Registry.All() {
			p := o.Position()
			fmt.Fprintf(out, "  %s %-8s (%.2f, %.2f, %.2f)\n", o.ID, o.Category, p.X(), p.Y(), p.Z())
		}
		return nil
	})

	var fromX, fromY float64
	r.Register("click", "<x> <y> click at normalized device coordinates", nil, func(args []string) error {
		p, err := parseNDC(args)
		if err != nil {
			return err
		}
		s.PointerDown(p)
		s.PointerUp(p)
		return nil
	})
	r.Register("orbit", "-x -y <x> <y> drag from one point to another, orbiting the camera", func(fs *flag.FlagSet) {
		fs.Float64Var(&fromX, "x", 0, "start x")
		fs.Float64Var(&fromY, "y", 0, "start y")
	}, func(args []string) error {
		to, err := parseNDC(args)
		if err != nil {
			return err
		}
		from := mgl32.Vec2{float32(fromX), float32(fromY)}
		s.PointerDown(from)
		delta := to.Sub(from)
		s.Orbit.Rotate(-delta.X()*math.Pi, delta.Y()*math.Pi/2)
		s.PointerUp(to)
		return nil
	})
	r.Register("zoom", "<factor> move the camera closer (<1) or away (>1)", nil, func(args []string) error {
		if len(args) != 1 {
			return errors.New("usage: zoom <factor>")
		}
		f, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return err
		}
		s.Orbit.Zoom(float32(f))
		return nil
	})
	r.Register("mode", "<w|e|r> translate, rotate or scale", nil, func(args []string) error {
		if len(args) != 1 || !s.KeyPressed(args[0]) {
			return errors.New("usage: mode <w|e|r>")
		}
		return nil
	})

	var axis string
	r.Register("drag", "-axis <x|y|z> <amount> drag the gizmo handle", func(fs *flag.FlagSet) {
		fs.StringVar(&axis, "axis", "x", "handle axis")
	}, func(args []string) error {
		if len(args) != 1 {
			return errors.New("usage: drag -axis x <amount>")
		}
		a, ok := map[string]gizmo.Axis{"x": gizmo.AxisX, "y": gizmo.AxisY, "z": gizmo.AxisZ}[axis]
		if !ok {
			return fmt.Errorf("unknown axis %q", axis)
		}
		amount, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return err
		}
		if !s.BeginDrag() {
			return errors.New("nothing selected")
		}
		s.Drag(a, float32(amount))
		s.EndDrag()
		return nil
	})
	r.Register("delete", "delete the selected object", nil, func([]string) error {
		if !s.Delete() {
			fmt.Fprintln(out, "nothing selected")
		}
		return nil
	})
	r.Register("clamp", "pull every object back inside the van", nil, func([]string) error {
		moved, err := s.ClampAll()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d objects moved\n", moved)
		return nil
	})
	r.Register("save", "save the layout", nil, func([]string) error {
		return s.Save()
	})
	r.Register("restore", "restore the saved layout", nil, func([]string) error {
		return s.Restore()
	})
	r.Register("reset", "forget the layout, keep the van type", nil, func([]string) error {
		return s.Reset()
	})
	r.Register("export", "<file.webp|file.png> render the view to an image", nil, func(args []string) error {
		path := "vanbuilder." + cfg.ExportFormat
		if len(args) > 0 {
			path = args[0]
		}
		return s.Export(path)
	})
	r.Register("dump", "[file] write the scene graph as JSON", nil, func(args []string) error {
		if len(args) == 0 {
			return s.DumpSceneGraph(out)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return s.DumpSceneGraph(f)
	})
}

func parseNDC(args []string) (mgl32.Vec2, error) {
	if len(args) != 2 {
		return mgl32.Vec2{}, errors.New("expected x and y in [-1, 1]")
	}
	x, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	y, err := strconv.ParseFloat(args[1], 32)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{float32(x), float32(y)}, nil
}
