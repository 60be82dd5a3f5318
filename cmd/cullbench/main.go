package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"
	"time"

	"cullbsp/internal/config"
	"cullbsp/internal/cull"
	"cullbsp/internal/frame"
	"cullbsp/internal/metrics"
	"cullbsp/internal/profiling"
	"cullbsp/internal/scene"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

var _ = reflect.TypeOf(benchConfig{})

type benchConfig struct {
	Scene       string        `cli:""        env:"CULLBENCH_SCENE"        help:"Scene file to load; a scene is generated when empty."`
	Seed        int           `cli:""        env:"CULLBENCH_SEED"         help:"Seed of the generated scene."`
	Objects     int           `cli:""        env:"CULLBENCH_OBJECTS"      help:"Number of objects in the generated scene."`
	Walls       int           `cli:""        env:"CULLBENCH_WALLS"        help:"Number of walls in the generated scene."`
	Dump        string        `cli:""        env:"-"                      help:"Write the scene to this file and exit."`
	Frames      int           `cli:""        env:"CULLBENCH_FRAMES"       help:"Number of frames to run."`
	SlowFrame   time.Duration `cli:""        env:"CULLBENCH_SLOW_FRAME"   help:"Frames slower than this are logged."`
	FPS         int           `cli:""        env:"CULLBENCH_FPS"          help:"Pace frames at this rate; 0 runs flat out."`
	Tolerance   float64       `cli:",hidden" env:"CULLBENCH_TOLERANCE"    help:"Split tolerance."`
	MaxNodes    int           `cli:",hidden" env:"CULLBENCH_MAX_NODES"    help:"Cull tree node limit."`
	NoFarPlane  bool          `cli:",hidden" env:"CULLBENCH_NO_FAR_PLANE" help:"Do not cull against the far plane."`
	MetricsAddr string        `cli:""        env:"CULLBENCH_METRICS_ADDR" help:"Serve /metrics and /debug/pprof on this address."`
	Hold        bool          `cli:""        env:"-"                      help:"Keep serving metrics after the last frame until interrupted."`
	LogLevel    string        `cli:""        env:"CULLBENCH_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool          `cli:""        env:"CULLBENCH_LOG_INDENT"   help:"Indent logs."`
	Help        bool          `cli:""        env:"-"                      help:"Show help."`
}

func main() {
	gen := scene.DefaultGenOptions()
	conf := benchConfig{
		Seed:      1,
		Objects:   gen.Objects,
		Walls:     gen.Walls,
		Frames:    600,
		SlowFrame: 4 * time.Millisecond,
		Tolerance: float64(config.GetTolerance()),
		MaxNodes:  config.GetMaxNodes(),
		LogLevel:  logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Runs the occlusion cull tree over a scene and reports per-frame statistics.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	config.SetTolerance(float32(conf.Tolerance))
	config.SetMaxNodes(conf.MaxNodes)
	config.SetCullFarPlane(!conf.NoFarPlane)

	sc, err := loadScene(conf)
	if err != nil {
		logs.Fatal(err)
	}

	if conf.Dump != "" {
		if err := dumpScene(sc, conf.Dump); err != nil {
			logs.Fatal(err)
		}
		logs.WithTag("path", conf.Dump).Info("scene written")
		return
	}

	if conf.MetricsAddr != "" {
		go serveMetrics(ctx, conf.MetricsAddr)
	}

	logs.WithTag("objects", len(sc.Objects)).
		WithTag("occluders", len(sc.Occluders)).
		WithTag("frames", conf.Frames).
		WithTag("log_level", conf.LogLevel).
		Info("starting cull benchmark")

	sum := run(ctx, sc, conf)

	logs.WithTag("frames", sum.frames).
		WithTag("avg_ms", sum.avgMs()).
		WithTag("max_ms", float64(sum.max.Microseconds())/1000).
		WithTag("avg_visible", sum.avg(sum.visible)).
		WithTag("avg_nodes", sum.avg(sum.nodes)).
		WithTag("node_limit_hits", sum.limitHits).
		Info("cull benchmark done")

	if conf.Hold && conf.MetricsAddr != "" {
		<-ctx.Done()
	}
}

func loadScene(conf benchConfig) (*scene.Scene, error) {
	if conf.Scene != "" {
		return scene.Load(conf.Scene)
	}
	opts := scene.DefaultGenOptions()
	opts.Objects = conf.Objects
	opts.Walls = conf.Walls
	return scene.Generate(int64(conf.Seed), opts), nil
}

func dumpScene(sc *scene.Scene, path string) error {
	data, err := sc.Marshal()
	if err != nil {
		return errors.New("encoding scene failed").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("writing scene failed").
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}

type summary struct {
	frames    int
	total     time.Duration
	max       time.Duration
	visible   int
	nodes     int
	limitHits int
}

func (s summary) avg(n int) float64 {
	if s.frames == 0 {
		return 0
	}
	return float64(n) / float64(s.frames)
}

func (s summary) avgMs() float64 {
	return s.avg(int(s.total.Microseconds())) / 1000
}

func run(ctx context.Context, sc *scene.Scene, conf benchConfig) summary {
	tr := cull.NewTree()
	space := sc.Space()
	groups := sc.Groups()

	limiter := frame.NewLimiter(conf.FPS)
	var sum summary
	var ids []int32
	for i := 0; i < conf.Frames; i++ {
		if ctx.Err() != nil {
			break
		}
		profiling.ResetFrame()
		start := time.Now()

		scene.Frame(tr, sc.Camera.At(i, conf.Frames), groups)
		ids = tr.Harvest(space, ids)

		d := time.Since(start)
		stats := tr.Stats()
		metrics.Observe(stats, d)

		sum.frames++
		sum.total += d
		sum.max = max(sum.max, d)
		sum.visible += len(ids)
		sum.nodes += stats.Nodes
		sum.limitHits += stats.NodeLimitHits

		if d > conf.SlowFrame {
			logs.WithTag("frame", i).
				WithTag("ms", float64(d.Microseconds())/1000).
				WithTag("nodes", stats.Nodes).
				WithTag("visible", len(ids)).
				WithTag("top", profiling.TopN(3)).
				Debug("slow frame")
		}
		limiter.Tick()
	}
	return sum
}

func serveMetrics(ctx context.Context, addr string) {
	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	s := &http.Server{Addr: addr, Handler: &admin}
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil {
			logs.Warn(errors.Newf("shutting down the server failed").
				WithTag("addr", s.Addr).
				Wrap(err))
		}
	}()

	logs.WithTag("addr", addr).Info("starting metrics server")
	switch err := s.ListenAndServe(); err {
	case nil, http.ErrServerClosed:
		logs.WithTag("addr", addr).Info("stopping metrics server")
	default:
		logs.Warn(errors.New("metrics server stopped").
			WithTag("addr", addr).
			Wrap(err))
	}
}
