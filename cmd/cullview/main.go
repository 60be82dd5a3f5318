package main

import (
	"fmt"
	"reflect"
	"runtime"
	"time"

	"cullbsp/internal/cull"
	"cullbsp/internal/frame"
	"cullbsp/internal/geom"
	"cullbsp/internal/graphics"
	"cullbsp/internal/graphics/renderables/occluders"
	"cullbsp/internal/graphics/renderables/overlay"
	"cullbsp/internal/graphics/renderables/wireframe"
	renderer "cullbsp/internal/graphics/renderer"
	"cullbsp/internal/profiling"
	"cullbsp/internal/scene"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/segmentio/encoding/json"
)

const (
	windowWidth  = 1280
	windowHeight = 720
)

var _ = reflect.TypeOf(viewConfig{})

type viewConfig struct {
	Scene    string `cli:"" env:"CULLVIEW_SCENE"     help:"Scene file to load; a scene is generated when empty."`
	Seed     int    `cli:"" env:"CULLVIEW_SEED"      help:"Seed of the generated scene."`
	FPS      int    `cli:"" env:"CULLVIEW_FPS"       help:"Frame rate cap; 0 disables it."`
	LogLevel string `cli:"" env:"CULLVIEW_LOG_LEVEL" help:"Log level (debug|info|warning|error)."`
	Help     bool   `cli:"" env:"-"                  help:"Show help."`
}

func init() {
	runtime.LockOSThread()
}

func main() {
	conf := viewConfig{
		Seed:     1,
		FPS:      120,
		LogLevel: logs.InfoLevel.String(),
	}
	cli.Register().
		Help("Shows the occlusion cull tree of a scene. Drag to orbit, scroll to zoom, " +
			"F freezes the culling camera, C toggles occluder capture, H hides culled boxes, " +
			"O toggles the stats overlay.").
		Options(&conf)
	cli.Load()

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal

	sc, err := loadScene(conf)
	if err != nil {
		logs.Fatal(err)
	}

	if err := glfw.Init(); err != nil {
		logs.Fatal(errors.New("initializing glfw failed").Wrap(err))
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		logs.Fatal(err)
	}

	camera := graphics.NewCamera(windowWidth, windowHeight)
	camera.Target = sc.Camera.Target
	camera.Distance = sc.Camera.Eye.Sub(sc.Camera.Target).Len()
	camera.FarPlane = max(sc.Camera.Far, camera.Distance*4)

	boxes := wireframe.NewWireframe()
	hud := overlay.NewOverlay()
	r, err := renderer.NewRenderer(camera, boxes, occluders.NewOccluders(), hud)
	if err != nil {
		logs.Fatal(err)
	}
	defer r.Dispose()
	r.UpdateViewport(window.GetFramebufferSize())

	v := &viewer{
		window: window,
		r:      r,
		camera: camera,
		boxes:  boxes,
		hud:    hud,
		tree:   cull.NewTree(),
		space:  sc.Space(),
		leaves: sc.Bounds(),
		groups: sc.Groups(),
		title:  "cullview",
		fps:    conf.FPS,
	}
	v.tree.BeginCapturePolys()
	v.setupInputHandlers()
	v.run()
}

func loadScene(conf viewConfig) (*scene.Scene, error) {
	if conf.Scene != "" {
		return scene.Load(conf.Scene)
	}
	return scene.Generate(int64(conf.Seed), scene.DefaultGenOptions()), nil
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(windowWidth, windowHeight, "cullview", nil, nil)
	if err != nil {
		return nil, errors.New("creating window failed").Wrap(err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, errors.New("initializing OpenGL failed").Wrap(err)
	}
	// The frame limiter paces the loop instead of V-Sync.
	glfw.SwapInterval(0)
	return window, nil
}

type viewer struct {
	window *glfw.Window
	r      *renderer.Renderer
	camera *graphics.Camera
	boxes  *wireframe.Wireframe
	hud    *overlay.Overlay

	tree   *cull.Tree
	space  cull.SpaceTree
	leaves []geom.Bounds
	groups []scene.Group
	ids    []int32

	// The culling camera stays put while frozen so the tree can be inspected
	// from elsewhere.
	frozen   bool
	cullView scene.Camera
	dragging bool
	lastX    float64
	lastY    float64
	title    string
	fps      int
}

func (v *viewer) setupInputHandlers() {
	v.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			v.dragging = action == glfw.Press
			v.lastX, v.lastY = w.GetCursorPos()
		}
	})

	v.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !v.dragging {
			return
		}
		v.camera.Orbit(float32(v.lastX-xpos)*0.3, float32(ypos-v.lastY)*0.3)
		v.lastX, v.lastY = xpos, ypos
	})

	v.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		if yoff > 0 {
			v.camera.Zoom(0.9)
		} else if yoff < 0 {
			v.camera.Zoom(1.1)
		}
	})

	v.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyF:
			v.frozen = !v.frozen
		case glfw.KeyH:
			v.boxes.ShowCulled = !v.boxes.ShowCulled
		case glfw.KeyO:
			v.hud.Hidden = !v.hud.Hidden
		case glfw.KeyC:
			if v.tree.IsCapturing() {
				v.tree.EndCapturePolys()
				v.tree.ReleaseCapture()
			} else {
				v.tree.BeginCapturePolys()
			}
		case glfw.KeyP:
			fmt.Println(v.tree.String())
		}
	})

	v.window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		v.r.UpdateViewport(fbWidth, fbHeight)
	})
}

func (v *viewer) cullCamera() scene.Camera {
	if v.frozen {
		return v.cullView
	}
	v.cullView = scene.Camera{
		Eye:    v.camera.Eye(),
		Target: v.camera.Target,
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   v.camera.FOV,
		Aspect: v.camera.AspectRatio,
		Near:   v.camera.NearPlane,
		Far:    v.camera.FarPlane,
	}
	return v.cullView
}

func (v *viewer) run() {
	limiter := frame.NewLimiter(v.fps)
	lastTitle := time.Now()

	for !v.window.ShouldClose() {
		profiling.ResetFrame()

		// Capture is per frame: drop last frame's fragments before rebuilding.
		if v.tree.IsCapturing() {
			v.tree.ReleaseCapture()
		}
		func() {
			defer profiling.Track("cull.Frame")()
			scene.Frame(v.tree, v.cullCamera(), v.groups)
			v.ids = v.tree.Harvest(v.space, v.ids)
		}()

		timing := limiter.History().Summary()
		report := frame.Report{
			Timing:  timing,
			Stats:   v.tree.Stats(),
			Visible: len(v.ids),
			Objects: len(v.leaves),
			Profile: profiling.TopN(3),
			Frozen:  v.frozen,
		}
		v.r.Render(v.tree, v.leaves, v.ids, report.Lines())

		if time.Since(lastTitle) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s | %.0f fps", v.title, timing.FPS()))
			lastTitle = time.Now()
		}

		v.window.SwapBuffers()
		glfw.PollEvents()
		limiter.Tick()
	}
}
