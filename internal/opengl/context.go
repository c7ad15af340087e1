package opengl

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// GL calls must stay on the thread that owns the context.
func init() {
	runtime.LockOSThread()
}

// Window owns a GLFW window and its OpenGL context. Texture work does not need a
// visible surface, so the default configuration keeps the window hidden.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string
}

type WindowConfig struct {
	Width        int
	Height       int
	Title        string
	Visible      bool
	ContextMajor int
	ContextMinor int
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:        64,
		Height:       64,
		Title:        "texarray",
		Visible:      false,
		ContextMajor: 4,
		ContextMinor: 1,
	}
}

// NewContextWindow creates a window with a core-profile OpenGL context and makes
// that context current on the calling thread.
func NewContextWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize GLFW")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, config.ContextMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, config.ContextMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Visible, boolToInt(config.Visible))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "failed to create window")
	}
	handle.MakeContextCurrent()

	return &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}, nil
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
