//go:build gui

package gui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// App is a small frameless always-on-top panel: the wave while
// recording, then the transcript and event list. It stays hidden in
// standby; the hotkey brings it up.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	wave    *WaveWidget
	status  *widget.Label
	body    *widget.Label
	onReady func()
	posX    int
	posY    int
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.scout.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	// Primary monitor work area for positioning
	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("scout")
	}

	a.wave = NewWaveWidget()
	a.status = widget.NewLabel("")
	a.status.Alignment = fyne.TextAlignCenter
	a.body = widget.NewLabel("")
	a.body.Wrapping = fyne.TextWrapWord

	a.window.SetContent(container.NewVBox(a.wave, a.status, a.body))
	a.window.SetPadded(false)

	size := a.window.Content().MinSize()
	a.window.Resize(size)

	// Bottom-center, above the dock
	a.posX = (screenW - int(size.Width)) / 2
	a.posY = screenH - int(size.Height) - 20

	go a.onReady()

	// Event loop runs with the window hidden until the first recording
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
}

func (a *App) Hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
	})
}

func (a *App) SetRecording(r bool) {
	a.wave.SetRecording(r)
	if r {
		a.SetBody("")
		a.Show()
	}
}

func (a *App) SetLevel(level float64) {
	a.wave.SetLevel(level)
}

func (a *App) SetNoVoice(v bool) {
	a.wave.SetNoVoice(v)
}

func (a *App) SetStatus(text string) {
	fyne.Do(func() {
		a.status.SetText(text)
	})
}

// SetBody replaces the text block under the wave: the transcript, or
// the rendered event list.
func (a *App) SetBody(lines ...string) {
	text := strings.Join(lines, "\n")
	fyne.Do(func() {
		a.body.SetText(text)
	})
}
