//go:build gui

package gui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	waveCols = 44
	waveRows = 13
)

var (
	dotColorRec  = color.RGBA{255, 80, 160, 255}
	dotColorIdle = color.RGBA{90, 90, 90, 255}
)

// WaveWidget draws the amplitude wave as a row of bobbing dots, one per
// column, offset by the product of two phase-shifted sines over column
// position and wall-clock time.
type WaveWidget struct {
	widget.BaseWidget
	mu        sync.Mutex
	level     float64
	target    float64
	recording bool
	noVoice   bool
	stopCh    chan struct{}
}

func NewWaveWidget() *WaveWidget {
	w := &WaveWidget{stopCh: make(chan struct{})}
	w.ExtendBaseWidget(w)
	go w.animate()
	return w
}

func (w *WaveWidget) SetRecording(r bool) {
	w.mu.Lock()
	w.recording = r
	if !r {
		w.level = 0
		w.target = 0
		w.noVoice = false
	}
	w.mu.Unlock()
}

func (w *WaveWidget) SetLevel(l float64) {
	w.mu.Lock()
	if w.recording {
		w.target = l
	}
	w.mu.Unlock()
}

func (w *WaveWidget) SetNoVoice(v bool) {
	w.mu.Lock()
	w.noVoice = v
	w.mu.Unlock()
}

func (w *WaveWidget) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}

func (w *WaveWidget) animate() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.mu.Lock()
			w.level += (w.target - w.level) * 0.2
			rec := w.recording
			w.mu.Unlock()
			if rec {
				fyne.Do(func() {
					w.Refresh()
				})
			}
		}
	}
}

func (w *WaveWidget) MinSize() fyne.Size {
	return fyne.NewSize(float32(waveCols*7), float32(waveRows*7))
}

func (w *WaveWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &waveRenderer{wave: w}
	r.dots = make([]*canvas.Circle, waveCols)
	for x := range r.dots {
		r.dots[x] = canvas.NewCircle(dotColorIdle)
	}
	return r
}

type waveRenderer struct {
	wave *WaveWidget
	dots []*canvas.Circle
	size fyne.Size
}

func (r *waveRenderer) Layout(size fyne.Size) {
	r.size = size
	r.place()
}

func (r *waveRenderer) place() {
	r.wave.mu.Lock()
	level := r.wave.level
	recording := r.wave.recording
	noVoice := r.wave.noVoice
	r.wave.mu.Unlock()

	cellW := r.size.Width / float32(waveCols)
	dotSize := cellW * 0.55
	midY := r.size.Height / 2

	maxAmp := 0.4 * float64(r.size.Height)
	amp := math.Min(maxAmp, level*500*maxAmp)
	if !recording || level < 0.01 {
		amp = 0
	}
	t := float64(time.Now().UnixNano()) / float64(time.Second)

	c := dotColorIdle
	if recording && !noVoice {
		c = dotColorRec
	}
	for x, dot := range r.dots {
		wobble := math.Sin(float64(x)*0.35+t*8.0) * math.Sin(float64(x)*0.13-t*5.0)
		y := midY - float32(amp*wobble)
		dot.FillColor = c
		dot.Move(fyne.NewPos(float32(x)*cellW+(cellW-dotSize)/2, y-dotSize/2))
		dot.Resize(fyne.NewSize(dotSize, dotSize))
	}
}

func (r *waveRenderer) MinSize() fyne.Size {
	return r.wave.MinSize()
}

func (r *waveRenderer) Refresh() {
	r.place()
	for _, dot := range r.dots {
		dot.Refresh()
	}
}

func (r *waveRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, len(r.dots))
	for i, d := range r.dots {
		objs[i] = d
	}
	return objs
}

func (r *waveRenderer) Destroy() {
	r.wave.Stop()
}
