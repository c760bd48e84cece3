//go:build gui

package main

import (
	"fmt"
	"runtime"

	"scout/gui"
	"scout/signal"
)

var guiApp *gui.App

// guiSink translates machine output into panel updates. Raw amplitude
// runs through the noise gate here; the widget's frame loop does the
// smoothing toward the gated target.
type guiSink struct {
	app  *gui.App
	proc *signal.Processor
}

func (s *guiSink) SessionUpdate(sess Session) {
	s.app.SetStatus(sess.Status)
	if sess.State == StateRecording {
		s.proc.Reset()
	}
	s.app.SetRecording(sess.State == StateRecording)

	switch {
	case sess.State == StateResults:
		lines := make([]string, 0, len(sess.Events)*2)
		for _, ev := range sess.Events {
			lines = append(lines, fmt.Sprintf("%s — %s %s", ev.Title, ev.Date, ev.Time))
			detail := ev.Location
			if ev.Price != "" {
				detail += "  ·  " + ev.Price
			}
			lines = append(lines, "    "+detail)
		}
		s.app.SetBody(lines...)
		s.app.Show()
	case sess.Transcript != "":
		s.app.SetBody("You said: " + sess.Transcript)
		s.app.Show()
	case sess.State == StateIdle:
		s.app.SetBody("")
	}
}

func (s *guiSink) AudioLevel(rms float64) {
	s.proc.Ingest(rms)
	s.app.SetLevel(s.proc.Target())
}

func (s *guiSink) SilenceWarning(on bool) { s.app.SetNoVoice(on) }

func initGUI() {
	guiMode = true

	// Fyne/GLFW needs the main OS thread.
	runtime.LockOSThread()

	guiApp = gui.NewApp(func() {
		run()
	})
	guiSinkImpl = &guiSink{app: guiApp, proc: signal.New()}
	guiShellImpl = guiApp
	if err := gui.Run(guiApp); err != nil {
		panic(err)
	}
}
