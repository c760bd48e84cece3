// Package doctor runs interactive end-to-end diagnostics: backend
// reachability, hotkey delivery, microphone capture with a live
// transcription round-trip, the preference store, and the clipboard.
package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scout/api"
	"scout/audio"
	"scout/clipboard"
	"scout/encoder"
	"scout/hotkey"
	"scout/prefs"
	"scout/recorder"
)

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(apiURL string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("scout doctor - interactive system diagnostics")
	fmt.Println("=============================================")

	client := api.NewClient(apiURL)

	allPass := true
	if !checkBackend(client) {
		allPass = false
	}
	if !checkHotkey() {
		allPass = false
	}
	if allPass && !checkMicAndTranscription(client) {
		allPass = false
	}
	if !checkPrefs() {
		allPass = false
	}
	if !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkBackend(client *api.Client) bool {
	fmt.Println()
	fmt.Println("[1/5] Event agent backend")
	fmt.Printf("Checking %s...\n", client.BaseURL())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		fmt.Printf("  FAIL: backend not reachable: %v\n", err)
		fmt.Println("        start it, or pass -api with the right address")
		return false
	}
	fmt.Println("  PASS: backend reachable")
	return true
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[2/5] Hotkey detection")
	fmt.Println("Press Alt+E...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		if hint, _ := hotkey.Diagnose(); hint != "" {
			fmt.Printf("        %s\n", hint)
		}
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Toggled():
		fmt.Println("  PASS: hotkey detected")
		// The listener may leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicAndTranscription(client *api.Client) bool {
	fmt.Println()
	fmt.Println("[3/5] Microphone and transcription")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	device := &devices[0]
	fmt.Printf("Using device: %s\n", device.Name)
	if audio.IsBluetooth(device.Name) {
		fmt.Println("  Note: bluetooth mics often capture at degraded quality")
	}

	capture, err := ctx.NewCapture(device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Printf("  FAIL: cannot open capture device: %v\n", err)
		return false
	}
	defer capture.Close()

	rec := recorder.New(capture, "flac")
	fmt.Print("Speak for 3 seconds")
	if err := rec.Start(); err != nil {
		fmt.Printf("\n  FAIL: recording error: %v\n", err)
		return false
	}
	for i := 0; i < 6; i++ {
		time.Sleep(500 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" done")

	path, err := rec.Stop()
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if path == "" {
		fmt.Println("  FAIL: no audio captured")
		return false
	}

	fmt.Println("  Transcribing...")
	tctx, tcancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer tcancel()
	text, err := client.Transcribe(tctx, path)
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		fmt.Println("  FAIL: no speech detected in recording")
		return false
	}
	fmt.Printf("  PASS: transcribed %q\n", text)
	return true
}

func checkPrefs() bool {
	fmt.Println()
	fmt.Println("[4/5] Preference store")

	dir, err := prefs.DefaultDir()
	if err != nil {
		fmt.Printf("  FAIL: cannot resolve prefs dir: %v\n", err)
		return false
	}
	store, err := prefs.Open(dir)
	if err != nil {
		fmt.Printf("  FAIL: cannot open store at %s: %v\n", dir, err)
		return false
	}
	defer store.Close()

	loc, err := store.Location()
	if err != nil {
		fmt.Printf("  FAIL: cannot read saved location: %v\n", err)
		return false
	}
	if loc == nil {
		fmt.Println("  PASS: store opens; no location saved yet")
	} else {
		fmt.Printf("  PASS: saved location %q\n", loc.City)
	}
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[5/5] Clipboard")

	sentinel := "scout-doctor-" + time.Now().Format("150405")
	if err := clipboard.Copy(sentinel); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if got != sentinel {
		fmt.Printf("  FAIL: clipboard round-trip mismatch (got %q)\n", got)
		return false
	}
	fmt.Println("  PASS: clipboard round-trip verified")
	return true
}
