package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"scout/audio"
	"scout/beep"
	"scout/encoder"
	"scout/log"
	"scout/recorder"
)

// stdioSink prints machine output as parseable lines so a driving
// script can assert on them.
type stdioSink struct {
	mu   sync.Mutex
	last Session
}

func (s *stdioSink) SessionUpdate(sess Session) {
	s.mu.Lock()
	s.last = sess
	s.mu.Unlock()
	fmt.Printf("STATE %s prompt=%v pending=%v events=%d status=%q transcript=%q\n",
		sess.State, sess.PromptOpen, sess.PendingSearch, len(sess.Events), sess.Status, sess.Transcript)
}

func (s *stdioSink) AudioLevel(float64) {}

func (s *stdioSink) SilenceWarning(on bool) {
	fmt.Printf("SILENCE %v\n", on)
}

func (s *stdioSink) waitState(name string) {
	for {
		s.mu.Lock()
		cur := s.last.State.String()
		s.mu.Unlock()
		if cur == name {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type stdioShell struct{}

func (stdioShell) Hide() { fmt.Println("HIDE") }

// runTestMode replays a WAV file through the whole pipeline, driven by
// commands on stdin. No terminal UI, no real audio, no hotkey.
func runTestMode(wavPath string, be backend, store locationStore) {
	beep.Disable()

	fakeCtx, err := audio.NewFakeContext(wavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}
	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate, Channels: encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()
	fakeCapture := capture.(*audio.FakeCapture)

	sink := &stdioSink{}
	machine := NewMachine(recorder.New(capture, "flac"), be, store, stdioShell{}, sink)
	go machine.Run()
	defer machine.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "TOGGLE":
			machine.Toggle()
		case cmd == "SEARCH":
			machine.Search()
		case cmd == "CANCEL":
			machine.Cancel()
		case cmd == "RESET":
			machine.Reset()
		case cmd == "WAIT_AUDIO_DONE":
			<-fakeCapture.AudioDone()
		case cmd == "QUIT":
			log.SessionEnd(machine.Recordings())
			return
		case strings.HasPrefix(cmd, "LOCATION "):
			machine.SaveLocation(cmd[len("LOCATION "):], "")
		case strings.HasPrefix(cmd, "WAIT "):
			sink.waitState(cmd[len("WAIT "):])
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(cmd[len("SLEEP "):]); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		}
	}
}
