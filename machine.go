package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scout/api"
	"scout/beep"
	"scout/log"
	"scout/prefs"
	"scout/recorder"
	"scout/signal"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StateError
	StateTranscribed
	StateResults
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateError:
		return "error"
	case StateTranscribed:
		return "transcribed"
	case StateResults:
		return "results"
	}
	return "unknown"
}

// Session is the snapshot of user-facing state the display renders from.
// Events is non-empty only in StateResults. The display picks its view
// from State and Transcript together: an error with a transcript still
// shows the transcribed view, overlaid with the error status.
type Session struct {
	State         State
	Status        string
	Transcript    string
	Events        []api.Event
	PendingSearch bool
	PromptOpen    bool
}

// EventSink receives machine output. Implementations must not block;
// the TUI forwards into its message queue.
type EventSink interface {
	SessionUpdate(s Session)
	AudioLevel(rms float64)
	SilenceWarning(active bool)
}

// Shell hides the application surface without terminating the process.
type Shell interface {
	Hide()
}

type backend interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
	Search(ctx context.Context, query string, p api.Preferences) ([]api.Event, error)
}

type locationStore interface {
	Location() (*prefs.Location, error)
	SaveLocation(loc prefs.Location) error
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdStop
	cmdToggle
	cmdSearch
	cmdCancel
	cmdReset
	cmdSaveLocation
	cmdOpenPrompt
	cmdClosePrompt
	cmdTranscribeDone
	cmdSearchDone
)

type command struct {
	kind cmdKind
	gen  uint64

	city    string
	country string

	text   string
	events []api.Event
	err    error
}

// Machine owns the recording session lifecycle. All mutation happens on
// the Run goroutine; public methods only enqueue commands, so any
// goroutine (key handlers, hotkey listener, HTTP completions) may call
// them. The command channel is the one stable entry point: listeners
// registered once always reach current logic.
type Machine struct {
	rec   recorder.Recorder
	be    backend
	store locationStore
	shell Shell
	sink  EventSink

	cmds chan command
	done chan struct{}

	// Run-goroutine state.
	session  Session
	gen      uint64 // bumped on start/cancel/reset; stale completions are dropped
	location *prefs.Location
	gate     *signal.Processor
	silence  *silenceMonitor
	warned   bool

	recordings int
}

func NewMachine(rec recorder.Recorder, be backend, store locationStore, shell Shell, sink EventSink) *Machine {
	return &Machine{
		rec:     rec,
		be:      be,
		store:   store,
		shell:   shell,
		sink:    sink,
		cmds:    make(chan command, 16),
		done:    make(chan struct{}),
		gate:    signal.New(),
		silence: newSilenceMonitor(),
	}
}

func (m *Machine) Start()  { m.send(command{kind: cmdStart}) }
func (m *Machine) Stop()   { m.send(command{kind: cmdStop}) }
func (m *Machine) Toggle() { m.send(command{kind: cmdToggle}) }
func (m *Machine) Search() { m.send(command{kind: cmdSearch}) }
func (m *Machine) Cancel() { m.send(command{kind: cmdCancel}) }
func (m *Machine) Reset()  { m.send(command{kind: cmdReset}) }

func (m *Machine) SaveLocation(city, country string) {
	m.send(command{kind: cmdSaveLocation, city: city, country: country})
}

func (m *Machine) OpenLocationPrompt()  { m.send(command{kind: cmdOpenPrompt}) }
func (m *Machine) CloseLocationPrompt() { m.send(command{kind: cmdClosePrompt}) }

func (m *Machine) send(c command) {
	select {
	case m.cmds <- c:
	case <-m.done:
	}
}

// Close stops the Run loop. In-flight HTTP calls complete on their own
// goroutines and their completions are discarded.
func (m *Machine) Close() {
	close(m.done)
}

// Run processes commands, amplitude levels, and the silence ticker until
// Close. It must run on exactly one goroutine.
func (m *Machine) Run() {
	ticker := time.NewTicker(silenceTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case cmd := <-m.cmds:
			m.handle(cmd)
		case lvl := <-m.rec.Levels():
			// Late samples after stop/cancel must not reach the display.
			if m.session.State != StateRecording {
				continue
			}
			m.gate.Ingest(lvl.RMS)
			m.sink.AudioLevel(lvl.RMS)
		case <-ticker.C:
			m.tickSilence()
		}
	}
}

func (m *Machine) handle(c command) {
	switch c.kind {
	case cmdStart:
		m.handleStart()
	case cmdStop:
		m.handleStop()
	case cmdToggle:
		switch m.session.State {
		case StateRecording:
			m.handleStop()
		case StateIdle, StateError:
			m.handleStart()
		}
	case cmdSearch:
		m.handleSearch()
	case cmdCancel:
		m.handleCancel()
	case cmdReset:
		m.handleReset()
	case cmdSaveLocation:
		m.handleSaveLocation(c.city, c.country)
	case cmdOpenPrompt:
		m.session.PromptOpen = true
		m.emit()
	case cmdClosePrompt:
		m.session.PromptOpen = false
		m.emit()
	case cmdTranscribeDone:
		m.handleTranscribeDone(c)
	case cmdSearchDone:
		m.handleSearchDone(c)
	}
}

func (m *Machine) handleStart() {
	if m.session.State != StateIdle && m.session.State != StateError {
		return
	}
	m.gen++
	m.session.Transcript = ""
	m.session.Events = nil
	m.session.PendingSearch = false
	m.gate.Reset()
	m.silence.Reset()
	m.clearWarning()

	if err := m.rec.Start(); err != nil {
		log.Errorf("capture start: %v", err)
		m.session.State = StateError
		m.session.Status = "Could not start recording: " + err.Error()
		beep.PlayError()
		m.emit()
		return
	}
	log.Info("recording_start")
	m.session.State = StateRecording
	m.session.Status = "Listening… press Alt+E to stop"
	beep.PlayStart()
	m.emit()
}

func (m *Machine) handleStop() {
	if m.session.State != StateRecording {
		return
	}
	log.Info("recording_stop")
	beep.PlayStop()
	m.clearWarning()
	m.session.State = StateProcessing
	m.session.Status = "Transcribing…"
	m.emit()

	path, err := m.rec.Stop()
	if err != nil {
		log.Errorf("capture stop: %v", err)
		m.toError("Recording failed: " + err.Error())
		return
	}
	if path == "" {
		m.toError("Recording failed: no audio captured")
		return
	}
	m.recordings++

	gen := m.gen
	go func() {
		started := time.Now()
		text, err := m.be.Transcribe(context.Background(), path)
		log.APICall("/transcribe-file", err == nil, time.Since(started))
		m.send(command{kind: cmdTranscribeDone, gen: gen, text: text, err: err})
	}()
}

func (m *Machine) handleTranscribeDone(c command) {
	if c.gen != m.gen || m.session.State != StateProcessing {
		return // stale: the session moved on while the call was in flight
	}
	if c.err != nil {
		log.Errorf("transcription: %v", c.err)
		m.toError(c.err.Error())
		return
	}
	text := strings.TrimSpace(c.text)
	if text == "" {
		m.toError("No speech detected — try again")
		return
	}
	log.TranscriptionText(text)
	m.session.State = StateTranscribed
	m.session.Transcript = text
	m.session.Status = "Press Enter to find events"
	m.emit()
}

func (m *Machine) handleSearch() {
	if strings.TrimSpace(m.session.Transcript) == "" {
		return
	}
	switch m.session.State {
	case StateTranscribed, StateResults:
	case StateError:
		// A failed search leaves the transcript in place; Enter retries.
	default:
		return
	}

	loc := m.ensureLocation()
	if loc == nil {
		m.session.PendingSearch = true
		m.session.PromptOpen = true
		m.session.State = StateTranscribed
		m.session.Status = "Tell us where you are so we can find events near you"
		m.emit()
		return
	}

	m.session.State = StateProcessing
	m.session.Status = "Searching for free events…"
	m.session.Events = nil
	m.emit()

	gen := m.gen
	query := m.session.Transcript
	prefsObj := api.DefaultPreferences(loc.City, loc.Country)
	go func() {
		started := time.Now()
		events, err := m.be.Search(context.Background(), query, prefsObj)
		log.APICall("/search", err == nil, time.Since(started))
		m.send(command{kind: cmdSearchDone, gen: gen, events: events, err: err})
	}()
}

func (m *Machine) handleSearchDone(c command) {
	if c.gen != m.gen || m.session.State != StateProcessing {
		return
	}
	if c.err != nil {
		log.Errorf("search: %v", c.err)
		m.toError("Search failed — is the event agent running?")
		return
	}
	log.SearchResults(m.session.Transcript, len(c.events))
	if len(c.events) == 0 {
		m.session.State = StateTranscribed
		m.session.Status = "No events found — try a different search"
		m.emit()
		return
	}
	m.session.State = StateResults
	m.session.Events = c.events
	m.session.Status = fmt.Sprintf("Found %d free events", len(c.events))
	m.emit()
}

// ensureLocation returns the cached preference, falling back to the
// store. A nil return means the caller must prompt; read failures are
// logged and treated as "no saved location".
func (m *Machine) ensureLocation() *prefs.Location {
	if m.location != nil {
		return m.location
	}
	loc, err := m.store.Location()
	if err != nil {
		log.Warnf("reading saved location: %v", err)
		return nil
	}
	if loc == nil {
		return nil
	}
	m.location = loc
	return loc
}

func (m *Machine) handleSaveLocation(city, country string) {
	city = strings.TrimSpace(city)
	if city == "" {
		return
	}
	loc := prefs.Location{City: city, Country: strings.TrimSpace(country)}
	if err := m.store.SaveLocation(loc); err != nil {
		log.Errorf("saving location: %v", err)
		m.session.Status = "Could not save location: " + err.Error()
		m.emit()
		return
	}
	m.location = &loc
	m.session.PromptOpen = false

	if m.session.PendingSearch {
		// Exactly once: clear before re-invoking so a later save
		// doesn't re-trigger the search.
		m.session.PendingSearch = false
		m.emit()
		m.handleSearch()
		return
	}
	m.emit()
}

func (m *Machine) handleCancel() {
	if m.session.State == StateRecording {
		if err := m.rec.Cancel(); err != nil {
			// Cancellation always succeeds from the user's point of view.
			log.Warnf("capture cancel: %v", err)
		}
	}
	m.gen++
	m.clearWarning()
	m.session = Session{State: StateIdle}
	m.emit()
	m.shell.Hide()
}

func (m *Machine) handleReset() {
	m.gen++
	m.clearWarning()
	m.session = Session{State: StateIdle}
	m.emit()
}

func (m *Machine) toError(status string) {
	m.session.State = StateError
	m.session.Status = status
	beep.PlayError()
	m.emit()
}

func (m *Machine) tickSilence() {
	if m.session.State != StateRecording {
		return
	}
	switch m.silence.Tick(m.gate.Target() > 0) {
	case silenceWarn:
		log.Info("no_voice_warning")
		m.warned = true
		m.sink.SilenceWarning(true)
		beep.PlayError()
	case silenceClear:
		m.warned = false
		m.sink.SilenceWarning(false)
	}
}

func (m *Machine) clearWarning() {
	if m.warned {
		m.warned = false
		m.sink.SilenceWarning(false)
	}
}

// Recordings reports how many recordings were completed this session.
func (m *Machine) Recordings() int { return m.recordings }

func (m *Machine) emit() {
	m.sink.SessionUpdate(m.session)
}
