package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"scout/api"
	"scout/audio"
	"scout/beep"
	"scout/doctor"
	"scout/encoder"
	"scout/hotkey"
	"scout/log"
	"scout/prefs"
	"scout/recorder"
	"scout/shutdown"
)

var version = "dev"

var guiMode bool

// Set by initGUI before run() when built with -tags gui.
var guiSinkImpl EventSink
var guiShellImpl Shell

var shutdownOnce sync.Once

func gracefulShutdown(m *Machine) {
	shutdownOnce.Do(func() {
		if m != nil {
			log.SessionEnd(m.Recordings())
			m.Close()
		}
		log.Close()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

// errStore stands in when the real preference store fails to open:
// reads look unset, writes report the original failure.
type errStore struct{ err error }

func (s errStore) Location() (*prefs.Location, error) { return nil, nil }
func (s errStore) SaveLocation(prefs.Location) error  { return s.err }

func run() {
	// A .env next to the binary may carry SCOUT_API_URL and friends.
	godotenv.Load()

	apiDefault := os.Getenv("SCOUT_API_URL")
	if apiDefault == "" {
		apiDefault = api.DefaultBaseURL
	}

	apiFlag := flag.String("api", apiDefault, "Event agent base URL")
	// Consumed before run() by main(); registered so Parse accepts it.
	flag.Bool("gui", false, "Run as a desktop overlay (requires a -tags gui build)")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	formatFlag := flag.String("format", "flac", "Recording format: flac or wav")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	prefsDirFlag := flag.String("prefsdir", "", "preference store directory (default: OS-specific location)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	flag.Parse()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("scout %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(*apiFlag))
	}

	switch *formatFlag {
	case "flac", "wav":
	default:
		fmt.Printf("Error: unknown format %q (use flac or wav)\n", *formatFlag)
		os.Exit(1)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	log.SessionStart(*apiFlag, *formatFlag)

	client := api.NewClient(*apiFlag)

	prefsDir := *prefsDirFlag
	if prefsDir == "" {
		prefsDir, err = prefs.DefaultDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot resolve prefs dir: %v\n", err)
		}
	}
	var store locationStore
	if prefsDir != "" {
		if s, err := prefs.Open(prefsDir); err != nil {
			log.Errorf("prefs store open: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: preference store unavailable: %v\n", err)
			store = errStore{err: err}
		} else {
			defer s.Close()
			store = s
		}
	} else {
		store = errStore{err: fmt.Errorf("no preference directory")}
	}

	if *testFlag {
		args := flag.Args()
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: scout -test <wav-file>")
			os.Exit(1)
		}
		runTestMode(args[0], client, store)
		return
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			fmt.Printf("Warning: device %q not found, using default\n", *deviceFlag)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	captureDevice, err := ctx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Printf("Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	rec := recorder.New(captureDevice, *formatFlag)

	var snk EventSink = tuiSink{}
	var shell Shell = tuiShell{}
	if guiMode {
		snk = guiSinkImpl
		shell = guiShellImpl
	}

	machine := NewMachine(rec, client, store, shell, snk)
	go machine.Run()

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		if hint, _ := hotkey.Diagnose(); hint != "" {
			fmt.Println(hint)
		}
		os.Exit(1)
	}
	defer hk.Unregister()
	go func() {
		for range hk.Toggled() {
			machine.Toggle()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		gracefulShutdown(machine)
	}()

	go beep.Init()

	if guiMode {
		select {} // fyne owns the foreground; signals end the process
	}

	p := NewTUIProgram(machine, deviceLineText(selectedDevice))
	SetTUIProgram(p)
	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		os.Exit(1)
	}
	gracefulShutdown(machine)
}
