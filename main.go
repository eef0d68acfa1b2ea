package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/juju/errors"
	"github.com/rs/zerolog"

	"github.com/flipmouse/classifier"
	"github.com/flipmouse/device"
	"github.com/flipmouse/keymaps"
	"github.com/flipmouse/logging"
	"github.com/flipmouse/trace"
)

type options struct {
	config       classifier.Config
	debug        logging.Mask
	device       string
	keymap       string
	keyboardSink string
	logPath      string
	record       string
	replay       string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	o := &options{config: classifier.DefaultConfig()}
	fs := flag.NewFlagSet("flipmouse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: flipmouse [flags] [debugmask]\n\n")
		fmt.Fprintf(stderr, "debugmask bits: 0x01 mode, 0x02 timing, 0x04 msc events,\n")
		fmt.Fprintf(stderr, "  0x10 input, 0x20 keyboard out, 0x40 mouse out, 0x80 muted\n\n")
		fs.PrintDefaults()
	}

	distance := fs.Int("distance", int(o.config.Distance), "pointer distance per scan tick")
	fs.DurationVar(&o.config.LongPress, "long-press", o.config.LongPress, "hold time that toggles mouse mode")
	fs.BoolVar(&o.config.Scroll, "scroll", false, "direction keys scroll instead of move")
	fs.BoolVar(&o.config.WheelScans, "wheel-scans", false, "number pad scan codes drive the wheel")
	fs.UintVar(&o.config.Decimation, "decimation", o.config.Decimation, "emit one wheel step per this many wheel scans")
	fs.BoolVar(&o.config.ScanButtons, "scan-buttons", false, "button scan codes click")
	fs.StringVar(&o.device, "device", "", "use this input device instead of discovering by name")
	fs.StringVar(&o.keymap, "keymap", "", "force keymap: phone or laptop (default: by device name)")
	fs.StringVar(&o.keyboardSink, "keyboard-sink", "mirror", "keyboard pass-through: mirror (per device) or uinput (shared, drops codes above 248 such as * and #)")
	fs.StringVar(&o.logPath, "log", logging.DefaultLogPath, "append log to this file, empty to disable")
	fs.StringVar(&o.record, "record", "", "record raw input events to this file")
	fs.StringVar(&o.replay, "replay", "", "classify a recorded trace and print the decisions")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.config.Distance = int32(*distance)
	if o.config.Distance < 1 {
		return nil, errors.NotValidf("distance %d", *distance)
	}
	if o.config.Decimation < 1 {
		return nil, errors.NotValidf("decimation %d", o.config.Decimation)
	}
	switch o.keyboardSink {
	case "mirror", "uinput":
	default:
		return nil, errors.NotValidf("keyboard sink %q", o.keyboardSink)
	}
	if o.keymap != "" {
		if _, ok := keymaps.ParseKeyboardType(o.keymap); !ok {
			return nil, errors.NotValidf("keymap %q", o.keymap)
		}
	}

	switch fs.NArg() {
	case 0:
	case 1:
		m, err := logging.ParseMask(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		o.debug = m
	default:
		return nil, errors.Errorf("unexpected arguments %v", fs.Args()[1:])
	}
	return o, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	o, err := parseArgs(args, stderr)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "flipmouse: %v\n", err)
		return 2
	}

	if o.replay != "" {
		if err := replay(o, stdout); err != nil {
			fmt.Fprintf(stderr, "flipmouse: %v\n", err)
			return 1
		}
		return 0
	}

	log, logFile, err := logging.New(stdout, o.logPath, o.debug)
	if err != nil {
		fmt.Fprintf(stderr, "flipmouse: setup logging: %v\n", err)
		return 1
	}
	defer logFile.Close()

	if err := serve(o, log); err != nil {
		log.Error().Msg(errors.ErrorStack(err))
		fmt.Fprintf(stderr, "flipmouse: %v\n", err)
		return 1
	}
	return 0
}

func replay(o *options, stdout io.Writer) error {
	kt := keymaps.KbdTypePhone
	if o.keymap != "" {
		kt, _ = keymaps.ParseKeyboardType(o.keymap)
	}
	km := keymaps.CreateDefaultKeyMappingProvider().GetMapping(kt)

	f, err := os.Open(o.replay)
	if err != nil {
		return errors.Annotate(err, "replay")
	}
	defer f.Close()

	log := zerolog.New(zerolog.ConsoleWriter{Out: stdout, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}})
	c := classifier.New(o.config, km, log, o.debug)
	steps, err := trace.Replay(f, c, classifier.NewState(o.config))
	if err != nil {
		return errors.Annotatef(err, "replay %s", o.replay)
	}
	return trace.Print(stdout, steps)
}

func serve(o *options, log zerolog.Logger) error {
	log.Info().Stringer("debug", o.debug).Msg("starting virtual mouse service")

	var devs []*evdev.InputDevice
	if o.device != "" {
		dev, err := device.OpenInputDevice(o.device)
		if err != nil {
			return err
		}
		devs = append(devs, dev)
	} else {
		found, err := device.FindInputDevices(device.InputDir, keymaps.IsWanted)
		if err != nil {
			return errors.Annotate(err, "found no input devices")
		}
		devs = found
	}
	log.Info().Int("count", len(devs)).Msg("found input devices")

	opts := device.Options{
		Config:         o.config,
		Keymaps:        keymaps.CreateDefaultKeyMappingProvider(),
		SharedKeyboard: o.keyboardSink == "uinput",
		Debug:          o.debug,
		Log:            logging.Subsystem(log, "session"),
	}
	if o.keymap != "" {
		opts.Keymap, opts.ForceKeymap = keymaps.ParseKeyboardType(o.keymap)
	}
	if o.record != "" {
		rec, err := trace.Create(o.record)
		if err != nil {
			return err
		}
		defer rec.Close()
		opts.Recorder = rec
	}

	session, err := device.NewSession(devs, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("virtual mouse active")
	if err := session.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("shutting down")
	return nil
}
