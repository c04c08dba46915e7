package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"go-midiparse/capture"
	"go-midiparse/config"
	"go-midiparse/debug"
	"go-midiparse/metrics"
	"go-midiparse/midi"
	"go-midiparse/output"
	"go-midiparse/sequencer"
	"go-midiparse/theme"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		configPath  string
		inputFormat string
		format      string
		chunkSize   int
		maxSysEx    int
		noColor     bool
		logLevel    string
		logFile     string
		metricsAddr string
		palette     string
		showStats   bool
		showNotes   bool
	)

	flagSet := pflag.NewFlagSet("go-midiparse", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "config file (default ~/.config/go-midiparse/config.toml)")
	flagSet.StringVar(&inputFormat, "input-format", "", "input encoding: raw or hex")
	flagSet.StringVar(&format, "format", "", "output format: text, json or cbor")
	flagSet.IntVar(&chunkSize, "chunk-size", 0, "bytes per parser feed")
	flagSet.IntVar(&maxSysEx, "max-sysex", 0, "drop sysex messages longer than this (0 = unlimited)")
	flagSet.BoolVar(&noColor, "no-color", false, "disable colored text output")
	flagSet.StringVar(&logLevel, "log-level", "", "debug log level")
	flagSet.StringVar(&logFile, "log-file", "", "write the debug log to this file")
	flagSet.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	flagSet.StringVar(&palette, "palette", "", "GIMP .gpl palette for text output")
	flagSet.BoolVar(&showStats, "stats", false, "print parser statistics to stderr at exit")
	flagSet.BoolVar(&showNotes, "notes", false, "print recorded notes to stderr at exit")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Flags win over the config file.
	if flagSet.Changed("input-format") {
		cfg.InputFormat = inputFormat
	}
	if flagSet.Changed("format") {
		cfg.OutputFormat = format
	}
	if flagSet.Changed("chunk-size") {
		cfg.ChunkSize = chunkSize
	}
	if flagSet.Changed("max-sysex") {
		cfg.MaxSysExBytes = maxSysEx
	}
	if noColor {
		cfg.Color = false
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flagSet.Changed("log-file") {
		cfg.Log.File = logFile
		cfg.Log.Enabled = true
	}
	if flagSet.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	if flagSet.Changed("palette") {
		cfg.Palette = palette
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := debug.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	if cfg.Log.Enabled {
		if err := debug.Enable(cfg.Log.File); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	theme.Configure(cfg.Color)
	var pal *theme.Palette
	if cfg.Palette != "" {
		if pal, err = theme.LoadGPL(cfg.Palette); err != nil {
			return err
		}
	}
	th := theme.New(pal)

	inFormat, err := capture.ParseFormat(cfg.InputFormat)
	if err != nil {
		return err
	}
	enc, err := output.New(cfg.OutputFormat, stdout, th)
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr)
		defer stop()
	}

	s := &stream{
		parser: midi.NewParser(
			midi.WithLogger(debug.Logger()),
			midi.WithLimits(midi.Limits{MaxSysExBytes: cfg.MaxSysExBytes}),
		),
		enc:      enc,
		recorder: sequencer.NewRecorder(),
		buf:      make([]byte, cfg.ChunkSize),
	}

	start := time.Now()
	paths := flagSet.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		if err := s.file(path, stdin, inFormat); err != nil {
			enc.Flush()
			return err
		}
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	stats := s.parser.Stats()
	debug.Log("main", "parsed %d bytes into %d messages in %s", stats.Bytes, s.messages, debug.Since(start))

	if showStats {
		printStats(stderr, th, stats, s.messages)
	}
	if showNotes {
		s.recorder.Flush(s.clock)
		printNotes(stderr, th, s.recorder.Notes())
	}
	return nil
}

// stream feeds one parser across every input so running status and sysex
// carry over file boundaries.
type stream struct {
	parser   *midi.Parser
	enc      output.Encoder
	recorder *sequencer.Recorder
	buf      []byte
	prev     midi.Stats
	clock    int
	messages int
}

func (s *stream) file(path string, stdin io.Reader, f capture.Format) error {
	var rc io.ReadCloser
	if path == "-" {
		rc = io.NopCloser(stdin)
	} else {
		var err error
		if rc, err = capture.Open(path); err != nil {
			return err
		}
	}
	defer rc.Close()

	debug.Log("main", "reading %s as %s", path, f)
	if err := s.copy(capture.NewReader(rc, f)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (s *stream) copy(r io.Reader) error {
	for {
		n, err := r.Read(s.buf)
		if n > 0 {
			if ferr := s.feed(s.buf[:n]); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *stream) feed(chunk []byte) error {
	metrics.RecordBytes(len(chunk))
	if err := s.parser.Feed(chunk); err != nil {
		// Decode failures drop the offending token only.
		log := debug.Logger()
		log.Warn().Err(err).Msg("decode failed")
	}

	for msg := range s.parser.Messages() {
		if msg.Type == midi.TypeTimingClock {
			s.clock++
		}
		s.recorder.Add(s.clock, msg)
		metrics.RecordMessage(msg)
		s.messages++
		if err := s.enc.Encode(msg); err != nil {
			return err
		}
	}

	cur := s.parser.Stats()
	metrics.RecordStats(s.prev, cur)
	s.prev = cur
	debug.LogEvery(64, "main", "fed %d bytes", cur.Bytes)
	return nil
}

func serveMetrics(addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log := debug.Logger()
			log.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func printStats(w io.Writer, th *theme.Theme, st midi.Stats, messages int) {
	row := func(label string, v int) {
		fmt.Fprintf(w, "%s %d\n", th.Dim(fmt.Sprintf("%-22s", label)), v)
	}
	row("bytes", st.Bytes)
	row("tokens", st.Tokens)
	row("messages", messages)
	row("resyncs", st.Resyncs())
	row("  orphan data", st.OrphanData)
	row("  unknown status", st.UnknownStatus)
	row("  stray end of sysex", st.StrayEndOfExclusive)
	row("  aborted messages", st.AbortedMessages)
	row("  aborted sysex", st.AbortedSysEx)
	row("  oversize sysex", st.OversizeSysEx)
	if st.DecodeErrors > 0 {
		fmt.Fprintf(w, "%s %d\n", th.Warn(fmt.Sprintf("%-22s", "decode errors")), st.DecodeErrors)
	}
}

func printNotes(w io.Writer, th *theme.Theme, notes []sequencer.Note) {
	for _, n := range notes {
		fmt.Fprintf(w, "%s pitch=%-3d vel=%-3d start=%d end=%d\n",
			th.Label(midi.TypeNoteOn), n.Pitch, n.Velocity, n.Start, n.End)
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `go-midiparse: decode a MIDI 1.0 byte stream into messages.

Reads each file in turn (stdin when none or "-") and feeds the bytes to a
single parser, so running status and sysex continue across files. Files
ending in .gz, .zst or .lz4 are decompressed. Hex captures are read with
--input-format hex.

Settings come from ~/.config/go-midiparse/config.toml; flags override them.
With --notes, note ticks count timing clock (F8) messages.

Usage:
  go-midiparse [flags] [file ...]

Examples:
  # Decode a raw capture
  go-midiparse take.mid.raw

  # Hex dump to JSON lines
  echo "90 3C 64 F8 3E 64" | go-midiparse --input-format hex --format json

Flags:
`)
	flagSet.PrintDefaults()
}
