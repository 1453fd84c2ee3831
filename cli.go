package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"chipplay/emu/log"
)

type mode byte

const (
	playMode    mode = iota // Play a music file
	renderMode              // Render tracks to WAV
	infoMode                // Show file and track infos
	versionMode             // Show chipplay version
)

type (
	CLI struct {
		Play    Play    `cmd:"" help:"Play a music file."`
		Render  Render  `cmd:"" help:"Render tracks to WAV files."`
		Info    Info    `cmd:"" help:"Show the infos of a music file and its tracks."`
		Version Version `cmd:"" help:"Show chipplay version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"${config_help}" type:"path" placeholder:"FILE"`

		mode mode
	}

	Play struct {
		Path string `arg:"" name:"file" help:"${path_help}" type:"existingfile"`

		Track   int     `short:"t" help:"Track to start with (1-based)." default:"1"`
		Tempo   float64 `help:"Playback speed, 1 is normal. (default: from config)"`
		Mute    int     `help:"Mask of the voices to mute, bit 0 is the first voice."`
		Backend string  `help:"Audio backend, sdl or oto. (default: from config)"`
	}

	Render struct {
		Path string `arg:"" name:"file" help:"${path_help}" type:"existingfile"`

		Out     string `short:"o" help:"Output WAV file. With --all, tracks get numbered files." required:"" type:"path"`
		Track   int    `short:"t" help:"Track to render (1-based)." default:"1"`
		All     bool   `help:"Render all tracks, in parallel."`
		Seconds int    `help:"Maximum length of a track, in seconds. 0 renders up to the end of the fade."`
	}

	Info struct {
		Path string `arg:"" name:"file" help:"${path_help}" type:"existingfile"`

		JSON bool     `name:"json" help:"Output JSON."`
		Out  *outfile `short:"o" help:"Write to file." placeholder:"FILE|stdout|stderr"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"path_help":   "Music file (NSF, NSFE or AY), possibly in a ZIP, 7z, gzip or RAR archive.",
	"log_help":    "Enable logging for specified modules.",
	"config_help": "Configuration file. (default: user config directory)",
}

func parseArgs(args []string) CLI {
	cfg, err := newCLI(args)
	checkf(err, "failed to parse command line")
	return cfg
}

func newCLI(args []string) (CLI, error) {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("chipplay"),
		kong.Description("Game music player for NES (NSF, NSFE) and ZX Spectrum (AY) files."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return cfg, err
	}

	switch strings.Fields(ctx.Command())[0] {
	case "play":
		cfg.mode = playMode
	case "render":
		cfg.mode = renderMode
	case "info":
		cfg.mode = infoMode
	case "version":
		cfg.mode = versionMode
	}
	return cfg, nil
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "play") {
		fmt.Fprint(os.Stderr, `
Keys:
  n/p      next/previous track
  +/-      faster/slower
  1-8      mute/unmute voice
  q        quit
`)
	}

	loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
	var strs []string
	for _, m := range log.ModuleNames() {
		strs = append(strs, "    - "+m)
	}

	fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask,
// and enables debug logs for these modules.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			*lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if *lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		*lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(*lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
