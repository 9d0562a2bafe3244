// Command lld runs the LLD linker in-process through the go-lld bridge.
//
//	lld -flavor elf -- -o app main.o
//	lld -flavor wasm -backend reactor -wasm lld.wasm -- -o app.wasm main.o
//	lld -i -backend reactor -wasm lld.wasm
//
// Diagnostics go to stderr. The exit status is 1 when the link fails and 2
// for usage or bridge errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	lld "github.com/wippyai/go-lld"
	lldErrors "github.com/wippyai/go-lld/errors"
	"github.com/wippyai/go-lld/native"
	"github.com/wippyai/go-lld/reactor"
)

const (
	exitOK          = 0
	exitLinkFailure = 1
	exitUsage       = 2
)

const (
	backendNative  = "native"
	backendReactor = "reactor"
)

type config struct {
	backend     string
	wasm        string
	dir         string
	logLevel    string
	args        []string
	flavor      lld.Flavor
	logJSON     bool
	interactive bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Getenv, os.Stderr))
}

func run(ctx context.Context, argv []string, getenv func(string) string, stderr io.Writer) int {
	cfg, err := parseFlags(argv, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	log, err := newLogger(cfg.logLevel, cfg.logJSON, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer func() { _ = log.Sync() }()
	lld.SetLogger(log)
	reactor.SetLogger(log)

	bridge, err := openBridge(ctx, cfg, log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	defer bridge.Close(ctx)

	if cfg.interactive {
		if err := runInteractive(ctx, bridge, cfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		return exitOK
	}

	res, err := bridge.Invoke(ctx, cfg.flavor, cfg.args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if res.Messages != "" {
		fmt.Fprint(stderr, res.Messages)
		if res.Messages[len(res.Messages)-1] != '\n' {
			fmt.Fprintln(stderr)
		}
	}
	if !res.Success {
		return exitLinkFailure
	}
	return exitOK
}

func parseFlags(argv []string, getenv func(string) string, output io.Writer) (*config, error) {
	fs := flag.NewFlagSet("lld", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: lld -flavor <elf|wasm|macho|coff|generic> [-backend native|reactor] [-wasm lld.wasm] -- linker args...")
		fmt.Fprintln(output, "       lld -i [-backend native|reactor] [-wasm lld.wasm]  (interactive mode)")
		fs.PrintDefaults()
	}

	var (
		flavorName  = fs.String("flavor", "generic", "Linker flavor (elf, wasm, macho, coff, generic)")
		backend     = fs.String("backend", envOr(getenv, "LLD_BACKEND", backendNative), "Backend: native or reactor (env LLD_BACKEND)")
		wasmFile    = fs.String("wasm", getenv("LLD_REACTOR_WASM"), "LLD reactor module for the reactor backend (env LLD_REACTOR_WASM)")
		dir         = fs.String("dir", ".", "Host directory mounted at / for the reactor backend")
		logLevel    = fs.String("log-level", "warn", "Log level (debug, info, warn, error)")
		logJSON     = fs.Bool("log-json", false, "Log as JSON")
		interactive = fs.Bool("i", false, "Interactive mode with TUI")
	)
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	flavor, err := lld.ParseFlavor(*flavorName)
	if err != nil {
		return nil, err
	}

	cfg := &config{
		flavor:      flavor,
		backend:     *backend,
		wasm:        *wasmFile,
		dir:         *dir,
		logLevel:    *logLevel,
		logJSON:     *logJSON,
		interactive: *interactive,
		args:        fs.Args(),
	}

	switch cfg.backend {
	case backendNative:
	case backendReactor:
		if cfg.wasm == "" {
			return nil, lldErrors.InvalidInput(lldErrors.PhaseConfig, "reactor backend needs -wasm or LLD_REACTOR_WASM")
		}
	default:
		return nil, lldErrors.InvalidInput(lldErrors.PhaseConfig, fmt.Sprintf("unknown backend %q", cfg.backend))
	}
	return cfg, nil
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func newLogger(level string, json bool, out io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, lldErrors.Wrap(lldErrors.PhaseConfig, lldErrors.KindInvalidInput, err, "log level")
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if json {
		encCfg = zap.NewProductionEncoderConfig()
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(out), zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}

func openBridge(ctx context.Context, cfg *config, log *zap.Logger, stderr io.Writer) (*lld.Bridge, error) {
	opts := lld.Options{Logger: log}

	if cfg.backend == backendNative {
		lib, err := native.Open()
		if err != nil {
			return nil, err
		}
		return lld.New(lib, opts), nil
	}

	data, err := os.ReadFile(cfg.wasm)
	if err != nil {
		return nil, fmt.Errorf("read reactor module: %w", err)
	}
	r, err := reactor.New(ctx, nil, &reactor.Config{
		Module: data,
		Name:   filepath.Base(cfg.wasm),
		Dir:    cfg.dir,
		Stdout: stderr,
		Stderr: stderr,
	})
	if err != nil {
		return nil, err
	}
	return lld.New(r, opts), nil
}
