// Package cli implements the genfun command: manifest checking, binding
// generation, audit queries and the remote serve mode.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	slogmulti "github.com/samber/slog-multi"

	"github.com/funvibe/genfun/internal/config"
	"github.com/funvibe/genfun/internal/dispatch"
	"github.com/funvibe/genfun/internal/ext"
	"github.com/funvibe/genfun/internal/manifest"
	"github.com/funvibe/genfun/internal/remote"
	"github.com/funvibe/genfun/internal/store"
	"github.com/funvibe/genfun/internal/trace"
)

const usage = `Usage: genfun <command> [options]

Commands:
  check [manifest]         validate a registration manifest
  gen [manifest]           generate the registrations file for bind entries
  methods <generic>        list registered methods from the audit store
  calls                    list recent dispatch calls from the audit store
  serve [manifest]         expose manifest generics as a gRPC service
`

// Run executes the CLI and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	switch args[0] {
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "gen":
		return runGen(args[1:], stdout, stderr)
	case "methods":
		return runMethods(args[1:], stdout, stderr)
	case "calls":
		return runCalls(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "genfun: unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

func manifestPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.ManifestFileName
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "%s %v\n", colorize(stderr, "31", "error:"), err)
	return 1
}

// colorize wraps s in an ANSI color when w is a terminal.
func colorize(w io.Writer, code, s string) string {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "\x1b[" + code + "m" + s + "\x1b[0m"
	}
	return s
}

// newLogger builds the serve-mode logger: readable text on stderr, plus a
// JSON debug log fanned out to logPath when given.
func newLogger(stderr io.Writer, logPath string, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	cleanup := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		cleanup = func() { f.Close() }
	}
	return slog.New(slogmulti.Fanout(handlers...)), cleanup, nil
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	m, err := manifest.Load(manifestPath(args))
	if err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "%s %d generics, %d remote methods, %d bind entries\n",
		colorize(stdout, "32", "ok:"), len(m.Generics), len(m.Remote), len(m.Bind))
	for _, g := range m.Generics {
		kind := "generic"
		if g.Primitive {
			kind = "primitive generic"
		}
		fmt.Fprintf(stdout, "  %-24s %s\n", g.Name, kind)
	}
	return 0
}

func runGen(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "registrations.go", "output file")
	modPath := fs.String("module", "", "genfun module path override")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	m, err := manifest.Load(manifestPath(fs.Args()))
	if err != nil {
		return fail(stderr, err)
	}
	if len(m.Bind) == 0 {
		fmt.Fprintln(stdout, "nothing to generate: manifest has no bind entries")
		return 0
	}

	result, err := ext.Inspect(m.Bind)
	if err != nil {
		return fail(stderr, err)
	}
	src, err := ext.NewCodeGenerator(*modPath).Generate(result)
	if err != nil {
		return fail(stderr, err)
	}
	if err := os.WriteFile(*out, []byte(src), 0o644); err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "%s wrote %s (%d registrations)\n",
		colorize(stdout, "32", "ok:"), *out, len(result.Bindings))
	return 0
}

func runMethods(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("methods", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "genfun.db", "audit store path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: genfun methods [-db path] <generic>")
		return 2
	}
	generic := fs.Arg(0)

	s, err := store.Open(*dbPath, nil)
	if err != nil {
		return fail(stderr, err)
	}
	defer s.Close()

	regs, err := s.Registrations(generic)
	if err != nil {
		return fail(stderr, err)
	}
	if len(regs) == 0 {
		fmt.Fprintf(stdout, "no methods recorded for %q\n", generic)
		return 0
	}
	for _, r := range regs {
		fmt.Fprintf(stdout, "%s.%-20s %s\n", r.Generic, r.Class, r.Source)
	}
	return 0
}

func runCalls(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("calls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "genfun.db", "audit store path")
	n := fs.Int("n", 20, "number of calls to show")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	s, err := store.Open(*dbPath, nil)
	if err != nil {
		return fail(stderr, err)
	}
	defer s.Close()

	calls, err := s.RecentCalls(*n)
	if err != nil {
		return fail(stderr, err)
	}
	for _, c := range calls {
		outcome := c.Outcome
		if outcome == trace.KindFail {
			outcome = colorize(stdout, "31", outcome)
		} else {
			outcome = colorize(stdout, "32", outcome)
		}
		fmt.Fprintf(stdout, "%s  %-16s %-10s %s\n",
			c.At.Format("15:04:05.000"), c.Generic, outcome, c.CallID)
	}
	return 0
}

// auditRemoteBindings mirrors the manifest's remote endpoints into the
// audit store, so the methods command can list what serve exposes.
func auditRemoteBindings(s *store.Store, remotes []manifest.RemoteMethod, logger *slog.Logger) {
	for _, r := range remotes {
		if err := s.RecordRegistration(r.Generic, r.Class, "remote:"+r.Target); err != nil {
			logger.Warn("audit registration failed", "generic", r.Generic, "class", r.Class, "err", err)
		}
	}
}

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", ":50051", "listen address")
	dbPath := fs.String("db", "", "audit store path (empty disables auditing)")
	logPath := fs.String("log", "", "JSON debug log file")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := manifestPath(fs.Args())
	m, err := manifest.Load(path)
	if err != nil {
		return fail(stderr, err)
	}
	if len(m.Services) == 0 {
		return fail(stderr, fmt.Errorf("manifest %s lists no services to expose", path))
	}

	logger, cleanup, err := newLogger(stderr, *logPath, *verbose)
	if err != nil {
		return fail(stderr, err)
	}
	defer cleanup()

	tbl := dispatch.NewTable()
	m.Apply(tbl)

	var audit *store.Store
	sinks := trace.Multi{&trace.SlogSink{Logger: logger}}
	if *dbPath != "" {
		audit, err = store.Open(*dbPath, logger)
		if err != nil {
			return fail(stderr, err)
		}
		defer audit.Close()
		sinks = append(sinks, audit)
	}
	tbl.SetSink(sinks)

	reg := remote.NewRegistry()
	if len(m.Protos) > 0 {
		if err := reg.LoadProtos([]string{filepath.Dir(path)}, m.Protos...); err != nil {
			return fail(stderr, err)
		}
	}

	if len(m.Remote) > 0 {
		endpoints := make([]remote.Endpoint, len(m.Remote))
		for i, r := range m.Remote {
			endpoints[i] = remote.Endpoint{
				Generic: r.Generic, Class: r.Class,
				Target: r.Target, Method: r.Method,
			}
		}
		closeAll, err := remote.Bind(tbl, reg, endpoints)
		if err != nil {
			return fail(stderr, err)
		}
		defer closeAll()
		if audit != nil {
			auditRemoteBindings(audit, m.Remote, logger)
		}
	}

	srv := remote.NewServer(tbl, logger)
	for _, svc := range m.Services {
		if err := srv.RegisterService(reg, svc); err != nil {
			return fail(stderr, err)
		}
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		return fail(stderr, err)
	}
	logger.Info("serving", "addr", *addr, "services", m.Services)
	if err := srv.Serve(lis); err != nil {
		return fail(stderr, err)
	}
	return 0
}
