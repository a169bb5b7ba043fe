package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/mcncl/jsontyper/internal/config"
	"github.com/mcncl/jsontyper/internal/converter"
	"github.com/mcncl/jsontyper/internal/errors"
	"github.com/mcncl/jsontyper/internal/parser"
	"github.com/mcncl/jsontyper/internal/server"
)

// Version information
const (
	Version = "0.1.0"
)

// Globals are flags shared by every command
type Globals struct {
	Config  string           `help:"Path to a config file. Defaults to $JSONTYPER_CONFIG or the nearest .jsontyper.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`
}

// CLIArgs defines the command-line interface
type CLIArgs struct {
	Globals

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Infer record types from a JSON sample (default command)."`
	Serve   ServeCmd   `cmd:"" help:"Run the conversion service over HTTP."`
}

// CLI holds the parsed command line
var CLI CLIArgs

// ConvertCmd infers types from one sample document
type ConvertCmd struct {
	Input          string   `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output         string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	InputFormat    string   `help:"Encoding of the sample (json, yaml)."`
	Format         string   `help:"Output format (text, typedata, jsonschema)." short:"f"`
	MultiLine      bool     `help:"Put every record field on its own line." short:"m" name:"multiline"`
	RootName       string   `help:"Name for the root type." short:"r"`
	Prefix         string   `help:"Prefix for generated type names other than the root." short:"p"`
	NameStyle      string   `help:"Type name style (capitalize, pascal)."`
	Open           bool     `help:"Infer open records that accept additional fields."`
	NullAsOptional bool     `help:"Treat null values as optional fields." short:"n"`
	Inline         bool     `help:"Emit only the root type with every nested type inlined."`
	ExistingName   []string `help:"Type name already in use. May be repeated." short:"e"`
	Interactive    bool     `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
}

// ServeCmd runs the HTTP service
type ServeCmd struct {
	Addr      string `help:"Listen address. Overrides the config file and $JSONTYPER_ADDR." short:"a"`
	CacheSize int    `help:"Number of responses to cache. Overrides the configured size when positive."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Stdin  *os.File
	Stdout io.Writer
}

func newParser(cli *CLIArgs, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("jsontyper"),
		kong.Description("A tool to infer record types from JSON samples"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	parser, err := newParser(&CLI)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// usage is already shown by kong.UsageOnError()
		parser.FatalIfErrorf(err)
	}

	// No arguments: paste JSON interactively
	if len(os.Args) == 1 {
		CLI.Convert.Interactive = true
	}

	log.SetFlags(log.LstdFlags)
	if err := ctx.Run(&CLI.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsontyper --help\n")
		os.Exit(1)
	}
}

func configPath(globals *Globals) string {
	if globals.Config != "" {
		return globals.Config
	}
	return config.ConfigPathFromEnv()
}

// Run loads configuration and converts the sample.
func (c *ConvertCmd) Run(globals *Globals) error {
	cfg, err := config.LoadConfigWithCLI(configPath(globals), config.CLIOverrides{
		RootName:       c.RootName,
		TypePrefix:     c.Prefix,
		NameStyle:      c.NameStyle,
		InputFormat:    c.InputFormat,
		OutputFormat:   c.Format,
		Open:           c.Open,
		NullAsOptional: c.NullAsOptional,
		Inline:         c.Inline,
		MultiLine:      c.MultiLine,
		ExistingNames:  c.ExistingName,
		Debug:          globals.Debug,
	})
	if err != nil {
		return err
	}

	return c.run(&Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	})
}

// run executes the conversion
func (c *ConvertCmd) run(ctx *Context) error {
	// 1. Read the sample
	sample, err := c.readInput(ctx)
	if err != nil {
		return err
	}
	debugf(ctx, "read %d bytes of %s input", len(sample), ctx.Config.Input.Format)

	// 2. Infer types
	result, err := converter.Convert(ctx.Config.Request(sample))
	if err != nil {
		return err
	}
	debugf(ctx, "inferred %d type(s), root %s", result.Table.Len(), result.RootName)

	// 3. Render
	resp, err := converter.Render(result, ctx.Config.RenderOptions())
	if err != nil {
		return err
	}
	out, err := encodeResponse(resp, converter.Format(ctx.Config.Output.Format))
	if err != nil {
		return err
	}

	// 4. Output the result
	return c.writeOutput(ctx, out)
}

// readInput reads the sample from file or stdin
func (c *ConvertCmd) readInput(ctx *Context) (string, error) {
	if c.Input != "" {
		data, err := parser.ReadFile(c.Input)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	stdinInfo, err := ctx.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if c.Interactive {
			return readInteractiveInput(ctx.Stdin)
		}
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(data), nil
}

// readInteractiveInput lets users paste a sample and signal completion with
// Ctrl+D (EOF)
func readInteractiveInput(r io.Reader) (string, error) {
	fmt.Fprintln(os.Stderr, "jsontyper interactive mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(r)
	var sample strings.Builder
	for {
		line, err := reader.ReadString('\n')
		sample.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	if strings.TrimSpace(sample.String()) == "" {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return sample.String(), nil
}

// encodeResponse turns a rendered response into output text
func encodeResponse(resp *converter.Response, format converter.Format) (string, error) {
	var value any
	switch format {
	case "", converter.FormatText:
		return resp.Text(), nil
	case converter.FormatTypeData:
		value = resp.Nodes
	default:
		value = resp.Schema
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", errors.NewOutputError("failed to encode output", err)
	}
	return string(data) + "\n", nil
}

// writeOutput writes output to file or stdout
func (c *ConvertCmd) writeOutput(ctx *Context, out string) error {
	if c.Output != "" {
		if err := os.WriteFile(c.Output, []byte(out), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", c.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Generated types written to %s\n", c.Output)
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimSpace(out)); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// Run serves conversions until interrupted.
func (s *ServeCmd) Run(globals *Globals) error {
	cfg, err := s.config(globals)
	if err != nil {
		return err
	}

	handler, err := server.NewHandler(cfg.Server.CacheSize)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Server.Addr, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("server on %s stopped", cfg.Server.Addr), err)
		}
		return nil
	case <-ctx.Done():
		log.Printf("Shutting down jsontyper server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// config layers defaults, the config file, the environment and flags, in
// increasing precedence.
func (s *ServeCmd) config(globals *Globals) (*config.Config, error) {
	cfg, err := config.LoadConfigWithCLI(configPath(globals), config.CLIOverrides{Debug: globals.Debug})
	if err != nil {
		return nil, err
	}
	if err := config.LoadServerEnv(cfg); err != nil {
		return nil, err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.CacheSize > 0 {
		cfg.Server.CacheSize = s.CacheSize
	}
	return cfg, nil
}

func debugf(ctx *Context, format string, args ...any) {
	if ctx.Debug {
		log.Printf("debug: "+format, args...)
	}
}
