// Command hoedown renders Markdown to HTML (or plain text) from a
// file or standard input.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hoedown/Text-Markdown-Hoedown"
	"github.com/hoedown/Text-Markdown-Hoedown/htmlrender"
	"github.com/hoedown/Text-Markdown-Hoedown/internal/logging"
	"github.com/hoedown/Text-Markdown-Hoedown/plaintext"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	extensions []string
	maxNesting int
	format     string
	skipHTML   bool
	safeLinks  bool
	logCfg     *logging.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logCfg: logging.NewConfig()}

	cmd := &cobra.Command{
		Use:   "hoedown [file]",
		Short: "Render Markdown to HTML or plain text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (extensions, max-nesting)")
	flags.StringSliceVar(&opts.extensions, "extension", nil, "enable an extension by name (repeatable)")
	flags.IntVar(&opts.maxNesting, "max-nesting", 0, "override the recursion bound (0 keeps the default)")
	flags.StringVar(&opts.format, "format", "html", "output format: html or text")
	flags.BoolVar(&opts.skipHTML, "skip-html", false, "drop raw HTML blocks and inline tags from HTML output")
	flags.BoolVar(&opts.safeLinks, "safe-links", false, "reject javascript:/vbscript:/data:/file: link and image destinations")
	opts.logCfg.RegisterFlags(flags)

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *rootOptions) error {
	logger, err := opts.logCfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	extensions, renderOpts, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	renderOpts = append(renderOpts, hoedown.WithLogger(logger))

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	renderer, err := buildRenderer(opts)
	if err != nil {
		return err
	}

	output, diags, err := hoedown.RenderWithDiagnostics(input, renderer, extensions, renderOpts...)
	if err != nil {
		return fmt.Errorf("hoedown: render: %w", err)
	}
	if diags != nil {
		reportDiagnostics(cmd, diags)
	}

	_, err = cmd.OutOrStdout().Write(output)
	return err
}

func resolveConfig(opts *rootOptions) (hoedown.Extensions, []hoedown.Option, error) {
	if opts.configPath == "" {
		ext, err := hoedown.ParseExtensionNames(opts.extensions)
		if err != nil {
			return 0, nil, err
		}
		var renderOpts []hoedown.Option
		if opts.maxNesting > 0 {
			renderOpts = append(renderOpts, hoedown.WithMaxNesting(opts.maxNesting))
		}
		return ext, renderOpts, nil
	}

	cfg, err := hoedown.LoadConfig(opts.configPath)
	if err != nil {
		return 0, nil, err
	}
	if opts.maxNesting > 0 {
		cfg.MaxNesting = opts.maxNesting
	}
	cfg.Extensions = append(cfg.Extensions, opts.extensions...)
	return cfg.Options()
}

func buildRenderer(opts *rootOptions) (*hoedown.Renderer, error) {
	switch opts.format {
	case "html":
		var flags htmlrender.Flags
		if opts.skipHTML {
			flags |= htmlrender.SkipHTML
		}
		if opts.safeLinks {
			flags |= htmlrender.SafeLinks
		}
		return htmlrender.New(flags), nil
	case "text":
		return plaintext.New(), nil
	default:
		return nil, fmt.Errorf("hoedown: unknown --format %q (want html or text)", opts.format)
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// reportDiagnostics prints the non-fatal parse diagnostics to stderr.
// The summary is wrapped in ANSI yellow only when stderr is a
// terminal; piped or redirected stderr gets plain text.
func reportDiagnostics(cmd *cobra.Command, diags error) {
	stderr := cmd.ErrOrStderr()
	msg := diags.Error()
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		msg = "\x1b[33m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(stderr, msg)
}
