// Command kbrender renders a directory of knowledge-base sources into linked
// markdown files.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/glamour"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	rendercmd "github.com/goliatone/go-kb/internal/commands/render"
	"github.com/goliatone/go-kb/internal/di"
	"github.com/goliatone/go-kb/internal/generator"
	"github.com/goliatone/go-kb/internal/runtimeconfig"
)

var (
	moduleBuilder           = buildModule
	stdout        io.Writer = os.Stdout
)

type cli struct {
	Config   string `name:"config" short:"c" help:"Project file." default:"kb.yaml"`
	LogLevel string `name:"log-level" help:"Override the configured log level."`

	Render  renderCmd  `cmd:"" help:"Render the project roots and save the output."`
	Preview previewCmd `cmd:"" help:"Render one document to the terminal."`
}

type renderCmd struct {
	Out     string `name:"out" short:"o" help:"Override the configured output directory."`
	DryRun  bool   `name:"dry-run" help:"Report changes without writing files."`
	Force   bool   `help:"Rewrite files whose content is unchanged."`
	HTML    bool   `name:"html" help:"Also write HTML copies of every document."`
	Retries int    `help:"Retry a failed render this many times." default:"0"`
}

type previewCmd struct {
	Doc   string `arg:"" name:"doc" help:"Document id to preview."`
	Raw   bool   `help:"Print markdown without terminal styling."`
	Width int    `help:"Word wrap width for styled output." default:"80"`
}

type moduleOptions struct {
	ConfigPath string
	LogLevel   string
}

type handlerSet struct {
	render  command.Commander[rendercmd.RenderProjectCommand]
	preview command.Commander[rendercmd.PreviewDocumentCommand]
}

type moduleResources struct {
	handlers handlerSet
}

type subscription interface {
	Unsubscribe()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("kbrender: %v", err)
	}
}

func run(args []string) error {
	var root cli
	parser, err := kong.New(&root,
		kong.Name("kbrender"),
		kong.Description("Render knowledge-base documents into linked markdown files."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	resources, err := moduleBuilder(moduleOptions{
		ConfigPath: root.Config,
		LogLevel:   root.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	ctx := context.Background()
	switch name := strings.Fields(kctx.Command())[0]; name {
	case "render":
		return runRender(ctx, resources.handlers, root.Render)
	case "preview":
		return runPreview(ctx, resources.handlers, root.Preview)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func buildModule(opts moduleOptions) (*moduleResources, error) {
	cfg, err := runtimeconfig.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	return &moduleResources{
		handlers: handlerSet{
			render:  container.RenderHandler(),
			preview: container.PreviewHandler(),
		},
	}, nil
}

func runRender(ctx context.Context, handlers handlerSet, cmd renderCmd) error {
	if handlers.render == nil {
		return fmt.Errorf("render handler not configured")
	}

	var sub subscription
	if cmd.Retries > 0 {
		sub = dispatcher.SubscribeCommand(handlers.render, runner.WithMaxRetries(cmd.Retries))
	} else {
		sub = dispatcher.SubscribeCommand(handlers.render)
	}
	defer sub.Unsubscribe()

	msg := rendercmd.RenderProjectCommand{
		OutputDir: cmd.Out,
		DryRun:    cmd.DryRun,
		Force:     cmd.Force,
		HTML:      cmd.HTML,
		ResultCallback: func(env rendercmd.ResultEnvelope) {
			logResult(env)
		},
	}
	return dispatcher.Dispatch(ctx, msg)
}

func runPreview(ctx context.Context, handlers handlerSet, cmd previewCmd) error {
	if handlers.preview == nil {
		return fmt.Errorf("preview handler not configured")
	}

	sub := dispatcher.SubscribeCommand(handlers.preview)
	defer sub.Unsubscribe()

	var preview *generator.Preview
	msg := rendercmd.PreviewDocumentCommand{
		DocumentID: cmd.Doc,
		Callback:   func(p *generator.Preview) { preview = p },
	}
	if err := dispatcher.Dispatch(ctx, msg); err != nil {
		return err
	}
	if preview == nil {
		return fmt.Errorf("preview of %q returned no document", cmd.Doc)
	}

	if cmd.Raw {
		_, err := io.WriteString(stdout, preview.Markdown)
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(cmd.Width),
	)
	if err != nil {
		return fmt.Errorf("terminal renderer: %w", err)
	}
	styled, err := renderer.Render(preview.Markdown)
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	_, err = io.WriteString(stdout, styled)
	return err
}

func logResult(env rendercmd.ResultEnvelope) {
	operation, _ := env.Metadata["operation"].(string)
	if operation == "" {
		operation = "render"
	}
	result := env.Result
	if result == nil {
		log.Printf("module=kbrender operation=%s", operation)
		return
	}
	log.Printf("module=kbrender operation=%s summary documents=%d files=%d written=%d unchanged=%d dry_run=%t duration=%s",
		operation,
		result.Documents,
		len(result.Files),
		len(result.Written),
		len(result.Unchanged),
		result.DryRun,
		result.Duration,
	)
	for _, path := range result.Written {
		log.Printf("module=kbrender operation=%s path=%s", operation, path)
	}
}
