package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/snapshot"
)

func main() {
	defPath := flag.String("definition", "", "form definition file (YAML or JSON)")
	format := flag.String("format", "json", "snapshot encoding: json or msgpack")
	renderer := flag.String("render", "", "render the final state with a renderer (html, text) instead of printing the snapshot")
	output := flag.String("output", "", "output file (stdout if empty)")
	confirm := flag.Bool("confirm", true, "ask before submitting")
	verbose := flag.Bool("verbose", false, "enable development logging")
	flag.Parse()

	if strings.TrimSpace(*defPath) == "" {
		log.Fatalf("missing -definition")
	}
	encoding, err := snapshot.ParseFormat(*format)
	if err != nil {
		log.Fatalf("invalid -format: %v", err)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	def, err := definition.Load(*defPath)
	if err != nil {
		log.Fatalf("Failed to load definition: %v", err)
	}

	onSubmit := func(_ context.Context, values form.Values) (*form.Status, error) {
		logger.Info("form submitted", zap.String("form", def.ID), zap.Any("values", values))
		return def.SubmitStatus(), nil
	}
	cfg, err := def.Config(ctx, onSubmit)
	if err != nil {
		log.Fatalf("Failed to build form: %v", err)
	}
	f, err := form.New(cfg, append(def.FormOptions(), form.WithLogger(logger))...)
	if err != nil {
		log.Fatalf("Failed to build form: %v", err)
	}
	defer f.Close()

	session, err := tui.NewSession(f, def,
		tui.WithLogger(logger),
		tui.WithConfirmSubmit(*confirm),
		tui.WithPromptDriver(tui.NewSurveyDriver(os.Stderr)),
		tui.WithTheme(tui.Theme{InfoPrefix: "» ", ErrorPrefix: "✗ "}),
	)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	runErr := session.Run(ctx)
	if errors.Is(runErr, tui.ErrAborted) {
		fmt.Fprintln(os.Stderr, "aborted")
		os.Exit(130)
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer file.Close()
		out = file
	}

	snap := snapshot.Take(f, snapshot.WithName(def.ID))
	if *renderer != "" {
		if err := writeRendered(ctx, out, *renderer, snap, def); err != nil {
			log.Fatalf("Failed to render: %v", err)
		}
	} else if err := snapshot.Encode(out, snap, encoding); err != nil {
		log.Fatalf("Failed to encode snapshot: %v", err)
	}

	if runErr != nil {
		logger.Warn("session ended with error", zap.Error(runErr))
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func writeRendered(ctx context.Context, w io.Writer, name string, snap snapshot.Snapshot, def definition.Definition) error {
	html, err := render.NewHTMLRenderer()
	if err != nil {
		return err
	}
	text, err := render.NewTextRenderer()
	if err != nil {
		return err
	}
	registry, err := render.NewRegistry(html, text)
	if err != nil {
		return err
	}
	view := render.BuildView(snap, def, render.RenderOptions{IncludeVersion: true})
	out, _, err := registry.Render(ctx, name, view)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
