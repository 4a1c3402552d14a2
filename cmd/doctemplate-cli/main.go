package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-doctemplate/internal/app"
	"github.com/goliatone/go-doctemplate/internal/config"
	"github.com/goliatone/go-doctemplate/internal/observability"
	"github.com/goliatone/go-doctemplate/pkg/document"
	"github.com/goliatone/go-doctemplate/pkg/orchestrator"
	"github.com/goliatone/go-doctemplate/pkg/prompt"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/validation"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	templateID := flag.String("template", "", "template ID (prompted when empty)")
	lang := flag.String("lang", "", "template language")
	roleFlag := flag.String("role", string(validation.RoleSaveDraft), "validation role: save-draft, send or finalize")
	seed := flag.String("values", "", "JSON file with initial field values")
	output := flag.String("output", "", "output file (stdout if empty)")
	renderer := flag.String("renderer", render.PageName, "renderer to use")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, options{
		configPath: *configPath,
		templateID: *templateID,
		lang:       *lang,
		role:       *roleFlag,
		seed:       *seed,
		output:     *output,
		renderer:   *renderer,
	}); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			os.Exit(130)
		}
		log.Fatalf("doctemplate: %v", err)
	}
}

type options struct {
	configPath string
	templateID string
	lang       string
	role       string
	seed       string
	output     string
	renderer   string
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger := observability.LoggerOrNop(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	role, err := validation.ParseRole(opts.role)
	if err != nil {
		return err
	}
	lang := opts.lang
	if lang == "" {
		lang = cfg.Language
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	driver := prompt.NewSurveyDriver()
	id := opts.templateID
	if id == "" {
		if id, err = chooseTemplate(ctx, driver, a.Orchestrator, lang); err != nil {
			return err
		}
	}

	prepared, err := a.Orchestrator.Prepare(ctx, id, lang)
	if err != nil {
		return err
	}
	values, err := readValues(opts.seed)
	if err != nil {
		return err
	}

	filler := prompt.NewFiller(
		prompt.WithDriver(driver),
		prompt.WithRole(role),
		prompt.WithFormatter(a.Orchestrator.Formatter()),
	)
	values, err = filler.Fill(ctx, prepared, values)
	if err != nil {
		return err
	}

	s, err := a.Sessions.Start(ctx, id, lang, values)
	if err != nil {
		return err
	}
	result := s.Validate(role)
	if !result.Valid {
		for _, name := range result.Fields() {
			_ = driver.Info(ctx, fmt.Sprintf("  %s: %s", name, result.Errors[name]))
		}
		return fmt.Errorf("document is not ready to %s", role)
	}

	doc := s.Snapshot()
	switch role {
	case validation.RoleSend:
		if doc, err = a.Sessions.Send(ctx, s.ID()); err != nil {
			return err
		}
	case validation.RoleFinalize:
		if _, err = a.Sessions.Send(ctx, s.ID()); err != nil {
			return err
		}
		if doc, err = a.Sessions.Complete(ctx, s.ID()); err != nil {
			return err
		}
	}

	out, _, err := a.Orchestrator.Render(ctx, orchestrator.Request{
		Prepared: s.Prepared(),
		Values:   doc.Values,
		Status:   doc.Status,
		Renderer: opts.renderer,
	})
	if err != nil {
		return err
	}

	for _, section := range s.Completion().Sections {
		mark := " "
		if section.Complete {
			mark = "x"
		}
		_ = driver.Info(ctx, fmt.Sprintf("[%s] %s %d/%d", mark, section.Name, section.Filled, section.Total))
	}
	logger.Info("document rendered",
		zap.String("document", doc.ID),
		zap.String("template", id),
		zap.String("status", string(doc.Status)),
	)

	if opts.output == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Document written to %s\n", opts.output)
	return nil
}

func chooseTemplate(ctx context.Context, driver prompt.Driver, orch *orchestrator.Orchestrator, lang string) (string, error) {
	summaries := orch.Templates(lang)
	if len(summaries) == 0 {
		return "", errors.New("no templates available")
	}
	labels := make([]string, len(summaries))
	for i, summary := range summaries {
		labels[i] = fmt.Sprintf("%s (%s)", summary.Title, summary.ID)
	}
	idx, err := driver.Select(ctx, prompt.SelectConfig{Message: "Template", Options: labels})
	if err != nil {
		return "", err
	}
	return summaries[idx].ID, nil
}

func readValues(path string) (document.Values, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return document.Values{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var values document.Values
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	return values, nil
}
