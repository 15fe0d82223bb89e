package prompt

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/1457cus/shaoguan-travel-planner/internal/types"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Sample sizes per category.
const (
	AttractionSamples = 3
	FoodSamples       = 2
	CultureSamples    = 2
)

// Item is one reference entry rendered into the prompt.
type Item struct {
	Name   string
	Kind   string
	Price  string
	Detail string
}

// Data holds the processed tables the assembler samples from. Nil tables are empty pools.
type Data struct {
	Attractions *types.Table
	Food        *types.Table
	Culture     *types.Table
}

type templateData struct {
	Days          int
	Budget        int
	Theme         string
	Needs         string
	WeatherAdvice string
	Attractions   []Item
	Foods         []Item
	Culture       []Item
}

type Service interface {
	Assemble(ctx context.Context, data Data, req types.PromptRequest) (string, error)
}

type Config struct {
	// MinCooling is the lowest cooling index kept when the traveller asks for cooling.
	MinCooling int
	// TemplateDir optionally holds prompt_template.<lang>.tmpl overrides.
	TemplateDir string
	// Rand drives sampling. A time-seeded source is used when nil.
	Rand *rand.Rand
}

var _ Service = (*Assembler)(nil)

type Assembler struct {
	mu         sync.Mutex
	rng        *rand.Rand
	minCooling int
	templates  map[types.Language]*template.Template
	logger     *slog.Logger
}

func NewAssembler(cfg Config, logger *slog.Logger) (*Assembler, error) {
	rng := cfg.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	minCooling := cfg.MinCooling
	if minCooling <= 0 {
		minCooling = DefaultMinCooling
	}

	templates := make(map[types.Language]*template.Template, 2)
	for _, lang := range []types.Language{types.LanguageZH, types.LanguageEN} {
		tmpl, err := loadTemplate(cfg.TemplateDir, lang)
		if err != nil {
			return nil, err
		}
		templates[lang] = tmpl
	}

	return &Assembler{
		rng:        rng,
		minCooling: minCooling,
		templates:  templates,
		logger:     logger,
	}, nil
}

func templateName(lang types.Language) string {
	return fmt.Sprintf("prompt_template.%s.tmpl", lang)
}

func loadTemplate(dir string, lang types.Language) (*template.Template, error) {
	name := templateName(lang)
	if dir != "" {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		switch {
		case err == nil:
			tmpl, err := template.New(name).Parse(string(raw))
			if err != nil {
				return nil, fmt.Errorf("parsing template override %s: %w", name, err)
			}
			return tmpl, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("reading template override %s: %w", name, err)
		}
	}
	tmpl, err := template.ParseFS(embeddedTemplates, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded template %s: %w", name, err)
	}
	return tmpl, nil
}

// Assemble renders the prompt for req from a sample of data. The input tables are only read.
func (a *Assembler) Assemble(ctx context.Context, data Data, req types.PromptRequest) (string, error) {
	ctx, span := otel.Tracer("PromptAssembler").Start(ctx, "Assemble", trace.WithAttributes(
		attribute.Int("days", req.Days),
		attribute.String("theme", req.Theme),
		attribute.String("language", string(req.Language)),
	))
	defer span.End()

	l := a.logger.With(slog.String("method", "Assemble"))

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return "", err
	}
	lang := types.ParseLanguage(string(req.Language))
	fallback := fallbackExamples[lang]

	attractions := attractionItems(data.Attractions)
	if req.Needs.Cooling {
		attractions = a.coolingOnly(data.Attractions)
		l.DebugContext(ctx, "Applied cooling filter",
			slog.Int("min_index", a.minCooling), slog.Int("kept", len(attractions)))
	}

	td := templateData{
		Days:          req.Days,
		Budget:        req.Budget,
		Theme:         req.Theme,
		Needs:         needsText(req.Needs, lang),
		WeatherAdvice: req.WeatherAdvice,
		Attractions:   a.sample(attractions, AttractionSamples, fallback.Attractions),
		Foods:         a.sample(foodItems(data.Food), FoodSamples, fallback.Foods),
		Culture:       a.sample(cultureItems(data.Culture), CultureSamples, fallback.Culture),
	}

	var buf bytes.Buffer
	if err := a.templates[lang].Execute(&buf, td); err != nil {
		l.ErrorContext(ctx, "Failed to render prompt", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	l.InfoContext(ctx, "Prompt assembled",
		slog.Int("attractions", len(td.Attractions)),
		slog.Int("foods", len(td.Foods)),
		slog.Int("culture", len(td.Culture)))
	span.SetStatus(codes.Ok, "prompt assembled")
	return buf.String(), nil
}

// sample draws up to n items without replacement. An empty pool yields the fallback list.
func (a *Assembler) sample(pool []Item, n int, fallback []Item) []Item {
	if len(pool) == 0 {
		return append([]Item(nil), fallback...)
	}
	if len(pool) <= n {
		return pool
	}
	a.mu.Lock()
	perm := a.rng.Perm(len(pool))
	a.mu.Unlock()

	out := make([]Item, 0, n)
	for _, i := range perm[:n] {
		out = append(out, pool[i])
	}
	return out
}

func (a *Assembler) coolingOnly(t *types.Table) []Item {
	if t == nil {
		return nil
	}
	var out []Item
	for _, rec := range t.Rows {
		feature, _ := rec.Value(types.ColFeature)
		name, _ := rec.Value(types.ColName)
		if CoolingIndex(name+" "+feature) >= a.minCooling {
			out = append(out, attractionItem(rec))
		}
	}
	return out
}

func needsText(n types.SpecialNeeds, lang types.Language) string {
	s := needSentences[lang]
	var parts []string
	if n.Elderly {
		parts = append(parts, s.Elderly)
	}
	if n.Children {
		parts = append(parts, s.Children)
	}
	if n.Cooling {
		parts = append(parts, s.Cooling)
	}
	sep := ""
	if lang == types.LanguageEN {
		sep = " "
	}
	return strings.Join(parts, sep)
}

func attractionItems(t *types.Table) []Item {
	if t == nil {
		return nil
	}
	out := make([]Item, 0, len(t.Rows))
	for _, rec := range t.Rows {
		out = append(out, attractionItem(rec))
	}
	return out
}

func attractionItem(rec types.Record) Item {
	name, _ := rec.Value(types.ColName)
	kind, _ := rec.Value(types.ColMainType)
	detail, _ := rec.Value(types.ColFeature)
	return Item{Name: name, Kind: kind, Price: ticketText(rec), Detail: detail}
}

func ticketText(rec types.Record) string {
	low, okLow := rec.Value(types.ColTicketMin)
	high, okHigh := rec.Value(types.ColTicketMax)
	switch {
	case okLow && okHigh && low == high:
		return low + "元"
	case okLow && okHigh:
		return low + "-" + high + "元"
	}
	if raw, ok := rec.Value(types.ColTicket); ok {
		return raw
	}
	return ""
}

func foodItems(t *types.Table) []Item {
	if t == nil {
		return nil
	}
	out := make([]Item, 0, len(t.Rows))
	for _, rec := range t.Rows {
		name, _ := rec.Value(types.ColStoreName)
		kind, _ := rec.Value(types.ColFoodType)
		dish, _ := rec.Value(types.ColSignatureDish)
		price := ""
		if spend, ok := rec.Value(types.ColAvgSpend); ok {
			price = spend + "元"
		}
		out = append(out, Item{Name: name, Kind: kind, Price: price, Detail: dish})
	}
	return out
}

func cultureItems(t *types.Table) []Item {
	if t == nil {
		return nil
	}
	out := make([]Item, 0, len(t.Rows))
	for _, rec := range t.Rows {
		name, _ := rec.Value(types.ColName)
		kind, _ := rec.Value(types.ColHeritageType)
		var detail []string
		if site, ok := rec.Value(types.ColHeritageSite); ok {
			detail = append(detail, site)
		}
		if level, ok := rec.Value(types.ColLevel); ok {
			detail = append(detail, level)
		}
		out = append(out, Item{Name: name, Kind: kind, Detail: strings.Join(detail, " ")})
	}
	return out
}
