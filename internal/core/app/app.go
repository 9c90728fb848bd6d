package app

import (
	"context"

	"baseline/internal/core/config"
	"baseline/internal/core/errors"
	"baseline/internal/core/ports"
	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"
	"baseline/internal/engine/report"
	"baseline/internal/engine/resolver"
	"baseline/internal/shared/util"
)

// App holds the components of one configured scanner. The catalog is
// loaded by the caller and shared read-only.
type App struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Parser   *parser.Parser
	Resolver *resolver.Resolver
	Source   *FileSource

	scanner *Scanner
}

var _ ports.ScanService = (*App)(nil)

func New(cfg *config.Config, cat *catalog.Catalog) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	if cat == nil {
		return nil, errors.New(errors.CodeValidationError, "catalog is required")
	}

	registry, err := buildParserRegistry(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid language configuration")
	}
	loader, err := parser.NewGrammarLoader(registry)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader, parser.Options{
		TolerateErrors: cfg.Parse.TolerateErrors,
		SyntaxScripts:  cfg.Script.Mode == config.ScriptModeSyntax,
	})

	source, err := NewFileSource(
		cfg.Scan.Root,
		cfg.Exclude.Dirs,
		cfg.Exclude.Files,
		p,
		util.NewPerSecondLimiter(cfg.Scan.MaxFilesPerSecond),
	)
	if err != nil {
		return nil, err
	}

	res := resolver.New(cat)
	return &App{
		Config:   cfg,
		Catalog:  cat,
		Parser:   p,
		Resolver: res,
		Source:   source,
		scanner:  NewScanner(source, p, res, cfg.Scan.Include, cfg.Scan.Workers),
	}, nil
}

// LoadCatalog loads the catalog named by cfg.Catalog.
func LoadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	asOf, err := cfg.Catalog.CatalogAsOf()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid catalog.as_of")
	}
	format := cfg.Catalog.Format
	if format == "" && cfg.Catalog.Path != "" {
		format = config.DetectCatalogFormat(cfg.Catalog.Path)
	}
	cat, err := catalog.Load(ctx, cfg.Catalog.Path, format, asOf)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "load_catalog")
	}
	return cat, nil
}

func (a *App) Scan(ctx context.Context, req ports.ScanRequest) (*report.ScanReport, error) {
	return a.scanner.Scan(ctx, req)
}

func buildParserRegistry(cfg *config.Config) (map[string]parser.LanguageSpec, error) {
	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for lang, languageCfg := range cfg.Languages {
		overrides[lang] = parser.LanguageOverride{
			Enabled:    languageCfg.Enabled,
			Extensions: append([]string(nil), languageCfg.Extensions...),
		}
	}
	return parser.BuildLanguageRegistry(overrides)
}
