package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"baseline/internal/core/config"
	"baseline/internal/core/errors"
	"baseline/internal/engine/catalog"
	"baseline/internal/engine/parser"
	"baseline/internal/engine/resolver"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and convert feature catalogs",
}

var lookupKind string

var catalogImportCmd = &cobra.Command{
	Use:   "import <source> <dest.db>",
	Short: "Convert a JSON or YAML catalog into a SQLite catalog",
	Args:  cobra.ExactArgs(2),
	RunE:  runCatalogImport,
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Resolve a property, tag, or API name the way a scan would",
	Long: "Resolves a name against the catalog. With --kind style the name is a declaration such as \"display: grid\"; " +
		"with --kind markup it is a tag name; with --kind script it is an identifier chain such as navigator.gpu.",
	Args: cobra.ExactArgs(1),
	RunE: runCatalogLookup,
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "catalog path (overrides catalog.path)")
	catalogCmd.PersistentFlags().StringVar(&flagCatalogFormat, "catalog-format", "", "catalog format: json|yaml|sqlite (default: from extension)")
	catalogCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "evaluate Baseline dates as of this date (YYYY-MM-DD)")
	catalogLookupCmd.Flags().StringVar(&lookupKind, "kind", string(parser.KindScript), "name kind: style|markup|script")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogLookupCmd)
}

func loadCatalogFrom(cmd *cobra.Command, path string) (*catalog.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if path != "" {
		cfg.Catalog.Path = path
		cfg.Catalog.Format = config.DetectCatalogFormat(path)
	}
	if cmd.Flags().Changed("catalog-format") {
		cfg.Catalog.Format = flagCatalogFormat
	}
	if cmd.Flags().Changed("as-of") {
		cfg.Catalog.AsOf = flagAsOf
	}
	asOf, err := cfg.Catalog.CatalogAsOf()
	if err != nil {
		return nil, err
	}
	return catalog.Load(cmd.Context(), cfg.Catalog.Path, cfg.Catalog.Format, asOf)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogFrom(cmd, args[0])
	if err != nil {
		return err
	}
	store, err := catalog.OpenStore(args[1])
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(cmd.Context(), cat); err != nil {
		return fmt.Errorf("saving catalog: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d features into %s\n", cat.Len(), store.Path())
	return nil
}

func runCatalogLookup(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogFrom(cmd, flagCatalog)
	if err != nil {
		return err
	}

	mention, err := lookupMention(parser.Kind(lookupKind), args[0])
	if err != nil {
		return err
	}
	rec, ok := resolver.New(cat).Resolve(mention)
	if !ok {
		return errors.AddContext(errors.New(errors.CodeNotFound, "name does not resolve to a catalog feature"), errors.CtxKey, args[0])
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func lookupMention(kind parser.Kind, name string) (parser.Mention, error) {
	switch kind {
	case parser.KindStyle:
		prop, value, _ := strings.Cut(name, ":")
		return parser.Mention{Kind: kind, Name: strings.ToLower(strings.TrimSpace(prop)), Value: strings.TrimSpace(value)}, nil
	case parser.KindMarkup:
		return parser.Mention{Kind: kind, Name: strings.ToLower(strings.TrimSpace(name))}, nil
	case parser.KindScript:
		return parser.Mention{Kind: kind, Name: strings.TrimSpace(name)}, nil
	default:
		return parser.Mention{}, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown kind %q: expected style, markup or script", kind))
	}
}
