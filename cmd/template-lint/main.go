package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"template-engine-service/config"
	"template-engine-service/models"
	"template-engine-service/services"
)

var (
	catalogPath   string
	contextNames  []string
	requiredVars  []string
	existingVars  []string
	disabledRules []string
	jsonOutput    bool
	category      string
)

var rootCmd = &cobra.Command{
	Use:          "template-lint",
	Short:        "Lint document templates from the command line",
	Long:         "template-lint runs the placeholder and content checks of the template engine against local template files.",
	SilenceUsage: true,
}

var checkCmd = &cobra.Command{
	Use:   "check [file...]",
	Short: "Check template files for placeholder and content problems",
	Long: `Checks document template files. Files ending in .json are read as
editor document trees, everything else is imported as Markdown first.
The exit code is non-zero when any file fails its checks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the known placeholders",
	RunE:  runCatalog,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to a custom placeholder catalog (YAML)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	checkCmd.Flags().StringSliceVar(&contextNames, "context", nil, "available context types, e.g. mieter,wohnung")
	checkCmd.Flags().StringSliceVar(&requiredVars, "required", nil, "variables every template must mention")
	checkCmd.Flags().StringSliceVar(&existingVars, "existing", nil, "variables available to the templates")
	checkCmd.Flags().StringSliceVar(&disabledRules, "disable", nil, "content rule ids to disable")
	catalogCmd.Flags().StringVar(&category, "category", "", "only list placeholders of this category")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadCatalog returns the built-in catalog or the one named by --catalog.
func loadCatalog() (*services.PlaceholderCatalog, error) {
	if catalogPath == "" {
		return services.DefaultCatalog(), nil
	}
	return services.LoadCatalogFile(catalogPath)
}

func runCheck(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	engine := services.NewPlaceholderEngine(catalog, 0, nil)
	validator := services.NewContentValidator(config.ValidationConfig{}, nil)
	for _, id := range disabledRules {
		if err := validator.ConfigureRule(id, false); err != nil {
			return fmt.Errorf("failed to disable rule %s: %w", id, err)
		}
	}
	checker := services.NewTemplateChecker(engine, validator, nil, nil)

	// An omitted --context flag skips context checks entirely, while an
	// explicit empty value checks against no available contexts.
	var contexts []models.ContextType
	if cmd.Flags().Changed("context") {
		contexts = make([]models.ContextType, 0, len(contextNames))
		for _, name := range contextNames {
			contexts = append(contexts, models.ContextType(name))
		}
	}

	reports := make([]models.TemplateCheckReport, 0, len(args))
	invalid := 0

	for _, path := range args {
		report, err := checkFile(checker, path, contexts)
		if err != nil {
			return err
		}
		if !report.Valid {
			invalid++
		}
		reports = append(reports, report)
	}

	if jsonOutput {
		out, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		for _, report := range reports {
			printReport(report)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d templates failed", invalid, len(reports))
	}
	return nil
}

// checkFile runs the combined template check against a single file.
func checkFile(checker *services.TemplateChecker, path string, contexts []models.ContextType) (models.TemplateCheckReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.TemplateCheckReport{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	req := models.TemplateCheckRequest{
		Name:              filepath.Base(path),
		AvailableContext:  contexts,
		RequiredVariables: requiredVars,
		ExistingVariables: existingVars,
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		req.Document = data
	} else {
		imported := checker.ImportMarkdown(models.ImportMarkdownRequest{Markdown: string(data)})
		doc, err := json.Marshal(imported.Document)
		if err != nil {
			return models.TemplateCheckReport{}, fmt.Errorf("failed to encode imported document for %s: %w", path, err)
		}
		req.Document = doc
	}

	return checker.CheckTemplate(req), nil
}

// printReport writes a human readable version of one check report.
func printReport(report models.TemplateCheckReport) {
	status := "ok"
	if !report.Valid {
		status = "FAILED"
	}
	fmt.Printf("%s: %s\n", report.Name, status)

	if len(report.Placeholders) > 0 {
		fmt.Printf("  placeholders: %s\n", strings.Join(report.Placeholders, ", "))
	}

	for _, perr := range report.PlaceholderErrors {
		fmt.Printf("  [%s] %s\n", perr.Type, perr.Message)
	}

	if report.Content == nil {
		return
	}

	// Findings ordered by severity, most serious first
	for _, severity := range []models.Severity{models.SeverityError, models.SeverityWarning, models.SeverityInfo} {
		for _, issues := range report.Content.IssuesByCategory {
			for _, issue := range issues {
				if issue.Severity == severity {
					fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.RuleID, issue.Message)
				}
			}
		}
	}
	fmt.Printf("  score: %d/100\n", report.Content.Score)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	defs := catalog.All()
	if category != "" {
		defs = catalog.ByCategory(models.ContextType(category))
	}

	if jsonOutput {
		out, err := json.MarshalIndent(defs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, def := range defs {
		fmt.Printf("%-26s %-12s %s\n", def.Key, def.Category, def.Label)
	}
	fmt.Printf("\n%d placeholders\n", len(defs))
	return nil
}
