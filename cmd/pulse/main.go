// Command pulse checks Pulse component files: it splits frontmatter,
// detects the dialect, parses modern bodies, and reports statement
// terminator ambiguities with quick fixes.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pulse-lang/pulse/internal/asi"
	"github.com/pulse-lang/pulse/internal/frontend"
	"github.com/pulse-lang/pulse/internal/frontmatter"
)

var (
	version = frontmatter.EngineVersion
	commit  = "dev"
)

func main() {
	app := &cli.App{
		Name:  "pulse",
		Usage: "Pulse dialect front end tooling",
		Commands: []*cli.Command{
			checkCommand(),
			featuresCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "parse and lint component files",
		ArgsUsage: "<files...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Usage: "re-check files on change"},
			&cli.BoolFlag{Name: "json", Usage: "emit machine-readable reports"},
		},
		Action: func(c *cli.Context) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return fmt.Errorf("no input files specified")
			}

			if err := checkAll(files, c.Bool("json")); err != nil {
				return err
			}
			if c.Bool("watch") {
				return watch(files, c.Bool("json"))
			}
			return nil
		},
	}
}

func featuresCommand() *cli.Command {
	return &cli.Command{
		Name:      "features",
		Usage:     "report the modern dialect features a file uses",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one file")
			}
			doc, err := frontmatter.ParseFile(c.Args().First())
			if err != nil {
				return err
			}

			fmt.Printf("syntax version: %s\n", doc.SyntaxVersion)
			if doc.ModernFeatures == nil {
				return nil
			}
			f := doc.ModernFeatures
			fmt.Printf("  dollar-prefix variables: %t\n", f.DollarPrefixVariables)
			fmt.Printf("  reactive variables:      %t\n", f.ReactiveVariables)
			fmt.Printf("  enhanced type inference: %t\n", f.EnhancedTypeInference)
			fmt.Printf("  auto this binding:       %t\n", f.AutoThisBinding)
			fmt.Printf("  optional semicolons:     %t\n", f.OptionalSemicolons)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "show engine version",
		Action: func(c *cli.Context) error {
			fmt.Printf("pulse %s (%s)\n", version, commit)
			return nil
		},
	}
}

// fileReport is the per-file check result.
type fileReport struct {
	File          string          `json:"file"`
	SyntaxVersion string          `json:"syntaxVersion"`
	Error         string          `json:"error,omitempty"`
	Statements    int             `json:"statements"`
	Ambiguities   []asi.Ambiguity `json:"ambiguities,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	Suggestions   []string        `json:"suggestions,omitempty"`
}

// checkAll checks every file in parallel. Each file gets its own
// frontend context; contexts are never shared across goroutines.
func checkAll(files []string, asJSON bool) error {
	reports := make([]*fileReport, len(files))

	var g errgroup.Group
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			reports[i] = checkFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := false
	for _, report := range reports {
		printReport(report, asJSON)
		if report.Error != "" {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("check failed")
	}
	return nil
}

// checkFile runs the full front end over one component file.
func checkFile(path string) *fileReport {
	report := &fileReport{File: path}

	doc, err := frontmatter.ParseFile(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.SyntaxVersion = string(doc.SyntaxVersion)

	if doc.SyntaxVersion != frontend.Modern {
		return report
	}

	fe := frontend.NewWithFilename(path)
	program, err := fe.ParseModern(doc.Content)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Statements = len(program.Statements)
	report.Ambiguities = fe.ASIAmbiguities()

	usage := frontend.ValidateSemicolonUsage(doc.Content)
	report.Warnings = usage.Warnings
	report.Suggestions = usage.Suggestions
	return report
}

func printReport(report *fileReport, asJSON bool) {
	if asJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Printf("encode report for %s: %v", report.File, err)
			return
		}
		fmt.Println(string(data))
		return
	}

	if report.Error != "" {
		fmt.Printf("%s: error: %s\n", report.File, report.Error)
		return
	}

	fmt.Printf("%s: %s", report.File, report.SyntaxVersion)
	if report.SyntaxVersion == string(frontend.Modern) {
		fmt.Printf(", %d statements, %d ambiguities", report.Statements, len(report.Ambiguities))
	}
	fmt.Println()

	for _, amb := range report.Ambiguities {
		fmt.Printf("  line %d: %s [%s]\n", amb.Location.Line, amb.Message, amb.Kind)
		for _, fix := range asi.GenerateQuickFixes(amb) {
			fmt.Printf("    fix: %s (%s)\n", fix.Description, fix.Edit)
		}
	}
	for _, warning := range report.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	for _, suggestion := range report.Suggestions {
		fmt.Printf("  suggestion: %s\n", suggestion)
	}
}

// watch re-checks files as they change until interrupted.
func watch(files []string, asJSON bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Watch directories rather than files so editors that replace
	// files on save keep being tracked.
	sorted := make([]string, 0, len(dirs))
	for dir := range dirs {
		sorted = append(sorted, dir)
	}
	sort.Strings(sorted)
	for _, dir := range sorted {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	log.Printf("watching %d files", len(watched))
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			printReport(checkFile(event.Name), asJSON)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
