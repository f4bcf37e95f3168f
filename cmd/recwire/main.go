// Command recwire exports JSON Schema documents for record types registered
// in a Go package. It compiles the target package into a plugin, loads it so
// the package's init-time registrations run, then renders the registered
// records from the shared default engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	recwire "github.com/recwire/recwire"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recwire",
		Short:         "Export JSON Schemas for recwire record registrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(exportCmd())
	return cmd
}

func exportCmd() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render schemas for the records a package registers",
		Long: `Export compiles the package at --pkgdir with -buildmode=plugin and loads it,
running its init-time recwire.Register calls against this process's default
engine. It then renders every registered record (or just --record) in the
chosen dialect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&opts.pkgdir, "pkgdir", "", "directory of the package that registers records (required)")
	fl.StringVar(&opts.record, "record", "", "export a single record by name instead of all")
	fl.StringVar(&opts.dialect, "dialect", "draft6", "schema dialect: draft6, draft4, swagger2, openapi3")
	fl.StringVar(&opts.format, "format", "json", "output format: json or yaml")
	fl.StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	fl.BoolVarP(&opts.verbose, "verbose", "v", false, "log plugin build steps to stderr")
	_ = cmd.MarkFlagRequired("pkgdir")
	return cmd
}

type exportOptions struct {
	pkgdir  string
	record  string
	dialect string
	format  string
	out     string
	verbose bool
}

func runExport(cmd *cobra.Command, opts exportOptions) error {
	dialect, err := parseDialect(opts.dialect)
	if err != nil {
		return err
	}
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unknown format %q, want json or yaml", opts.format)
	}

	logf := func(format string, a ...any) {
		if opts.verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", a...)
		}
	}
	if err := loadRegistrations(opts.pkgdir, logf); err != nil {
		return err
	}

	var doc any
	if opts.record != "" {
		doc, err = recwire.JSONSchemaByName(opts.record, recwire.WithDialect(dialect))
	} else {
		doc, err = recwire.AllJSONSchemas(recwire.WithDialect(dialect))
	}
	if err != nil {
		return err
	}

	out, err := renderDocument(doc, opts.format)
	if err != nil {
		return err
	}
	if opts.out == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	return os.WriteFile(opts.out, out, 0o644)
}

func parseDialect(name string) (recwire.Dialect, error) {
	switch name {
	case "draft6":
		return recwire.Draft06, nil
	case "draft4":
		return recwire.Draft04, nil
	case "swagger2":
		return recwire.Swagger2, nil
	case "openapi3":
		return recwire.OpenAPI3, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", name)
	}
}
