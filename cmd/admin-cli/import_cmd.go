package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/educentral-admin-api/internal/importer"
	"github.com/noah-isme/educentral-admin-api/internal/models"
	"github.com/noah-isme/educentral-admin-api/internal/repository"
	"github.com/noah-isme/educentral-admin-api/internal/service"
	"github.com/noah-isme/educentral-admin-api/pkg/config"
	"github.com/noah-isme/educentral-admin-api/pkg/database"
	"github.com/noah-isme/educentral-admin-api/pkg/logger"
)

type importOptions struct {
	file       string
	role       string
	field      string
	batch      string
	section    string
	department string
	category   string
	location   string
	strict     bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:       "import <users|courses|events>",
		Short:     "Import a spreadsheet into the configured store and print the report",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"users", "courses", "events"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Path to a .xlsx, .xls or .csv file (required)")
	cmd.Flags().StringVar(&opts.role, "role", string(models.RoleStudent), "User role: student or faculty")
	cmd.Flags().StringVar(&opts.field, "field", "", "Default field for students")
	cmd.Flags().StringVar(&opts.batch, "batch", "", "Default batch for students")
	cmd.Flags().StringVar(&opts.section, "section", "", "Default section for students")
	cmd.Flags().StringVar(&opts.department, "department", "", "Default department for faculty and courses")
	cmd.Flags().StringVar(&opts.category, "category", "", "Default category for events")
	cmd.Flags().StringVar(&opts.location, "location", "", "Default location for events")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Skip rows lacking required columns instead of filling fallbacks")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newParseCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Print the rows of a spreadsheet as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.NewImportService(service.ImportServiceParams{})
			rows, err := parseFile(svc, file)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a .xlsx, .xls or .csv file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, entity string, opts importOptions) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	stores := repository.NewMemoryStores(cfg.Storage.Seed)
	if cfg.Storage.Driver == config.StoragePostgres {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close() //nolint:errcheck
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		stores = repository.NewPostgresStores(db, false)
	} else {
		logr.Warn("memory storage selected, the import is not persisted", zap.String("storage", cfg.Storage.Driver))
	}

	policy := importer.Policy(cfg.Import.Policy)
	if opts.strict {
		policy = importer.Strict
	}
	var ids importer.IDGenerator = importer.NewSequenceGenerator(nil)
	if cfg.Import.IDStrategy == config.IDUUID {
		ids = importer.UUIDGenerator{}
	}
	svc := service.NewImportService(service.ImportServiceParams{
		Users:       stores.Users,
		Courses:     stores.Courses,
		Events:      stores.Events,
		Pipeline:    importer.NewPipeline(importer.NewNormalizer(nil), ids, policy),
		MaxFileSize: -1,
		Logger:      logr,
	})

	rows, err := parseFile(svc, opts.file)
	if err != nil {
		return err
	}

	var report *importer.Report
	switch entity {
	case "users":
		role := models.UserRole(strings.ToLower(opts.role))
		if !role.Valid() {
			return fmt.Errorf("invalid --role %q", opts.role)
		}
		report, err = svc.ImportUsers(ctx, rows, importer.UserDefaults{
			Role:       role,
			Field:      opts.field,
			Batch:      opts.batch,
			Section:    opts.section,
			Department: opts.department,
		})
	case "courses":
		report, err = svc.ImportCourses(ctx, rows, importer.CourseDefaults{Department: opts.department})
	case "events":
		report, err = svc.ImportEvents(ctx, rows, importer.EventDefaults{Category: opts.category, Location: opts.location})
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), report.Message)
	return writeJSON(cmd.OutOrStdout(), report)
}

func parseFile(svc *service.ImportService, path string) ([]importer.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svc.Parse(filepath.Base(path), f, -1)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
