package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"mykitchen/internal/config"
	"mykitchen/internal/db"
	applog "mykitchen/internal/log"
	"mykitchen/internal/recipes"
	"mykitchen/models"
)

var (
	cleanWhitespace = regexp.MustCompile(`\s+`)
	tagSeparator    = regexp.MustCompile(`[|,]`)
)

var (
	ownerEmail string
	dryRun     bool

	openDatabaseFunc = func() (*gorm.DB, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := applog.SetLevel(cfg.Logging.Level); err != nil {
			return nil, err
		}
		return db.Configure(cfg.Database)
	}
)

var rootCmd = &cobra.Command{
	Use:   "import_recipes <csv>",
	Short: "Import recipes from a CSV file",
	Long: `Reads recipes from a CSV file with the columns
title,description,servings,tags,ingredients and stores them for one owner.

Tags are separated by "|" and ingredients by ";", each ingredient written as
"<amount> <unit> <name>", for example "200 g flour; 2 piece egg".
Recipes the owner already has (by title) are skipped.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabaseFunc()
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close(database)

		summary, err := importFile(cmd.Context(), database, args[0], importOptions{
			OwnerEmail: ownerEmail,
			DryRun:     dryRun,
		})
		if err != nil {
			return err
		}
		summary.print(cmd.OutOrStdout(), filepath.Base(args[0]))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&ownerEmail, "owner-email", "", "email of the user who will own the imported recipes (defaults to the first user)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file and report without writing")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

type importOptions struct {
	OwnerEmail string
	DryRun     bool
}

type importSummary struct {
	Imported int
	Skipped  int
	DryRun   bool
}

func (s importSummary) print(w io.Writer, source string) {
	if s.DryRun {
		fmt.Fprintf(w, "Dry run: %d recipes would be imported from %s (%d already present)\n", s.Imported, source, s.Skipped)
		return
	}
	fmt.Fprintf(w, "Imported %d recipes from %s (%d skipped)\n", s.Imported, source, s.Skipped)
}

func importFile(ctx context.Context, database *gorm.DB, csvPath string, opts importOptions) (importSummary, error) {
	if strings.TrimSpace(csvPath) == "" {
		return importSummary{}, fmt.Errorf("csv path must not be empty")
	}
	if database == nil {
		return importSummary{}, fmt.Errorf("database handle is nil")
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return importSummary{}, fmt.Errorf("read csv: %w", err)
	}

	inputs := make([]recipes.Input, 0, len(records))
	for idx, record := range records {
		input, err := buildRecipeInput(record)
		if err != nil {
			return importSummary{}, fmt.Errorf("record %d (%s): %w", idx+1, record["title"], err)
		}
		inputs = append(inputs, input)
	}

	ownerID, err := resolveImportOwner(ctx, database, opts.OwnerEmail)
	if err != nil {
		return importSummary{}, fmt.Errorf("resolve owner: %w", err)
	}

	summary := importSummary{DryRun: opts.DryRun}
	for idx, input := range inputs {
		if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			exists, err := ownerHasTitle(ctx, tx, ownerID, input.Title)
			if err != nil {
				return err
			}
			if exists {
				summary.Skipped++
				return nil
			}
			if opts.DryRun {
				summary.Imported++
				return nil
			}

			svc := recipes.NewService(recipes.NewRepository(tx), nil, 0)
			created, err := svc.Create(ctx, ownerID, input)
			if err != nil {
				return err
			}
			applog.Debug(ctx, "recipe imported", "recipe_id", created.ID, "title", created.Title)
			summary.Imported++
			return nil
		}); err != nil {
			return summary, fmt.Errorf("record %d (%s): %w", idx+1, input.Title, err)
		}
	}

	return summary, nil
}

func ownerHasTitle(ctx context.Context, tx *gorm.DB, ownerID uint, title string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Recipe{}).
		Where("owner_id = ? AND LOWER(title) = ?", ownerID, strings.ToLower(title)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("look up existing recipe %q: %w", title, err)
	}
	return count > 0, nil
}

func resolveImportOwner(ctx context.Context, database *gorm.DB, email string) (uint, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if email != "" {
		if err := database.WithContext(ctx).Where("lower(email) = ?", email).First(&user).Error; err != nil {
			return 0, fmt.Errorf("find owner by email %q: %w", email, err)
		}
		return user.ID, nil
	}

	if err := database.WithContext(ctx).Order("id asc").First(&user).Error; err != nil {
		return 0, fmt.Errorf("find default owner: %w", err)
	}
	return user.ID, nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = strings.ToLower(strings.TrimSpace(key))
	}
	if !contains(header, "title") || !contains(header, "ingredients") {
		return nil, errors.New("csv header must include title and ingredients columns")
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func buildRecipeInput(row map[string]string) (recipes.Input, error) {
	title := normalizeText(row["title"])
	if title == "" {
		return recipes.Input{}, errors.New("title is required")
	}

	servings := 0
	if raw := strings.TrimSpace(row["servings"]); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return recipes.Input{}, fmt.Errorf("invalid servings %q", raw)
		}
		servings = parsed
	}

	ingredients, err := parseIngredients(row["ingredients"])
	if err != nil {
		return recipes.Input{}, err
	}

	return recipes.Input{
		Title:       title,
		Description: normalizeText(row["description"]),
		Servings:    servings,
		Tags:        parseTags(row["tags"]),
		Ingredients: ingredients,
	}, nil
}

func normalizeText(value string) string {
	return strings.TrimSpace(cleanWhitespace.ReplaceAllString(value, " "))
}

func parseTags(value string) []string {
	var tags []string
	for _, part := range tagSeparator.Split(value, -1) {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseIngredients reads "<amount> <unit> <name>" entries separated by ";".
// Names may contain spaces.
func parseIngredients(value string) ([]recipes.IngredientInput, error) {
	var out []recipes.IngredientInput
	for _, part := range strings.Split(value, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("ingredient %q must be written as <amount> <unit> <name>", strings.TrimSpace(part))
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("ingredient %q has an invalid amount", strings.TrimSpace(part))
		}
		out = append(out, recipes.IngredientInput{
			Amount: amount,
			Unit:   fields[1],
			Name:   strings.Join(fields[2:], " "),
		})
	}
	return out, nil
}
