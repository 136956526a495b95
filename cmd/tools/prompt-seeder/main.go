// cmd/tools/prompt-seeder/main.go
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/database"
	"advisor-ai/internal/models"
	"advisor-ai/internal/repository"
	"advisor-ai/pkg/registry"
)

const defaultRegistryPath = "configs/prompts.json"

// promptUpserter is the part of the prompt repository the seeder writes through.
type promptUpserter interface {
	Upsert(ctx context.Context, p *models.Prompt) (bool, error)
}

type seedResult struct {
	Inserted int
	Updated  int
}

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)

	addPath := addCmd.String("path", defaultRegistryPath, "Path to prompt registry file")
	category := addCmd.String("category", "", "Prompt category (e.g., tax-planning)")
	responseType := addCmd.String("type", string(models.ResponseTypeEmail), "Response type (email, proposal)")
	description := addCmd.String("description", "", "Description")
	prompt := addCmd.String("prompt", "", "Prompt text")

	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to prompt registry file")

	seedPath := seedCmd.String("path", defaultRegistryPath, "Path to prompt registry file")
	dryRun := seedCmd.Bool("dry-run", false, "Print the prompts without writing to the database")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *category == "" || *prompt == "" {
			fmt.Println("Error: category and prompt are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		entry := registry.PromptEntry{
			Category:     *category,
			ResponseType: *responseType,
			Description:  *description,
			Prompt:       *prompt,
		}
		if err := addPrompt(*addPath, entry); err != nil {
			fmt.Printf("Error adding prompt: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added prompt: %s\n", entry.Key())

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d prompts.\n", len(reg.Prompts))

	case "seed":
		seedCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*seedPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		if *dryRun {
			for _, p := range reg.Prompts {
				fmt.Printf("  %s: %s\n", p.Key(), p.Description)
			}
			return
		}
		res, err := seedDatabase(reg)
		if err != nil {
			fmt.Printf("Error seeding prompts: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded prompts: %d inserted, %d updated.\n", res.Inserted, res.Updated)

	case "help":
		fallthrough
	default:
		help()
	}
}

func addPrompt(path string, entry registry.PromptEntry) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.PromptRegistry{Version: "1.0.0"}
	}
	if err := reg.Add(entry); err != nil {
		return err
	}
	if err := registry.Validate(reg); err != nil {
		return err
	}
	return registry.Save(reg, path)
}

func seedDatabase(reg *registry.PromptRegistry) (seedResult, error) {
	cfg, err := config.Load()
	if err != nil {
		return seedResult{}, fmt.Errorf("failed to load config: %w", err)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return seedResult{}, err
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var res seedResult
	err = database.WithTx(ctx, pg.DB, func(tx *sql.Tx) error {
		res, err = seed(ctx, repository.NewPromptRepository(tx), reg)
		return err
	})
	return res, err
}

func seed(ctx context.Context, repo promptUpserter, reg *registry.PromptRegistry) (seedResult, error) {
	var res seedResult
	for _, entry := range reg.Prompts {
		inserted, err := repo.Upsert(ctx, entry.Model())
		if err != nil {
			return res, fmt.Errorf("prompt %s: %w", entry.Key(), err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func help() {
	fmt.Print(`
Usage: prompt-seeder <command> [flags]

Commands:
  add      Add a master prompt to the registry file
  validate Validate the registry file
  seed     Upsert every registry prompt into the prompts table
  help     Show this help message

Examples:
  prompt-seeder add -category tax-planning -type email -description "Tax questions" -prompt "Respond to..."
  prompt-seeder validate -path configs/prompts.json
  prompt-seeder seed -path configs/prompts.json -dry-run

Use 'prompt-seeder <command> -h' for more information about a command.
`)
}
