package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/wadjakorntonsri/go-video-share/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-video-share/pkg/auth"
	"github.com/wadjakorntonsri/go-video-share/pkg/config"
	"github.com/wadjakorntonsri/go-video-share/pkg/core/domain"
	"github.com/wadjakorntonsri/go-video-share/pkg/ports"
)

const usage = "expected 'token', 'export' or 'import' subcommands"

var errUsage = errors.New(usage)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := run(context.Background(), cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

// run executes one subcommand. Resources it opens are closed before it returns.
func run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "token":
		tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
		subject := tokenCmd.String("sub", getEnv("USER_ID", "1"), "token subject")
		role := tokenCmd.String("role", getEnv("USER_ROLE", "admin"), "role claim")
		ttl := tokenCmd.Duration("ttl", 0, "token lifetime, 0 for no expiry")
		if err := tokenCmd.Parse(args[1:]); err != nil {
			return err
		}
		token, err := issueToken(cfg, *subject, *role, *ttl)
		if err != nil {
			return fmt.Errorf("token failed: %w", err)
		}
		fmt.Fprintln(stdout, token)
		return nil

	case "export":
		exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
		if err := exportCmd.Parse(args[1:]); err != nil {
			return err
		}
		repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}
		defer repo.Close()
		if err := doExport(ctx, repo, stdout); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return nil

	case "import":
		importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
		importFile := importCmd.String("file", "", "JSON file to import")
		if err := importCmd.Parse(args[1:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.PrintDefaults()
			return errors.New("import: -file is required")
		}
		file, err := os.Open(*importFile)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()

		repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}
		defer repo.Close()
		count, err := doImport(ctx, repo, file)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		log.Printf("Imported %d videos", count)
		return nil

	default:
		return errUsage
	}
}

// issueToken signs a bearer token the server will accept
func issueToken(cfg *config.Config, subject, role string, ttl time.Duration) (string, error) {
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return "", err
	}
	return issuer.Issue(subject, role, ttl)
}

func doExport(ctx context.Context, repo ports.VideoRepository, w io.Writer) error {
	videos, err := repo.DumpVideos(ctx)
	if err != nil {
		return err
	}
	if videos == nil {
		videos = []domain.Video{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(videos)
}

// doImport inserts videos whose file path is not registered yet. Imported
// rows get fresh ids.
func doImport(ctx context.Context, repo ports.VideoRepository, r io.Reader) (int, error) {
	var videos []domain.Video
	if err := json.NewDecoder(r).Decode(&videos); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	existing, err := repo.DumpVideos(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, v := range existing {
		known[v.FilePath] = true
	}

	count := 0
	for _, v := range videos {
		if known[v.FilePath] {
			log.Printf("Skipping existing path: %s", v.FilePath)
			continue
		}
		if v.Status == "" {
			v.Status = domain.StatusActive
		}
		if err := repo.CreateVideo(ctx, &v); err != nil {
			log.Printf("Failed to import %s: %v", v.FileName, err)
			continue
		}
		known[v.FilePath] = true
		count++
	}
	return count, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
