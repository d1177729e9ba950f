package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/threadline/threadline/internal/auth"
	"github.com/threadline/threadline/internal/model"
	"github.com/threadline/threadline/internal/repository"
)

type output struct {
	KeyID     string `json:"key_id"`
	Key       string `json:"key"`
	KeyPrefix string `json:"key_prefix"`
	Name      string `json:"name"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		name        = flag.String("name", "bootstrap", "Admin key name")
		env         = flag.String("env", auth.EnvLive, "Key environment: live or test")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	generated, err := auth.GenerateAdminKey(*env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate admin key:", err)
		os.Exit(1)
	}

	adminKey := &model.AdminKey{
		ID:        ulid.Make().String(),
		Name:      *name,
		KeyHash:   generated.Hash,
		KeyPrefix: generated.Prefix,
		CreatedAt: time.Now().UTC(),
	}

	if err := repo.CreateAdminKey(ctx, adminKey); err != nil {
		fmt.Fprintln(os.Stderr, "create admin key:", err)
		os.Exit(1)
	}

	out := output{
		KeyID:     adminKey.ID,
		Key:       generated.Plaintext,
		KeyPrefix: adminKey.KeyPrefix,
		Name:      adminKey.Name,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
