package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mkoblar/sizzle/internal/api"
	"github.com/mkoblar/sizzle/internal/asset"
	"github.com/mkoblar/sizzle/internal/auth"
	"github.com/mkoblar/sizzle/internal/db"
)

func main() {
	// Load .env if present; real environment wins.
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: sizzle <serve|token>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "token":
		cmdToken(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\nUsage: sizzle <serve|token>\n", os.Args[1])
		os.Exit(1)
	}
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", envOr("SIZZLE_DB", "sizzle.sqlite3"), "path to SQLite database file")
	addr := fs.String("addr", envOr("SIZZLE_ADDR", ":8080"), "listen address")
	dataDir := fs.String("data", envOr("SIZZLE_DATA", "data"), "directory for image assets")
	jwtSecret := fs.String("jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing key (auto-generated if empty)")
	fs.Parse(args)

	// Auto-generate the JWT secret if not provided.
	if *jwtSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate JWT secret")
		}
		*jwtSecret = secret
		log.Info().Msg("JWT secret auto-generated (tokens will be invalidated on restart)")
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database schema")
	}

	assets, err := asset.NewStore(filepath.Join(*dataDir, "staging"), filepath.Join(*dataDir, "images"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up asset store")
	}

	handler := api.LoggingMiddleware(api.NewRouter(database, assets, *jwtSecret))

	log.Info().Str("addr", *addr).Msg("server listening")
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// cmdToken mints a bearer token for a caller identity, for development and
// for operators acting as the external identity provider.
func cmdToken(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	userID := fs.String("user", "", "caller identity to embed in the token")
	jwtSecret := fs.String("jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing key")
	fs.Parse(args)

	if *userID == "" || *jwtSecret == "" {
		fmt.Fprintln(os.Stderr, "Usage: sizzle token -user <id> [-jwt-secret <key>]")
		os.Exit(1)
	}

	token, err := auth.GenerateToken(*jwtSecret, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to generate token")
	}

	fmt.Println(token)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
