package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/erazemk/findit/internal/app"
	"github.com/erazemk/findit/internal/claim"
	"github.com/erazemk/findit/internal/db"
	"github.com/erazemk/findit/internal/location"
	"github.com/erazemk/findit/internal/media"
	"github.com/erazemk/findit/internal/model"
)

func main() {
	// Optional .env next to the working directory; real environment wins.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "report":
		cmdReport(os.Args[2:])
	case "list":
		cmdList(os.Args[2:])
	case "claim":
		cmdClaim(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: findit <command> [flags]

Commands:
  report   report a lost item (photos, security question, location)
  list     list unclaimed items
  claim    claim an item (location check + security question)

Run 'findit <command> -h' for command flags.
`)
}

// stringList collects repeated flag values.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

// getEnv returns the value of an environment variable or a fallback.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// openDatabase opens the database, creating the schema on first run.
func openDatabase(path string) *sql.DB {
	database, err := db.Open(path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}
	return database
}

// buildApp assembles the application from flags and environment. Explicit
// coordinates pin the location provider; otherwise the position is resolved
// by IP geolocation.
func buildApp(database *sql.DB, lat, lon float64) *app.App {
	var locator location.Provider
	if !math.IsNaN(lat) && !math.IsNaN(lon) {
		locator = location.NewStatic(lat, lon)
	} else {
		locator = location.NewIPLocator(getEnv("FINDIT_IPAPI_URL", ""))
	}

	var mediaStore media.Store = media.Inline{}
	if getEnv("FINDIT_MEDIA_STORE", "inline") == "minio" {
		s, err := media.NewMinioStore(context.Background(), media.MinioConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", ""),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MINIO_SECRET_KEY", ""),
			Bucket:         getEnv("MINIO_BUCKET", "findit-media"),
			UseSSL:         getEnv("MINIO_USE_SSL", "false") == "true",
		})
		if err != nil {
			slog.Error("failed to set up object store", "error", err)
			os.Exit(1)
		}
		mediaStore = s
	}

	return app.New(database, app.Options{
		Locator:  locator,
		Geocoder: location.NewGeocoder(getEnv("FINDIT_GEOCODE_URL", "")),
		Media:    mediaStore,
	})
}

func cmdReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dbPath := fs.String("db", getEnv("FINDIT_DB", "findit.sqlite3"), "path to SQLite database file")
	name := fs.String("name", "", "item name")
	description := fs.String("description", "", "item description")
	question := fs.String("question", "", "security question a rightful owner can answer")
	answer := fs.String("answer", "", "expected answer (stored case- and whitespace-insensitively)")
	videoPath := fs.String("video", "", "optional video file")
	lat := fs.Float64("lat", math.NaN(), "report latitude (default: resolve automatically)")
	lon := fs.Float64("lon", math.NaN(), "report longitude (default: resolve automatically)")
	address := fs.String("address", "", "address (default: reverse geocode the coordinates)")
	var photos stringList
	fs.Var(&photos, "photo", "photo file (repeatable; half will be hidden until claimed)")
	fs.Parse(args)

	database := openDatabase(*dbPath)
	defer database.Close()
	a := buildApp(database, *lat, *lon)

	draft := app.ReportDraft{
		Name:             *name,
		Description:      *description,
		SecurityQuestion: *question,
		SecurityAnswer:   *answer,
	}
	for _, path := range photos {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading photo %s: %v\n", path, err)
			os.Exit(1)
		}
		draft.Photos = append(draft.Photos, app.Upload{Name: baseName(path), Data: data})
	}
	if *videoPath != "" {
		data, err := os.ReadFile(*videoPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading video %s: %v\n", *videoPath, err)
			os.Exit(1)
		}
		draft.Video = &app.Upload{Name: baseName(*videoPath), Data: data}
	}
	if !math.IsNaN(*lat) && !math.IsNaN(*lon) {
		draft.Location = &model.Location{Latitude: *lat, Longitude: *lon, Address: *address}
	}

	item, err := a.ReportItem(context.Background(), draft)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Reported: %s (%s)\n", item.Name, item.ID)
	fmt.Printf("  Location: %s\n", item.Location.Address)
	fmt.Printf("  Photos: %d visible, %d hidden until claimed\n", len(item.Images), len(item.HiddenImages))
	if item.Video != "" {
		fmt.Println("  Video: hidden until claimed")
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", getEnv("FINDIT_DB", "findit.sqlite3"), "path to SQLite database file")
	all := fs.Bool("all", false, "include claimed items")
	fs.Parse(args)

	database := openDatabase(*dbPath)
	defer database.Close()
	a := buildApp(database, math.NaN(), math.NaN())

	ctx := context.Background()
	items := a.ListUnclaimedItems(ctx)
	if *all {
		items = a.ListItems(ctx)
	}

	if len(items) == 0 {
		fmt.Println("No items.")
		return
	}

	for _, item := range items {
		status := "unclaimed"
		if item.Claimed {
			status = "claimed"
		}
		fmt.Printf("%s  %-20s  %s  [%s]\n",
			item.ID, item.Name, item.DateReported.Format("2006-01-02"), status)
		fmt.Printf("  %s\n", item.Description)
		fmt.Printf("  %s — %d public photo(s)\n", item.Location.Address, len(item.Images))
	}
}

func cmdClaim(args []string) {
	fs := flag.NewFlagSet("claim", flag.ExitOnError)
	dbPath := fs.String("db", getEnv("FINDIT_DB", "findit.sqlite3"), "path to SQLite database file")
	id := fs.String("id", "", "ID of the item to claim")
	lat := fs.Float64("lat", math.NaN(), "your latitude (default: resolve automatically)")
	lon := fs.Float64("lon", math.NaN(), "your longitude (default: resolve automatically)")
	outDir := fs.String("out", "", "directory to save revealed media into")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		os.Exit(1)
	}

	database := openDatabase(*dbPath)
	defer database.Close()
	a := buildApp(database, *lat, *lon)
	ctx := context.Background()

	v, err := a.BeginClaim(ctx, *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("You are %.1f km from the reported location — within range.\n", v.DistanceKm())

	// Security question, with unbounded retries; an empty line cancels.
	scanner := bufio.NewScanner(os.Stdin)
	item := v.Item()
	for {
		fmt.Printf("\n%s\n> ", item.SecurityQuestion)
		if !scanner.Scan() {
			a.CancelClaim(v)
			fmt.Println("\nClaim cancelled.")
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			a.CancelClaim(v)
			fmt.Println("Claim cancelled.")
			return
		}

		err := a.SubmitAnswer(v, text)
		if err == nil {
			break
		}
		if errors.Is(err, claim.ErrAnswerMismatch) {
			fmt.Println("Incorrect answer. Please try again (empty line to cancel).")
			continue
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	images, video, err := v.RevealedMedia()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nVerified! %d photo(s) revealed", len(images))
	if video != "" {
		fmt.Print(" plus a video")
	}
	fmt.Println(".")
	if *outDir != "" {
		if err := saveMedia(*outDir, item.ID, images, video); err != nil {
			fmt.Fprintf(os.Stderr, "Error: saving media: %v\n", err)
		} else {
			fmt.Printf("Saved to %s.\n", *outDir)
		}
	}

	fmt.Print("\nConfirm claim? [y/N] ")
	if !scanner.Scan() || strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
		a.CancelClaim(v)
		fmt.Println("Claim cancelled.")
		return
	}

	info, err := a.ConfirmClaim(ctx, v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Item claimed at %s. Contact the owner to arrange pickup.\n",
		info.ClaimedAt.Format("2006-01-02 15:04 MST"))
}

// saveMedia writes revealed media to files. Inline data URLs are decoded;
// object-store URLs are recorded in a manifest for the user to fetch.
func saveMedia(dir, itemID string, images []string, video string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var urls []string
	write := func(ref, name string) error {
		payload, ok := strings.CutPrefix(ref, "data:")
		if !ok {
			urls = append(urls, ref)
			return nil
		}
		_, b64, ok := strings.Cut(payload, ";base64,")
		if !ok {
			return fmt.Errorf("unrecognized media reference in %s", name)
		}
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return err
		}
		return os.WriteFile(dir+"/"+name, data, 0644)
	}

	for i, ref := range images {
		if err := write(ref, fmt.Sprintf("%s-photo-%d.jpg", itemID, i+1)); err != nil {
			return err
		}
	}
	if video != "" {
		if err := write(video, itemID+"-video.mp4"); err != nil {
			return err
		}
	}
	if len(urls) > 0 {
		manifest := strings.Join(urls, "\n") + "\n"
		if err := os.WriteFile(dir+"/"+itemID+"-urls.txt", []byte(manifest), 0644); err != nil {
			return err
		}
	}
	return nil
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
