// Command arrowpg-server starts a PostgreSQL wire-protocol listener
// backed by one or more file-based tables, the way cmd/logfire_pg starts
// one backed by a single HTTP-fetched source.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	flag "github.com/spf13/pflag"

	"github.com/arrowpg/arrowpg/auth"
	"github.com/arrowpg/arrowpg/engine/fileengine"
	"github.com/arrowpg/arrowpg/wireserver"
)

var version = "dev"

func main() {
	var csvTables, jsonTables, arrowTables, parquetTables, avroTables []string
	var dirs []string
	var host string
	var port int
	var tlsCert, tlsKey string
	var authRequirePasswords, authAllowEmptyPasswords bool
	var catalogIPCDir string
	var showVersion, showHelp bool

	flag.StringArrayVar(&csvTables, "csv", nil, "Register a CSV table as name:path (repeatable)")
	flag.StringArrayVar(&jsonTables, "json", nil, "Register a JSON table as name:path (repeatable)")
	flag.StringArrayVar(&arrowTables, "arrow", nil, "Register an Arrow-IPC table as name:path (repeatable)")
	flag.StringArrayVar(&parquetTables, "parquet", nil, "Register a Parquet table as name:path (repeatable)")
	flag.StringArrayVar(&avroTables, "avro", nil, "Register an Avro table as name:path (repeatable; always fails, no Avro reader is wired)")
	flag.StringArrayVar(&dirs, "dir", nil, "Load every recognized table file under a directory (repeatable)")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVarP(&port, "port", "p", 5432, "Port to listen on")
	flag.StringVar(&tlsCert, "tls-cert", "", "TLS certificate file (not yet wired, see DESIGN.md)")
	flag.StringVar(&tlsKey, "tls-key", "", "TLS key file (not yet wired, see DESIGN.md)")
	flag.BoolVar(&authRequirePasswords, "auth-require-passwords", false, "Reject logins for users with no stored password")
	flag.BoolVar(&authAllowEmptyPasswords, "auth-allow-empty-passwords", true, "Accept an empty password for users with no stored password")
	flag.StringVar(&catalogIPCDir, "catalog-ipc-dir", "", "Directory of .arrow/.feather files overriding the built-in pg_catalog tables")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showHelp, "help", false, "Print this help message and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("arrowpg-server %s\n", version)
		os.Exit(0)
	}
	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	logger := log.New(os.Stdout, "[arrowpg] ", log.LstdFlags)

	if tlsCert != "" || tlsKey != "" {
		logger.Printf("warning: --tls-cert/--tls-key given but no psql-wire TLS option is wired yet (see DESIGN.md); continuing without TLS")
	}

	eng := fileengine.New()
	if err := loadTables("csv", csvTables, eng.LoadCSV); err != nil {
		logger.Fatalf("%s", err)
	}
	if err := loadTables("json", jsonTables, eng.LoadJSON); err != nil {
		logger.Fatalf("%s", err)
	}
	if err := loadTables("arrow", arrowTables, eng.LoadArrowIPC); err != nil {
		logger.Fatalf("%s", err)
	}
	if err := loadTables("parquet", parquetTables, eng.LoadParquet); err != nil {
		logger.Fatalf("%s", err)
	}
	if err := loadTables("avro", avroTables, eng.LoadAvro); err != nil {
		logger.Fatalf("%s", err)
	}
	for _, dir := range dirs {
		if err := loadDir(eng, dir); err != nil {
			logger.Fatalf("%s", err)
		}
	}

	manager := auth.NewManager(auth.Config{
		RequirePasswords:    authRequirePasswords,
		AllowEmptyPasswords: authAllowEmptyPasswords,
	})

	srv, err := wireserver.NewServer(eng, wireserver.Config{
		AuthSource: auth.NewManagerSource(manager),
		Version:    "15.0",
		Logger:     logger,
	})
	if err != nil {
		logger.Fatalf("failed to create server: %s", err)
	}

	if catalogIPCDir != "" {
		overrides, err := loadIPCOverrides(catalogIPCDir)
		if err != nil {
			logger.Fatalf("failed to load --catalog-ipc-dir %s: %s", catalogIPCDir, err)
		}
		srv.Provider().LoadIPCOverrides(overrides)
		srv.RefreshCatalog()
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	fmt.Printf("Starting arrowpg-server on %s...\n", addr)
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Fatalf("failed to start server: %s", err)
	}
}

// loadTables applies load to each "name:path" entry in specs.
func loadTables(kind string, specs []string, load func(name, path string) error) error {
	for _, spec := range specs {
		name, path, err := splitNamePath(spec)
		if err != nil {
			return fmt.Errorf("--%s %q: %w", kind, spec, err)
		}
		if err := load(name, path); err != nil {
			return fmt.Errorf("--%s %s: %w", kind, spec, err)
		}
	}
	return nil
}

func splitNamePath(spec string) (name, path string, err error) {
	i := strings.IndexByte(spec, ':')
	if i < 0 {
		return "", "", fmt.Errorf("expected name:path")
	}
	name, path = spec[:i], spec[i+1:]
	if name == "" || path == "" {
		return "", "", fmt.Errorf("expected name:path")
	}
	return name, path, nil
}

// loadDir registers every recognized table file under dir, naming each
// table after the file's base name with its extension stripped.
func loadDir(eng *fileengine.Engine, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".csv":
			return eng.LoadCSV(name, path)
		case ".json":
			return eng.LoadJSON(name, path)
		case ".arrow", ".feather":
			return eng.LoadArrowIPC(name, path)
		case ".parquet":
			return eng.LoadParquet(name, path)
		default:
			return nil
		}
	})
}

// loadIPCOverrides reads every .arrow/.feather file directly under dir
// into a map keyed by file stem, for catalog.Provider.LoadIPCOverrides.
// Only the first record batch of each file is kept; the pg_catalog
// tables this overrides are always single-batch snapshots.
func loadIPCOverrides(dir string) (map[string]arrow.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]arrow.Record)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".arrow" && ext != ".feather" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}

		reader, err := ipc.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open ipc %s: %w", path, err)
		}
		if !reader.Next() {
			reader.Release()
			f.Close()
			return nil, fmt.Errorf("%s: no record batches", path)
		}
		rec := reader.Record()
		rec.Retain()
		reader.Release()
		f.Close()

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		overrides[name] = rec
	}
	return overrides, nil
}
