// cmd/analysis-server/main.go — HTTP front end for the funcana engine.
//
// Exposes the analysis tools as an HTTP endpoint for agent frameworks.
//
// Usage:
//   analysis-server serve --port 8080
//   analysis-server serve --config server.toml
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	funcana "github.com/funcana/funcana"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type serverConfig struct {
	Server struct {
		Port               int `toml:"port"`
		ReadTimeoutSec     int `toml:"read_timeout_seconds"`
		WriteTimeoutSec    int `toml:"write_timeout_seconds"`
		IdleTimeoutSec     int `toml:"idle_timeout_seconds"`
		ReadHeaderTimeoutS int `toml:"read_header_timeout_seconds"`
	} `toml:"server"`
}

func defaultConfig() serverConfig {
	var cfg serverConfig
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeoutSec = 15
	cfg.Server.WriteTimeoutSec = 15
	cfg.Server.IdleTimeoutSec = 60
	cfg.Server.ReadHeaderTimeoutS = 5
	return cfg
}

func loadConfig(path string) (serverConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func main() {
	var port int
	var configPath string

	root := &cobra.Command{
		Use:   "analysis-server",
		Short: "HTTP server for symbolic function analysis",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the analysis HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return run(cfg)
		},
	}
	serve.Flags().IntVar(&port, "port", 8080, "port to listen on")
	serve.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	root.AddCommand(serve)

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(funcana.ToolSpec())
		},
	}
	root.AddCommand(schema)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg serverConfig) error {
	mux := http.NewServeMux()

	// POST /tool — handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic in /tool: %v\n%s", rec, string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req funcana.ToolRequest
		if err := dec.Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if dec.More() {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON: trailing data")
			return
		}

		resp := funcana.HandleToolCall(req)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	// GET /schema — return tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, funcana.ToolSpec())
	})

	// GET /health — liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("funcana analysis server listening on %s", addr)
	log.Printf("  POST /tool   — execute a tool call")
	log.Printf("  GET  /schema — tool schema for agent registration")
	log.Printf("  GET  /health — health check")

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutS) * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSec) * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
