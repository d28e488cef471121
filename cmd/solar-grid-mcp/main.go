package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ironsheep/solar-grid-mcp/internal/pipeline"
	"github.com/ironsheep/solar-grid-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("solar-grid-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("solar-grid-mcp - MCP server for solar disk detection and heliographic grids")
			fmt.Println()
			fmt.Println("Usage: solar-grid-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  SOLAR_GRID_LOG_LEVEL=debug       Enable debug logging")
			fmt.Println("  SOLAR_GRID_PROFILE=<file.json5>  Detector, grid and style tuning profile")
			fmt.Println("  SOLAR_GRID_DETECTOR=<name>       circle-fit, contour-fit or auto")
			fmt.Println("  SOLAR_GRID_STEP=<degrees>        Default grid spacing")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// A missing .env is normal; the real environment still applies.
	_ = godotenv.Load()

	debug := os.Getenv("SOLAR_GRID_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Solar Grid MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	opts, err := pipeline.LoadOptions(os.Getenv)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if debug {
		log.Printf("detector %s, grid step %d°, %d samples per line", opts.Detector, opts.Grid.StepDegrees, opts.Grid.Samples)
	}

	srv := server.New(opts)
	srv.Debug = debug
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
