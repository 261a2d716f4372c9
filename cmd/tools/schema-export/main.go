// cmd/tools/schema-export/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"churn-predictor/internal/collector"
	"churn-predictor/internal/models"
	"churn-predictor/pkg/registry"
)

var registryPath string

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	profileCmd := flag.NewFlagSet("check-profile", flag.ExitOnError)

	// Export command flags
	exportCmd.StringVar(&registryPath, "path", "configs/pipeline-registry.json", "Path to write the registry file")
	version := exportCmd.String("version", "1.0.0", "Registry version")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/pipeline-registry.json", "Path to registry file")

	// Check-profile command flags
	profilePath := profileCmd.String("profile", "", "Path to a YAML customer profile")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		reg := registry.Build(*version, time.Now())
		if err := registry.SaveRegistry(reg, registryPath); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d features and %d stages to %s\n", len(reg.Features), len(reg.Stages), registryPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			fmt.Printf("Failed to load registry: %v\n", err)
			os.Exit(1)
		}
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d features.\n", len(reg.Features))

	case "check-profile":
		profileCmd.Parse(os.Args[2:])
		if *profilePath == "" {
			fmt.Println("Error: profile is required for check-profile.")
			profileCmd.Usage()
			os.Exit(1)
		}
		values, err := collector.LoadProfile(*profilePath, models.ChurnSchema())
		if err != nil {
			fmt.Printf("Profile check failed: %v\n", err)
			os.Exit(1)
		}
		printProfile(values)

	case "help":
		fallthrough
	default:
		help()
	}
}

func printProfile(values map[string]float64) {
	schema := models.ChurnSchema()
	fmt.Println("Profile is valid. Values in model order:")
	for i, name := range schema.Names() {
		fmt.Printf("  %2d  %-24s %s\n", i, name, collector.FormatValue(values[name]))
	}
}

func help() {
	fmt.Println(strings.TrimSpace(`
Usage: schema-export <command> [flags]

Commands:
  export         Write the pipeline registry (features, JSON Schema, stages)
  validate       Check a registry file against the compiled feature schema
  check-profile  Validate a YAML customer profile and print its vector order
  help           Show this help message

Examples:
  schema-export export -path configs/pipeline-registry.json
  schema-export validate -path configs/pipeline-registry.json
  schema-export check-profile -profile configs/profiles/high-risk.yaml
`))
}
