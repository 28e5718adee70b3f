package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/debtscan/debtscan/internal/config"
)

// InitCommand scaffolds a project configuration file.
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command.
func NewInitCommand() *InitCommand {
	return &InitCommand{
		force:      false,
		configPath: ".debtscan.toml",
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization.
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a debtscan configuration file",
		Long: `Initialize a debtscan configuration file in the current directory.

Writes a .debtscan.toml file populated with the built-in defaults for
complexity, scoring, and god-object thresholds, ready to be tuned for your
project.

Examples:
  # Create .debtscan.toml in the current directory
  debtscan init

  # Create a config file with a custom name
  debtscan init --config myconfig.toml

  # Overwrite an existing configuration file
  debtscan init --force`,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", ".debtscan.toml", "Configuration file path")

	return cmd
}

func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configDir, err)
	}

	data, err := config.DefaultTOML()
	if err != nil {
		return fmt.Errorf("rendering default configuration: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "\nTo customize debtscan for your project:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  1. Edit %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  2. Adjust thresholds and weights as needed\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  3. Run 'debtscan analyze .' to use your configuration\n")

	return nil
}

// NewInitCmd creates and returns the init cobra command.
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
