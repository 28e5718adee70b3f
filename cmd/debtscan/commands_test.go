package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeCommandInterface(t *testing.T) {
	analyzeCmd := NewAnalyzeCommand()
	if analyzeCmd == nil {
		t.Fatal("NewAnalyzeCommand should return a valid command instance")
	}

	cobraCmd := analyzeCmd.CreateCobraCommand()
	if cobraCmd == nil {
		t.Fatal("CreateCobraCommand should return a valid cobra command")
	}

	if cobraCmd.Use != "analyze [paths...]" {
		t.Errorf("Expected command use 'analyze [paths...]', got '%s'", cobraCmd.Use)
	}
	if cobraCmd.Short == "" {
		t.Error("Command should have a short description")
	}

	flags := cobraCmd.Flags()
	expectedFlags := []string{"config", "format", "output", "coverage", "verbose", "quiet", "jobs", "no-parallel", "exclude", "watch"}
	for _, flagName := range expectedFlags {
		if flags.Lookup(flagName) == nil {
			t.Errorf("Expected flag '%s' to be defined", flagName)
		}
	}
}

func TestAnalyzeCommandRejectsUnknownFormat(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "main.py")
	if err := os.WriteFile(src, []byte("def add(a, b):\n    return a + b\n"), 0644); err != nil {
		t.Fatalf("failed to write fixture source: %v", err)
	}

	cobraCmd := NewAnalyzeCommand().CreateCobraCommand()
	var output bytes.Buffer
	cobraCmd.SetOut(&output)
	cobraCmd.SetErr(&output)
	cobraCmd.SetArgs([]string{"--format", "xml", src})

	if err := cobraCmd.Execute(); err == nil {
		t.Error("analyze command should fail for an unsupported output format")
	}
}

func TestAnalyzeCommandRunsAndWritesReportFile(t *testing.T) {
	tempDir := t.TempDir()
	src := filepath.Join(tempDir, "main.py")
	if err := os.WriteFile(src, []byte("def add(a, b):\n    return a + b\n"), 0644); err != nil {
		t.Fatalf("failed to write fixture source: %v", err)
	}
	reportPath := filepath.Join(tempDir, "report.json")

	cobraCmd := NewAnalyzeCommand().CreateCobraCommand()
	var output bytes.Buffer
	cobraCmd.SetOut(&output)
	cobraCmd.SetErr(&output)
	cobraCmd.SetArgs([]string{"--quiet", "--format", "json", "--output", reportPath, src})

	if err := cobraCmd.Execute(); err != nil {
		t.Fatalf("analyze command should not fail: %v", err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("expected report file to be written: %v", err)
	}
}

func TestCheckCommandInterface(t *testing.T) {
	checkCmd := NewCheckCommand()
	if checkCmd == nil {
		t.Fatal("NewCheckCommand should return a valid command instance")
	}

	cobraCmd := checkCmd.CreateCobraCommand()
	if cobraCmd == nil {
		t.Fatal("CreateCobraCommand should return a valid cobra command")
	}

	if cobraCmd.Use != "check [paths...]" {
		t.Errorf("Expected command use 'check [paths...]', got '%s'", cobraCmd.Use)
	}
	if cobraCmd.Short == "" {
		t.Error("Command should have a short description")
	}

	flags := cobraCmd.Flags()
	expectedFlags := []string{"config", "quiet", "max-severity", "coverage"}
	for _, flagName := range expectedFlags {
		if flags.Lookup(flagName) == nil {
			t.Errorf("Expected flag '%s' to be defined", flagName)
		}
	}
}

func TestSeverityFromNameKnownNames(t *testing.T) {
	for _, name := range []string{"low", "medium", "high", "critical"} {
		if _, err := severityFromName(name); err != nil {
			t.Errorf("severityFromName(%q) should succeed: %v", name, err)
		}
	}
}

func TestSeverityFromNameUnknownNameIsAnError(t *testing.T) {
	if _, err := severityFromName("apocalyptic"); err == nil {
		t.Error("severityFromName should reject an unrecognized severity name")
	}
}

func TestCheckCommandRejectsUnknownMaxSeverity(t *testing.T) {
	cobraCmd := NewCheckCommand().CreateCobraCommand()
	var output bytes.Buffer
	cobraCmd.SetOut(&output)
	cobraCmd.SetErr(&output)
	cobraCmd.SetArgs([]string{"--max-severity", "apocalyptic", "."})

	if err := cobraCmd.Execute(); err == nil {
		t.Error("check command should fail for an unrecognized --max-severity value")
	}
}

func TestVersionCommandInterface(t *testing.T) {
	versionCmd := NewVersionCommand()
	if versionCmd == nil {
		t.Fatal("NewVersionCommand should return a valid command instance")
	}

	cobraCmd := versionCmd.CreateCobraCommand()
	if cobraCmd == nil {
		t.Fatal("CreateCobraCommand should return a valid cobra command")
	}
	if cobraCmd.Use != "version" {
		t.Errorf("Expected command use 'version', got '%s'", cobraCmd.Use)
	}

	var output bytes.Buffer
	cobraCmd.SetOut(&output)
	cobraCmd.SetErr(&output)

	if err := cobraCmd.Execute(); err != nil {
		t.Fatalf("version command should not fail: %v", err)
	}
	if output.String() == "" {
		t.Error("version command should produce output")
	}
}

func TestVersionCommandShortFlagPrintsOnlyVersion(t *testing.T) {
	cobraCmd := NewVersionCommand().CreateCobraCommand()
	var output bytes.Buffer
	cobraCmd.SetOut(&output)
	cobraCmd.SetErr(&output)
	cobraCmd.SetArgs([]string{"--short"})

	if err := cobraCmd.Execute(); err != nil {
		t.Fatalf("version --short should not fail: %v", err)
	}
	if strings.Contains(output.String(), "Commit:") {
		t.Error("version --short should not include the full version block")
	}
}

func TestInitCommandInterface(t *testing.T) {
	initCmd := NewInitCommand()
	if initCmd == nil {
		t.Fatal("NewInitCommand should return a valid command instance")
	}

	cobraCmd := initCmd.CreateCobraCommand()
	if cobraCmd == nil {
		t.Fatal("CreateCobraCommand should return a valid cobra command")
	}
	if cobraCmd.Use != "init" {
		t.Errorf("Expected command use 'init', got '%s'", cobraCmd.Use)
	}

	flags := cobraCmd.Flags()
	for _, flagName := range []string{"force", "config"} {
		if flags.Lookup(flagName) == nil {
			t.Errorf("Expected flag '%s' to be defined", flagName)
		}
	}
}

func TestInitCommandExecution(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".debtscan.toml")

	cobraCmd := NewInitCommand().CreateCobraCommand()
	var output bytes.Buffer
	cobraCmd.SetOut(&output)
	cobraCmd.SetErr(&output)
	cobraCmd.SetArgs([]string{"--config", configFile})

	if err := cobraCmd.Execute(); err != nil {
		t.Fatalf("init command should not fail: %v", err)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("should be able to read config file: %v", err)
	}

	contentStr := string(content)
	for _, section := range []string{"[scoring]", "[thresholds]", "[god_object]"} {
		if !strings.Contains(contentStr, section) {
			t.Errorf("config file should contain %s section", section)
		}
	}
}

func TestInitCommandFileExists(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".debtscan.toml")
	if err := os.WriteFile(configFile, []byte("existing config"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	cobraCmd := NewInitCommand().CreateCobraCommand()
	var output bytes.Buffer
	cobraCmd.SetOut(&output)
	cobraCmd.SetErr(&output)

	cobraCmd.SetArgs([]string{"--config", configFile})
	if err := cobraCmd.Execute(); err == nil {
		t.Error("init command should fail when file exists without --force")
	}

	output.Reset()
	cobraCmd.SetArgs([]string{"--config", configFile, "--force"})
	if err := cobraCmd.Execute(); err != nil {
		t.Errorf("init command should succeed with --force: %v", err)
	}
}

func TestRootCommandRegistersAllSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"analyze", "check", "version", "init"} {
		if !names[name] {
			t.Errorf("root command should register a %q subcommand", name)
		}
	}
}
