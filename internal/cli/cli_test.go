package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/datagen"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/sink"
)

func generateDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gen := datagen.NewGenerator(datagen.Config{Songs: 10, Users: 4, Events: 200, Days: 2, Seed: 3})
	if _, err := gen.Generate(context.Background(), dir); err != nil {
		t.Fatalf("Failed to generate dataset: %v", err)
	}
	return dir
}

func testJobConfig(input, output string) *config.Config {
	c := config.DefaultConfig()
	c.Input = input
	c.Output = output
	c.Reader.Concurrency = 4
	return c
}

func TestRunJobParquet(t *testing.T) {
	input := generateDataset(t)
	out := filepath.Join(t.TempDir(), "out")
	textfile := filepath.Join(t.TempDir(), "etl.prom")

	c := testJobConfig(input, out)
	c.Join.Policy = "left"
	c.Metrics.Textfile = textfile

	if err := runJob(context.Background(), c, false); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	for _, table := range []string{"songs", "artists", "users", "time", "songplays"} {
		if _, err := os.Stat(filepath.Join(out, table, sink.SuccessMarker)); err != nil {
			t.Errorf("Expected %s marker for table %s: %v", sink.SuccessMarker, table, err)
		}
	}

	data, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("Expected metrics textfile: %v", err)
	}
	if !strings.Contains(string(data), "etl_table_rows") {
		t.Error("Expected etl_table_rows in metrics textfile")
	}
}

func TestRunJobDryRun(t *testing.T) {
	input := generateDataset(t)
	out := filepath.Join(t.TempDir(), "out")

	if err := runJob(context.Background(), testJobConfig(input, out), true); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("Expected no output for dry run, got %v", err)
	}
}

func TestRunJobInvalidJoinPolicy(t *testing.T) {
	c := testJobConfig(t.TempDir(), t.TempDir())
	c.Join.Policy = "outer"

	if err := runJob(context.Background(), c, true); err == nil {
		t.Error("Expected error for invalid join policy")
	}
}

func TestRunJobMissingInput(t *testing.T) {
	c := testJobConfig(t.TempDir(), filepath.Join(t.TempDir(), "out"))

	if err := runJob(context.Background(), c, true); err == nil {
		t.Error("Expected error for empty input directory")
	}
}

func TestRunJobLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Format: logging.FormatJSON, Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	input := t.TempDir()
	if err := runJob(context.Background(), testJobConfig(input, filepath.Join(t.TempDir(), "out")), true); err == nil {
		t.Fatal("Expected error for empty input directory")
	}

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "ETL run failed") {
		t.Errorf("Expected an error log line, got: %s", out)
	}
	if !strings.Contains(out, input) {
		t.Errorf("Expected the input path in the log line, got: %s", out)
	}
}

func TestRunJobCancelled(t *testing.T) {
	input := generateDataset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runJob(ctx, testJobConfig(input, filepath.Join(t.TempDir(), "out")), false); err == nil {
		t.Error("Expected error for cancelled run")
	}
}

func TestOutputName(t *testing.T) {
	c := config.DefaultConfig()
	if got := outputName(c); got != "output" {
		t.Errorf("Expected output, got %q", got)
	}

	c.OutputFormat = "postgres"
	c.Postgres.Schema = "dw"
	if got := outputName(c); got != "postgres schema dw" {
		t.Errorf("Expected postgres schema dw, got %q", got)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTablesCommand(t *testing.T) {
	out, err := executeCommand(t, "tables")
	if err != nil {
		t.Fatalf("tables failed: %v", err)
	}

	for _, want := range []string{
		"songs (partitioned by year, artist_id)",
		"time (partitioned by year, month)",
		"songplays (partitioned by year, month)",
		"songplay_id",
		"primary key",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "pgedge-etl ") {
		t.Errorf("Unexpected version output: %q", out)
	}
}

func TestGenerateThenRootRun(t *testing.T) {
	data := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	_, err := executeCommand(t, "generate", "--out", data,
		"--songs", "8", "--users", "3", "--events", "120", "--days", "2", "--seed", "11")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(data, "log_data", "2018-11-02-events.json")); err != nil {
		t.Fatalf("Expected generated log file: %v", err)
	}

	_, err = executeCommand(t, "--input", data, "--output", out, "--compression", "gzip")
	if err != nil {
		t.Fatalf("root run failed: %v", err)
	}
	if cfg.Sink.Compression != "gzip" {
		t.Errorf("Expected compression flag to override config, got %s", cfg.Sink.Compression)
	}
	if _, err := os.Stat(filepath.Join(out, "songplays", sink.SuccessMarker)); err != nil {
		t.Errorf("Expected songplays output: %v", err)
	}
}

func TestStatusRequiresConnection(t *testing.T) {
	connection = ""
	_, err := executeCommand(t, "status")
	if err == nil {
		t.Error("Expected error without a connection string")
	}
}
