package check

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/commity/backupcheck/internal/config"
	"github.com/commity/backupcheck/internal/storage"
)

// mockStorage is a hand-written Storage implementation for runner tests.
type mockStorage struct {
	bucketExists bool
	bucketErr    error
	folders      []string
	foldersErr   error
	objects      map[string][]storage.ObjectInfo
	listErr      map[string]error
}

func (m *mockStorage) BucketExists(ctx context.Context) (bool, error) {
	return m.bucketExists, m.bucketErr
}

func (m *mockStorage) ListFolders(ctx context.Context) ([]string, error) {
	return m.folders, m.foldersErr
}

func (m *mockStorage) ListObjects(ctx context.Context, folder string) ([]storage.ObjectInfo, error) {
	if err, ok := m.listErr[folder]; ok {
		return nil, err
	}
	return m.objects[folder], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		BucketName:      "mainbackup",
		StorageProvider: "s3",
		AWSProfile:      "default",
		Concurrency:     2,
	}
}

// ago builds an object with an age relative to now; runner tests have to use
// wall-clock ages because the runner captures its own reference time.
func ago(key string, age time.Duration, size int64) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          key,
		Size:         size,
		LastModified: time.Now().UTC().Add(-age),
		StorageClass: "STANDARD",
	}
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name         string
		configure    func(cfg *config.Config)
		store        *mockStorage
		wantSeverity Severity
		wantExitCode int
	}{
		{
			name: "stale backup is critical",
			configure: func(cfg *config.Config) {
				cfg.MaxLastAgeHours = 24
			},
			store: &mockStorage{
				bucketExists: true,
				folders:      []string{"svc-a"},
				objects: map[string][]storage.ObjectInfo{
					"svc-a": {
						ago("svc-a/backup-2.tar.gz", 30*time.Hour, 100),
						ago("svc-a/backup-1.tar.gz", 54*time.Hour, 100),
					},
				},
			},
			wantSeverity: SeverityCritical,
			wantExitCode: 2,
		},
		{
			name:      "no age policy is a warning regardless of data",
			configure: func(cfg *config.Config) {},
			store: &mockStorage{
				bucketExists: true,
				folders:      []string{"svc-a"},
				objects: map[string][]storage.ObjectInfo{
					"svc-a": {ago("svc-a/backup-1.tar.gz", 1*time.Hour, 100)},
				},
			},
			wantSeverity: SeverityWarning,
			wantExitCode: 1,
		},
		{
			name: "undersized fresh backup is a warning",
			configure: func(cfg *config.Config) {
				cfg.MaxLastAgeHours = 24
				cfg.CheckSize = true
			},
			store: &mockStorage{
				bucketExists: true,
				folders:      []string{"svc-a"},
				objects: map[string][]storage.ObjectInfo{
					"svc-a": {
						ago("svc-a/backup-2.tar.gz", 1*time.Hour, 10),
						ago("svc-a/backup-1.tar.gz", 25*time.Hour, 1990),
					},
				},
			},
			wantSeverity: SeverityWarning,
			wantExitCode: 1,
		},
		{
			name: "healthy folders are ok",
			configure: func(cfg *config.Config) {
				cfg.MaxLastAgeHours = 24
				cfg.CheckSize = true
			},
			store: &mockStorage{
				bucketExists: true,
				folders:      []string{"svc-a", "svc-b"},
				objects: map[string][]storage.ObjectInfo{
					"svc-a": {
						ago("svc-a/backup-2.tar.gz", 1*time.Hour, 500),
						ago("svc-a/backup-1.tar.gz", 25*time.Hour, 500),
					},
					"svc-b": {
						ago("svc-b/backup-2.tar.gz", 2*time.Hour, 800),
						ago("svc-b/backup-1.tar.gz", 26*time.Hour, 800),
					},
				},
			},
			wantSeverity: SeverityOK,
			wantExitCode: 0,
		},
		{
			name: "zero size backup is critical even when ages pass",
			configure: func(cfg *config.Config) {
				cfg.MaxLastAgeHours = 24
				cfg.CheckSize = true
			},
			store: &mockStorage{
				bucketExists: true,
				folders:      []string{"svc-a"},
				objects: map[string][]storage.ObjectInfo{
					"svc-a": {ago("svc-a/backup-1.tar.gz", 1*time.Hour, 0)},
				},
			},
			wantSeverity: SeverityCritical,
			wantExitCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.configure(cfg)

			runner := NewRunner(cfg, tt.store, testLogger(), io.Discard)
			report, err := runner.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if report.Severity != tt.wantSeverity {
				t.Errorf("Severity = %v, want %v", report.Severity, tt.wantSeverity)
			}
			if report.Severity.ExitCode() != tt.wantExitCode {
				t.Errorf("ExitCode = %d, want %d", report.Severity.ExitCode(), tt.wantExitCode)
			}
			if !strings.HasPrefix(report.Message, tt.wantSeverity.String()) {
				t.Errorf("Message = %q, want prefix %q", report.Message, tt.wantSeverity.String())
			}
		})
	}
}

func TestRunner_PrefixFilter(t *testing.T) {
	cfg := testConfig()
	cfg.FolderPrefix = "svc"
	cfg.MaxLastAgeHours = 24

	store := &mockStorage{
		bucketExists: true,
		folders:      []string{"svc-a", "svc-b", "other"},
		objects: map[string][]storage.ObjectInfo{
			"svc-a": {ago("svc-a/backup-1.tar.gz", 1*time.Hour, 100)},
			"svc-b": {ago("svc-b/backup-1.tar.gz", 2*time.Hour, 100)},
			// An empty excluded folder must not fail the run either.
			"other": {},
		},
	}

	runner := NewRunner(cfg, store, testLogger(), io.Discard)
	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Result.FoldersExamined != 2 {
		t.Errorf("FoldersExamined = %d, want 2", report.Result.FoldersExamined)
	}
}

func TestRunner_FatalConditions(t *testing.T) {
	tests := []struct {
		name    string
		store   *mockStorage
		wantErr error
	}{
		{
			name:    "missing bucket halts the run",
			store:   &mockStorage{bucketExists: false},
			wantErr: ErrBucketNotFound,
		},
		{
			name:    "empty bucket has nothing to evaluate",
			store:   &mockStorage{bucketExists: true},
			wantErr: ErrNoFolders,
		},
		{
			name: "matched folder without objects",
			store: &mockStorage{
				bucketExists: true,
				folders:      []string{"svc-a"},
			},
			wantErr: ErrEmptyFolder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.MaxLastAgeHours = 24

			runner := NewRunner(cfg, tt.store, testLogger(), io.Discard)
			_, err := runner.Run(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunner_ListingFailureAbortsRun(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLastAgeHours = 24

	listErr := errors.New("access denied")
	store := &mockStorage{
		bucketExists: true,
		folders:      []string{"svc-a", "svc-b"},
		objects: map[string][]storage.ObjectInfo{
			"svc-a": {ago("svc-a/backup-1.tar.gz", 1*time.Hour, 100)},
		},
		listErr: map[string]error{"svc-b": listErr},
	}

	runner := NewRunner(cfg, store, testLogger(), io.Discard)
	_, err := runner.Run(context.Background())
	if !errors.Is(err, listErr) {
		t.Errorf("Run() error = %v, want %v", err, listErr)
	}
}

func TestRunner_ListFilesDiagnostics(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLastAgeHours = 24
	cfg.ListFiles = true
	cfg.Concurrency = 4

	store := &mockStorage{
		bucketExists: true,
		folders:      []string{"svc-a", "svc-b"},
		objects: map[string][]storage.ObjectInfo{
			"svc-a": {
				ago("svc-a/backup-2.tar.gz", 30*time.Hour, 100),
				ago("svc-a/backup-1.tar.gz", 54*time.Hour, 100),
			},
			"svc-b": {ago("svc-b/backup-1.tar.gz", 1*time.Hour, 100)},
		},
	}

	var out bytes.Buffer
	runner := NewRunner(cfg, store, testLogger(), &out)
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d diagnostic lines, want 3:\n%s", len(lines), out.String())
	}

	// Output follows folder listing order regardless of evaluation order.
	if !strings.HasPrefix(lines[0], "svc-a/backup-2.tar.gz|STANDARD|") {
		t.Errorf("line 0 = %q, want youngest object line for svc-a", lines[0])
	}
	if !strings.Contains(lines[1], "older than maxlastage of 24 hours: svc-a/backup-2.tar.gz") {
		t.Errorf("line 1 = %q, want max age explanation", lines[1])
	}
	if !strings.HasPrefix(lines[2], "svc-b/backup-1.tar.gz|STANDARD|") {
		t.Errorf("line 2 = %q, want youngest object line for svc-b", lines[2])
	}

	parts := strings.Split(lines[0], "|")
	if len(parts) != 4 {
		t.Errorf("diagnostic line has %d fields, want 4: %q", len(parts), lines[0])
	}
	if parts[3] != "100" {
		t.Errorf("size field = %q, want 100", parts[3])
	}
}
