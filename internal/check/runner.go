package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/commity/backupcheck/internal/config"
	"github.com/commity/backupcheck/internal/storage"
)

var (
	// ErrBucketNotFound means the configured bucket does not exist or is
	// not accessible. The run halts immediately.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrNoFolders means the bucket contains no top-level folders, so
	// there is nothing to evaluate.
	ErrNoFolders = errors.New("no folders found in bucket")
)

// Runner coordinates one check run: enumerate folders, evaluate each
// matching folder, aggregate the outcomes and render the report.
type Runner struct {
	config  *config.Config
	policy  Policy
	storage storage.Storage
	logger  *slog.Logger
	out     io.Writer
}

// NewRunner creates a runner for one invocation. The reference time is
// captured here so every folder is measured against the same cutoffs, and
// diagnostic lines go to out.
func NewRunner(cfg *config.Config, store storage.Storage, logger *slog.Logger, out io.Writer) *Runner {
	return &Runner{
		config:  cfg,
		policy:  NewPolicy(cfg, time.Now().UTC()),
		storage: store,
		logger:  logger,
		out:     out,
	}
}

// Policy returns the policy this runner evaluates against.
func (r *Runner) Policy() Policy {
	return r.policy
}

// Run executes the check. Any returned error is fatal for the whole run;
// the caller maps it to CRITICAL.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.logger.Debug("starting check",
		"bucket", r.config.BucketName,
		"folder_prefix", r.config.FolderPrefix,
		"min_first_age_hours", r.config.MinFirstAgeHours,
		"max_last_age_hours", r.config.MaxLastAgeHours,
		"check_size", r.config.CheckSize,
		"reference_time", r.policy.ReferenceTime,
	)

	exists, err := r.storage.BucketExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, r.config.BucketName)
	}

	folders, err := r.storage.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFolders, r.config.BucketName)
	}
	r.logger.Debug("listed folders", "count", len(folders), "folders", folders)

	var matched []string
	for _, folder := range folders {
		if r.policy.Matches(folder) {
			matched = append(matched, folder)
		} else {
			r.logger.Debug("folder excluded by prefix filter", "folder", folder)
		}
	}

	// Folders are independent and the aggregation is commutative, so the
	// fetch+evaluate step can run in parallel. Outcomes land at fixed
	// indexes to keep diagnostic output in listing order.
	outcomes := make([]Outcome, len(matched))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i, name := range matched {
		g.Go(func() error {
			objects, err := r.storage.ListObjects(gctx, name)
			if err != nil {
				return err
			}
			outcome, err := Evaluate(Folder{Name: name, Objects: objects}, r.policy)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.config.ListFiles {
		r.printDiagnostics(outcomes)
	}

	result := Aggregate(outcomes)
	severity, reason := Decide(result, r.policy)

	report := &Report{
		Result:   result,
		Severity: severity,
		Reason:   reason,
		Message:  Render(result, severity, reason, r.policy),
	}

	r.logger.Debug("check finished",
		"severity", severity.String(),
		"reason", string(reason),
		"folders_examined", result.FoldersExamined,
	)

	return report, nil
}

// printDiagnostics writes one line per folder for the youngest object plus
// an explanation line per breach.
func (r *Runner) printDiagnostics(outcomes []Outcome) {
	maxHours := int(r.policy.MaxLastAge.Hours())
	minHours := int(r.policy.MinFirstAge.Hours())

	for _, o := range outcomes {
		fmt.Fprintf(r.out, "%s|%s|%s|%d\n",
			o.Youngest.Key,
			o.Youngest.StorageClass,
			o.Youngest.LastModified.Format(time.RFC3339),
			o.Youngest.Size,
		)

		if o.ExceedsMaxAge {
			fmt.Fprintf(r.out, "found backup older than maxlastage of %d hours: %s\n",
				maxHours, o.Youngest.Key)
		}
		if o.ExceedsMinAge {
			fmt.Fprintf(r.out, "found backup newer than minfirstage of %d hours: %s\n",
				minHours, o.Oldest.Key)
		}
		if o.SizeError {
			fmt.Fprintf(r.out, "size of %s is 0\n", o.Youngest.Key)
		} else if o.SizeWarning {
			fmt.Fprintf(r.out, "size of %s (%s) is less than half the folder average of %s\n",
				o.Youngest.Key,
				humanize.Bytes(uint64(o.Youngest.Size)),
				humanize.Bytes(uint64(o.AverageSize)),
			)
		}
	}
}
