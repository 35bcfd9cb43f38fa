// Package check implements the evaluation and decision engine of the probe:
// per-folder policy evaluation, aggregation across folders, and resolution of
// the aggregate into one severity and one summary line.
package check

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/commity/backupcheck/internal/config"
	"github.com/commity/backupcheck/internal/storage"
)

// ErrEmptyFolder is returned when a folder matched the filter but contains
// no objects, leaving youngest, oldest and average size undefined.
var ErrEmptyFolder = errors.New("folder contains no objects")

// Policy holds the thresholds one run is evaluated against. ReferenceTime is
// captured once per run so every folder sees the same age cutoffs.
type Policy struct {
	MinFirstAge   time.Duration // 0 = disabled
	MaxLastAge    time.Duration // 0 = disabled
	CheckSize     bool
	FolderPrefix  string
	ReferenceTime time.Time
}

// NewPolicy builds the run policy from the configuration and a reference time.
func NewPolicy(cfg *config.Config, now time.Time) Policy {
	return Policy{
		MinFirstAge:   cfg.MinFirstAge(),
		MaxLastAge:    cfg.MaxLastAge(),
		CheckSize:     cfg.CheckSize,
		FolderPrefix:  cfg.FolderPrefix,
		ReferenceTime: now,
	}
}

// Matches reports whether a folder name passes the prefix filter. An empty
// prefix matches every folder.
func (p Policy) Matches(folder string) bool {
	return strings.HasPrefix(folder, p.FolderPrefix)
}

// Folder is one logical backup stream: a named folder and its objects.
type Folder struct {
	Name    string
	Objects []storage.ObjectInfo
}

// Outcome is the result of evaluating one folder against the policy.
type Outcome struct {
	Folder   string
	Youngest storage.ObjectInfo
	Oldest   storage.ObjectInfo

	// AverageSize is the mean object size in the folder, kept for
	// diagnostic output. Zero when size checking is disabled.
	AverageSize int64

	ExceedsMaxAge bool
	ExceedsMinAge bool
	SizeWarning   bool
	SizeError     bool
}

// Evaluate classifies one folder against the age and size policies.
//
// Objects are ordered by LastModified descending with a stable sort, so
// ties between identical timestamps resolve to the enumeration order and
// re-evaluating the same input picks the same youngest and oldest objects.
func Evaluate(folder Folder, policy Policy) (Outcome, error) {
	if len(folder.Objects) == 0 {
		return Outcome{}, fmt.Errorf("%w: %s", ErrEmptyFolder, folder.Name)
	}

	objects := make([]storage.ObjectInfo, len(folder.Objects))
	copy(objects, folder.Objects)
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	youngest := objects[0]
	oldest := objects[len(objects)-1]

	outcome := Outcome{
		Folder:   folder.Name,
		Youngest: youngest,
		Oldest:   oldest,
	}

	if policy.MaxLastAge > 0 {
		cutoff := policy.ReferenceTime.Add(-policy.MaxLastAge)
		outcome.ExceedsMaxAge = youngest.LastModified.Before(cutoff)
	}

	if policy.MinFirstAge > 0 {
		cutoff := policy.ReferenceTime.Add(-policy.MinFirstAge)
		outcome.ExceedsMinAge = oldest.LastModified.After(cutoff)
	}

	if policy.CheckSize {
		var total int64
		for _, obj := range objects {
			total += obj.Size
		}
		average := float64(total) / float64(len(objects))
		outcome.AverageSize = int64(average)

		// A folder of all-zero objects has average 0; the boundary case
		// still counts as a warning.
		outcome.SizeWarning = float64(youngest.Size) < average/2 || average == 0
		outcome.SizeError = youngest.Size == 0
	}

	return outcome, nil
}
