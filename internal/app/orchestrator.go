package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gadsdencode/roboscan/internal/compare"
	"github.com/gadsdencode/roboscan/internal/cooldown"
	"github.com/gadsdencode/roboscan/internal/domainutil"
	"github.com/gadsdencode/roboscan/internal/history"
	"github.com/gadsdencode/roboscan/internal/logging"
	"github.com/gadsdencode/roboscan/internal/model"
	"github.com/gadsdencode/roboscan/internal/recommend"
	"github.com/gadsdencode/roboscan/internal/scanner"
	"github.com/gadsdencode/roboscan/internal/score"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// ScanID is set on the result event.
	ScanID string `json:"scan_id,omitempty"`
}

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one asynchronous scan run tracked for the event stream.
type Job struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	UserID    string        `json:"user_id,omitempty"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	ScanID    string        `json:"scan_id,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at,omitzero"`
	Events    chan JobEvent `json:"-"`
}

// ScanOutcome is what one scan invocation hands back to the API layer.
type ScanOutcome struct {
	Scan *model.Scan `json:"scan"`

	// Domain is the normalized registrable domain used as the cooldown key.
	Domain string `json:"domain"`

	// RewardEligible is false when the (user, domain) pair was inside its
	// cooldown window at scan time.
	RewardEligible bool `json:"rewardEligible"`
}

// Orchestrator composes the scan pipeline: normalize, cooldown check,
// fetch set, score, persist. It also tracks async jobs for the event
// stream surface.
type Orchestrator struct {
	cfg      *Config
	scanner  *scanner.Scanner
	history  *history.Store
	cooldown cooldown.Store
	logger   logging.Logger

	jobsMu sync.Mutex
	jobs   map[string]*Job
}

// NewOrchestrator ties together config, scanner, history and cooldown.
func NewOrchestrator(cfg *Config, sc *scanner.Scanner, hist *history.Store, cd cooldown.Store, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:      cfg,
		scanner:  sc,
		history:  hist,
		cooldown: cd,
		logger:   logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		jobs:     map[string]*Job{},
	}
}

// RunScan performs one synchronous scan. Validation failures wrap
// scanner.ErrInvalidURL; fatal connectivity failures surface as
// *scanner.ScanError. Cooldown state only affects reward eligibility,
// never whether the scan runs.
func (o *Orchestrator) RunScan(ctx context.Context, userID, rawURL string) (*ScanOutcome, error) {
	domain, err := domainutil.Normalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scanner.ErrInvalidURL, err)
	}

	onCooldown := false
	if userID != "" && o.cooldown != nil {
		active, err := o.cooldown.Active(ctx, userID, domain)
		if err != nil {
			// Cooldown storage trouble must not block scanning; the worst
			// case is one extra reward grant.
			o.logger.Warn("cooldown check failed",
				logging.Field{Key: "domain", Value: domain},
				logging.Field{Key: "error", Value: err.Error()})
		} else {
			onCooldown = active
		}
	}

	scan, err := o.scanner.Scan(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	scan.Score = score.Calculate(scan, o.cfg.ScoreCfg)

	saved, err := o.history.Save(ctx, scan)
	if err != nil {
		return nil, fmt.Errorf("persist scan: %w", err)
	}

	if userID != "" && o.cooldown != nil && !onCooldown {
		if err := o.cooldown.Touch(ctx, userID, domain, o.cfg.CooldownWindow); err != nil {
			o.logger.Warn("cooldown touch failed",
				logging.Field{Key: "domain", Value: domain},
				logging.Field{Key: "error", Value: err.Error()})
		}
	}

	return &ScanOutcome{
		Scan:           saved,
		Domain:         domain,
		RewardEligible: userID != "" && !onCooldown,
	}, nil
}

// StartScanJob runs a scan in the background and returns the job handle
// immediately. Events stream status transitions and the result scan ID.
func (o *Orchestrator) StartScanJob(ctx context.Context, userID, rawURL string) *Job {
	job := &Job{
		ID:        uuid.New().String(),
		URL:       rawURL,
		UserID:    userID,
		Status:    JobPending,
		StartedAt: time.Now().UTC(),
		Events:    make(chan JobEvent, 16),
	}

	o.jobsMu.Lock()
	o.jobs[job.ID] = job
	o.jobsMu.Unlock()

	go func() {
		// The job outlives the originating HTTP request.
		jobCtx := context.WithoutCancel(ctx)

		o.setJobStatus(job, JobRunning, "")
		outcome, err := o.RunScan(jobCtx, userID, rawURL)
		if err != nil {
			o.setJobStatus(job, JobFailed, err.Error())
			close(job.Events)
			return
		}

		o.jobsMu.Lock()
		job.ScanID = outcome.Scan.ID
		o.jobsMu.Unlock()

		o.emitJobEvent(job, JobEvent{JobID: job.ID, Type: JobEventResult, ScanID: outcome.Scan.ID})
		o.setJobStatus(job, JobDone, "")
		close(job.Events)
	}()

	return job
}

// GetJob returns a tracked job by ID.
func (o *Orchestrator) GetJob(id string) (*Job, bool) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	job, ok := o.jobs[id]
	return job, ok
}

// CompareScans loads two persisted scans and produces the ordered
// difference list plus its aggregates.
func (o *Orchestrator) CompareScans(ctx context.Context, baseID, headID string) ([]model.ScanDifference, model.DiffStats, []model.BotPermissionRow, error) {
	base, err := o.history.Get(ctx, baseID)
	if err != nil {
		return nil, model.DiffStats{}, nil, fmt.Errorf("load base scan: %w", err)
	}
	head, err := o.history.Get(ctx, headID)
	if err != nil {
		return nil, model.DiffStats{}, nil, fmt.Errorf("load head scan: %w", err)
	}

	diffs := compare.Compare(base, head, o.cfg.CompareCfg)
	return diffs, compare.DiffStats(diffs), compare.BotPermissionRows(base, head), nil
}

// Recommendations loads a persisted scan and runs the rule table over it.
func (o *Orchestrator) Recommendations(ctx context.Context, scanID string) ([]model.OptimizationRecommendation, error) {
	scan, err := o.history.Get(ctx, scanID)
	if err != nil {
		return nil, err
	}
	return recommend.Generate(scan), nil
}

// GetScan returns one persisted scan.
func (o *Orchestrator) GetScan(ctx context.Context, scanID string) (*model.Scan, error) {
	return o.history.Get(ctx, scanID)
}

// ListScans returns scan history for the registrable domain of rawURL.
func (o *Orchestrator) ListScans(ctx context.Context, rawURL string, limit int) ([]*model.Scan, error) {
	return o.history.ListByDomain(ctx, rawURL, limit)
}

func (o *Orchestrator) setJobStatus(job *Job, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	job.Status = status
	job.Error = errMsg
	if status == JobDone || status == JobFailed {
		job.EndedAt = time.Now().UTC()
	}
	o.jobsMu.Unlock()

	o.emitJobEvent(job, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: status, Error: errMsg})
}

func (o *Orchestrator) emitJobEvent(job *Job, ev JobEvent) {
	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

// Close releases orchestrator-owned resources.
func (o *Orchestrator) Close() {
	if o.history != nil {
		o.history.Close()
	}
}
