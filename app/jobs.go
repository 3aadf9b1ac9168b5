package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"example/chess-history/app/logging"
	"example/chess-history/app/models"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

// JobRunner handles one ingest job.
type JobRunner func(ctx context.Context, job models.IngestJob) error

// Enqueuer hands a job to whatever executes it.
type Enqueuer interface {
	Enqueue(ctx context.Context, job models.IngestJob) error
}

// ProcessJob ingests the job's selection and appends the table to sink.
// An empty table is a legitimate result and is not written.
func ProcessJob(ctx context.Context, p *Pipeline, sink Sink, job models.IngestJob) error {
	start := time.Now()
	log := logging.Named("jobs")

	tbl := p.Ingest(ctx, job.Identity, job.Selection)
	if tbl.Empty() {
		log.Info().Str("job_id", job.JobID).Str("identity", job.Identity).Str("selection", job.Selection.String()).
			Msg("no games for selection")
		return nil
	}
	if sink != nil {
		if err := sink.Append(ctx, tbl); err != nil {
			return fmt.Errorf("append %d games for %s: %w", tbl.Len(), job.Identity, err)
		}
	}

	log.Info().
		Str("job_id", job.JobID).
		Str("identity", job.Identity).
		Str("selection", job.Selection.String()).
		Int("games", tbl.Len()).
		Int("excluded", tbl.Excluded).
		Dur("took", time.Since(start)).
		Msg("job complete")
	return nil
}

// sqsSender is the part of *sqs.Client the queue uses.
type sqsSender interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSQueue enqueues ingest jobs onto an SQS queue.
type SQSQueue struct {
	client   sqsSender
	queueURL string
}

func NewSQSQueue(client sqsSender, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

func (q *SQSQueue) Enqueue(ctx context.Context, job models.IngestJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.JobID, err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}

// RunnerQueue executes jobs in-process instead of queueing them.
type RunnerQueue struct {
	Run JobRunner
}

func (q RunnerQueue) Enqueue(ctx context.Context, job models.IngestJob) error {
	return q.Run(ctx, job)
}

// DecodeJob parses a queue message body.
func DecodeJob(body string) (models.IngestJob, error) {
	var job models.IngestJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return job, err
	}
	if job.Identity == "" {
		return job, fmt.Errorf("job %s: missing identity", job.JobID)
	}
	if job.Selection.Kind() == models.SelectInvalid {
		return job, fmt.Errorf("job %s: %w", job.JobID, ErrInvalidSelection)
	}
	return job, nil
}

// Sweeper walks every archive of every configured identity and enqueues one
// locator job per archive. Identities run on up to Workers goroutines; the
// archives of one identity go out in order.
type Sweeper struct {
	Archives interface {
		ListArchives(ctx context.Context, identity string) []models.ArchiveRef
	}
	Queue   Enqueuer
	Workers int
}

type SweepResult struct {
	Identity string
	Archives int
	Queued   int
	Failed   int
}

func (s *Sweeper) Sweep(ctx context.Context, identities []string) []SweepResult {
	log := logging.Named("sweep")
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]SweepResult, len(identities))
	idx := make(chan int, len(identities))
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for n := range idx {
				results[n] = s.sweepOne(ctx, identities[n])
				log.Info().Int("worker", id).Str("identity", identities[n]).
					Int("archives", results[n].Archives).Int("queued", results[n].Queued).Int("failed", results[n].Failed).
					Msg("identity swept")
			}
		}(i)
	}

	// Feed jobs
	for n := range identities {
		idx <- n
	}
	close(idx)
	wg.Wait()

	return results
}

func (s *Sweeper) sweepOne(ctx context.Context, identity string) SweepResult {
	res := SweepResult{Identity: identity}
	refs := s.Archives.ListArchives(ctx, identity)
	res.Archives = len(refs)

	for _, ref := range refs {
		job := models.IngestJob{
			JobID:     uuid.NewString(),
			Identity:  identity,
			Selection: models.Selection{URL: ref.URL},
		}
		if err := s.Queue.Enqueue(ctx, job); err != nil {
			res.Failed++
			logging.Named("sweep").Error().Err(err).Str("identity", identity).Str("archive", ref.Tag()).Msg("enqueue failed")
			continue
		}
		res.Queued++
	}
	return res
}
