package main

import (
	"context"
	"time"

	"example/chess-history/app"
	"example/chess-history/app/logging"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

func main() {
	baseCtx := context.Background()

	initCtx, cancel := context.WithTimeout(baseCtx, 30*time.Second)
	deps, err := app.Bootstrap(initCtx)
	cancel()
	if err != nil {
		logging.Get().Fatal().Err(err).Msg("bootstrap failed")
	}
	defer deps.Close()

	log := logging.Named("worker")
	if deps.SQS == nil {
		log.Fatal().Msg("QUEUE_URL environment variable is required")
	}
	queueURL := deps.Config.QueueURL
	log.Info().Str("queue", queueURL).Msg("worker started")

	for {
		// Long-poll SQS
		recvCtx, cancel := context.WithTimeout(baseCtx, 30*time.Second)
		resp, err := deps.SQS.ReceiveMessage(recvCtx, &sqs.ReceiveMessageInput{
			QueueUrl:            &queueURL,
			MaxNumberOfMessages: 5,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   180, // must exceed the slowest job
		})
		cancel()

		if err != nil {
			log.Error().Err(err).Msg("ReceiveMessage failed")
			time.Sleep(5 * time.Second)
			continue
		}
		if len(resp.Messages) == 0 {
			time.Sleep(2 * time.Second)
			continue
		}

		for _, m := range resp.Messages {
			if m.Body == nil {
				deleteMessage(deps.SQS, queueURL, m)
				continue
			}

			job, err := app.DecodeJob(*m.Body)
			if err != nil {
				// poison message: retrying will not help
				log.Error().Err(err).Str("body", *m.Body).Msg("dropping undecodable job")
				deleteMessage(deps.SQS, queueURL, m)
				continue
			}

			jobCtx, jobCancel := context.WithTimeout(baseCtx, 2*time.Minute)
			err = deps.RunJob(jobCtx, job)
			jobCancel()

			if err != nil {
				// leave it on the queue; SQS redelivers after the visibility timeout
				log.Error().Err(err).Str("job_id", job.JobID).Str("identity", job.Identity).Msg("job failed")
				continue
			}
			deleteMessage(deps.SQS, queueURL, m)
		}
	}
}

func deleteMessage(client *sqs.Client, queueURL string, m sqstypes.Message) {
	if m.ReceiptHandle == nil {
		return
	}
	_, err := client.DeleteMessage(context.Background(), &sqs.DeleteMessageInput{
		QueueUrl:      &queueURL,
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		logging.Named("worker").Error().Err(err).Msg("failed to delete SQS message")
	}
}
