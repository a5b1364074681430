package orchestrate

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"twintrack/internal/api"
	"twintrack/internal/domain"
)

// SubmitTask files a task completion report. Photos upload first; if
// any upload fails the submission call is never issued.
func (o *Orchestrator) SubmitTask(ctx context.Context, taskID, description string, photoPaths []string) error {
	return o.submit(ctx, "task.submit", taskID, description, photoPaths, func(ctx context.Context, req api.SubmissionRequest) error {
		return o.API.SubmitTask(ctx, taskID, req)
	})
}

// SubmitProject files a project completion report with the same
// two-phase contract as SubmitTask.
func (o *Orchestrator) SubmitProject(ctx context.Context, projectID, description string, photoPaths []string) error {
	return o.submit(ctx, "project.submit", projectID, description, photoPaths, func(ctx context.Context, req api.SubmissionRequest) error {
		return o.API.SubmitProject(ctx, projectID, req)
	})
}

func (o *Orchestrator) submit(ctx context.Context, action, entityID, description string, photoPaths []string, send func(context.Context, api.SubmissionRequest) error) error {
	if entityID == "" {
		return &ValidationError{Reason: "id is required"}
	}
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Reason: "a description of the completed work is required"}
	}
	release, err := o.begin(action, entityID)
	if err != nil {
		return err
	}
	defer release()

	urls := []string{}
	if len(photoPaths) > 0 {
		if o.Uploader == nil {
			return &ValidationError{Reason: "photo uploads are not configured"}
		}
		urls, err = o.Uploader.UploadFiles(ctx, photoPaths)
		if err != nil {
			return err
		}
	}
	if err := send(ctx, api.SubmissionRequest{Description: description, PhotoURLs: urls}); err != nil {
		return err
	}
	o.Log.WithFields(logrus.Fields{"action": action, "id": entityID, "photos": len(urls)}).Info("submission filed")
	return nil
}

// Review statuses.
const (
	ReviewApproved = "Approved"
	ReviewRejected = "Rejected"
)

// ReviewSubmission approves or rejects a pending submission and
// returns the refreshed pending queue. Review is terminal: the log
// leaves the queue on either outcome.
func (o *Orchestrator) ReviewSubmission(ctx context.Context, log domain.WorkLog, approve bool) ([]domain.WorkLog, error) {
	if log.SubmissionID == "" {
		return nil, &ValidationError{Reason: "submission id is required"}
	}
	release, err := o.begin("submission.review", log.SubmissionID)
	if err != nil {
		return nil, err
	}
	defer release()

	status := ReviewRejected
	if approve {
		status = ReviewApproved
	}
	if strings.EqualFold(log.Type, "project") {
		err = o.API.ReviewProjectSubmission(ctx, log.SubmissionID, status)
	} else {
		err = o.API.ReviewTaskSubmission(ctx, log.SubmissionID, status)
	}
	if err != nil {
		return nil, err
	}
	o.Log.WithFields(logrus.Fields{"submissionId": log.SubmissionID, "status": status}).Info("submission reviewed")
	return o.API.WorkLogs(ctx)
}
