package ci

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
)

// LookbackDays is how many UTC calendar days, today included, are searched
// for a completed run. The workflow runs daily.
const LookbackDays = 2

const dayFormat = "2006-01-02"

// WorkflowRun is a completed run of a workflow.
type WorkflowRun struct {
	ID         int64
	Status     string
	Conclusion string
	CreatedAt  time.Time
	HTMLURL    string
}

// LatestCompletedRun returns the newest completed run of workflowFile
// created today or on one of the previous LookbackDays-1 days (UTC).
// A failed request ends the search immediately.
func (c *Client) LatestCompletedRun(ctx context.Context, workflowFile string) (*WorkflowRun, error) {
	today := c.now().UTC()

	for i := 0; i < LookbackDays; i++ {
		day := today.AddDate(0, 0, -i).Format(dayFormat)

		runs, resp, err := c.gh.Actions.ListWorkflowRunsByFileName(ctx, c.owner, c.repo, workflowFile,
			&github.ListWorkflowRunsOptions{
				Status:      "completed",
				Created:     day,
				ListOptions: github.ListOptions{PerPage: 1},
			})
		if err != nil {
			return nil, requestError("list workflow runs", resp, err)
		}

		if len(runs.WorkflowRuns) == 0 {
			c.logger.Debug("no completed run", "workflow", workflowFile, "day", day)
			continue
		}

		run := runs.WorkflowRuns[0]
		c.logger.Info("found workflow run",
			"repo", c.Repository(),
			"workflow", workflowFile,
			"run_id", run.GetID(),
			"day", day,
		)
		return &WorkflowRun{
			ID:         run.GetID(),
			Status:     run.GetStatus(),
			Conclusion: run.GetConclusion(),
			CreatedAt:  run.GetCreatedAt().Time,
			HTMLURL:    run.GetHTMLURL(),
		}, nil
	}

	return nil, fmt.Errorf("%s in the last %d days: %w", workflowFile, LookbackDays, ErrRunNotFound)
}
