package ci

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"

	dshttp "github.com/randalmurphal/depsync/http"
)

// artifactsPerPage is the API maximum.
const artifactsPerPage = 100

// Artifact is a downloadable archive produced by a run.
type Artifact struct {
	ID          int64
	Name        string
	DownloadURL string
	SizeInBytes int64
}

// ListArtifacts returns every artifact of a run in listing order. A run
// without artifacts is a listing failure since there would be nothing to
// install.
func (c *Client) ListArtifacts(ctx context.Context, runID int64) ([]Artifact, error) {
	iter := dshttp.NewPageIterator(func(ctx context.Context, page int) ([]Artifact, int, error) {
		list, resp, err := c.gh.Actions.ListWorkflowRunArtifacts(ctx, c.owner, c.repo, runID,
			&github.ListOptions{PerPage: artifactsPerPage, Page: page})
		if err != nil {
			return nil, 0, requestError("list artifacts", resp, err)
		}

		items := make([]Artifact, 0, len(list.Artifacts))
		for _, a := range list.Artifacts {
			items = append(items, Artifact{
				ID:          a.GetID(),
				Name:        a.GetName(),
				DownloadURL: a.GetArchiveDownloadURL(),
				SizeInBytes: a.GetSizeInBytes(),
			})
		}
		return items, resp.NextPage, nil
	})

	artifacts, err := iter.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("run %d has no artifacts: %w", runID, ErrListingFailed)
	}

	c.logger.Debug("listed artifacts", "run_id", runID, "count", len(artifacts), "pages", iter.Pages())
	return artifacts, nil
}
