// Package ci talks to the GitHub Actions REST API.
//
// It answers two questions for an update: which completed run of a workflow
// is the most recent one, and which artifacts that run produced.
//
//	client, err := ci.NewClient(ci.Config{Token: token, Owner: "FNA-XNA", Repo: "fnalibs-dailies"})
//	run, err := client.LatestCompletedRun(ctx, "main.yml")
//	artifacts, err := client.ListArtifacts(ctx, run.ID)
//
// Runs are searched one UTC day at a time, today first, going back
// LookbackDays days. Artifact listings are followed across pages and keep
// the API's order.
package ci
