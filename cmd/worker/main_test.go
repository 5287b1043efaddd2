package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"rainbowrise/internal/adapter/memstore"
	"rainbowrise/internal/domain"
	"rainbowrise/internal/ledger"
)

func TestReconcileLogsEachDriftOnce(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	store := mem.Repositories()

	owner := &domain.User{Username: "owner", Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(ctx, owner))
	c := domain.NewCampaign{Title: "Velvet Room", Description: "bar", Category: "Bar", Goal: 1000, UserID: owner.ID}.Materialize(time.Now())
	require.NoError(t, store.Campaigns.Create(ctx, &c))
	mem.SetFunding(c.ID, 500, 3)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	svc := ledger.NewService(store.Ledger, logger)

	reconcile(ctx, svc, false, logger)

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "funding drift"))
	require.Contains(t, out, `"drifts":1`)
}

func TestJobWrappersSkipOverlappingRuns(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	job := cron.NewChain(jobWrappers(zerolog.Nop())...).Then(cron.FuncJob(func() {
		runs.Add(1)
		close(started)
		<-release
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job.Run()
	}()
	<-started

	job.Run()
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), runs.Load())
}
