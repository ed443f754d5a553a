package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gewnthar/fundscout/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(title, link, end string) models.ProposalRecord {
	return models.ProposalRecord{Title: title, Link: link, EndDate: end, StartDate: models.NotSpecified}
}

func TestDiff(t *testing.T) {
	candidates := []models.ProposalRecord{
		record("A call", "https://a.example", "2025-01-01"),
		record("B call", "https://b.example", "2025-01-02"),
		record("C call", "https://c.example", "2025-01-03"),
	}
	existing := models.NewKeySet("B call|https://b.example", "Z call|https://z.example")

	fresh := Diff(candidates, existing)

	require.Len(t, fresh, 2)
	assert.Equal(t, "A call", fresh[0].Title)
	assert.Equal(t, "C call", fresh[1].Title)
	for _, r := range fresh {
		assert.False(t, existing.Has(r.Key()))
	}
	assert.LessOrEqual(t, len(fresh), len(candidates))
}

func TestDiff_EdgeCases(t *testing.T) {
	candidates := []models.ProposalRecord{record("A call", "https://a.example", "")}

	assert.Len(t, Diff(candidates, nil), 1)
	assert.Empty(t, Diff(nil, models.NewKeySet()))
	assert.Empty(t, Diff(candidates, models.NewKeySet(candidates[0].Key())))
}

func TestSortByEndDate(t *testing.T) {
	records := []models.ProposalRecord{
		record("june", "1", "2025-06-30"),
		record("rolling", "2", models.RollingDeadline),
		record("january", "3", "2025-01-15"),
		record("tba", "4", "TBA"),
		record("unspecified", "5", models.NotSpecified),
		record("march", "6", "2025-03-01"),
	}

	SortByEndDate(records)

	var titles []string
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"january", "march", "june", "rolling", "tba", "unspecified"}, titles)
}

func TestRetryPolicy(t *testing.T) {
	var slept []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	fatal := errors.New("fatal")
	policy := retryPolicy{
		attempts:    3,
		delay:       time.Second,
		isRetryable: func(err error) bool { return !errors.Is(err, fatal) },
		sleep:       sleep,
	}

	attempts, err := policy.do(context.Background(), func(attempt int) error {
		if attempt < 2 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{time.Second}, slept)

	attempts, err = policy.do(context.Background(), func(int) error { return fatal })
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)

	slept = nil
	attempts, err = policy.do(context.Background(), func(int) error { return errors.New("down") })
	assert.ErrorContains(t, err, "giving up after 3 attempts")
	assert.Equal(t, 3, attempts)
	assert.Len(t, slept, 2)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
