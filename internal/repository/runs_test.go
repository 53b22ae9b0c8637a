package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "runs.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate must be repeatable")
	return db
}

func rate(v float64) *float64 { return &v }

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	require.Error(t, err)
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, db.HealthCheck(ctx, time.Second))

	repo := NewRunRepository(db, nil)
	run, err := repo.Start(ctx, "catalog.xlsx", 3)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusRunning), run.Status)

	summary := &entity.VerificationSummary{
		DocumentsSupplied:  3,
		DocumentsProcessed: 2,
		UnresolvedCount:    1,
		ExtractionFailed:   1,
		Complete:           1,
		OverallSuccessRate: 100,
		Results: []entity.ProductVerificationResult{
			{Identifier: "12345", Document: "12345 front.pdf", Status: constants.DocumentStatusVerified,
				TotalFields: 2, MatchedFields: 2, SuccessRate: rate(100)},
			{Identifier: "777", Document: "777.pdf", Status: constants.DocumentStatusExtractionFailed},
		},
		Unresolved: []entity.UnresolvedDocument{{Document: "99999 x.pdf", Identifier: "99999"}},
	}
	require.NoError(t, repo.Finish(ctx, run.ID, constants.RunStatusCompleted, summary))

	got, err := repo.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusCompleted), got.Status)
	assert.Equal(t, 2, got.DocumentsProcessed)
	assert.Equal(t, 1, got.UnresolvedCount)
	assert.InDelta(t, 100, got.OverallSuccessRate, 1e-9)
	require.NotNil(t, got.FinishedAt)
	assert.Nil(t, got.ErrorMessage)

	rows, err := repo.Results(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "12345", rows[0].Identifier)
	require.NotNil(t, rows[0].SuccessRate)
	assert.InDelta(t, 100, *rows[0].SuccessRate, 1e-9)
	assert.Equal(t, []string{}, rows[0].Missing)
	assert.Equal(t, string(constants.DocumentStatusExtractionFailed), rows[1].Status)
	assert.Nil(t, rows[1].SuccessRate)
	assert.Equal(t, StatusNoMatch, rows[2].Status)
	assert.Equal(t, 2, rows[2].Seq)
}

func TestRunFailAndList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRunRepository(db, nil).(*runRepo)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		repo.now = func() time.Time { return at }
		run, err := repo.Start(ctx, "catalog.xlsx", i)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}
	require.NoError(t, repo.Fail(ctx, ids[0], "workbook missing"))

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Equal(t, base.Add(2*time.Minute), runs[0].StartedAt)

	failed, err := repo.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "workbook missing", *failed.ErrorMessage)
}

func TestRunNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t), nil)

	_, err := repo.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = repo.Finish(ctx, uuid.New(), constants.RunStatusCompleted, &entity.VerificationSummary{})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
