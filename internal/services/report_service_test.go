package services

import (
	"testing"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	reporter := seedUser(t, db, "alice")

	_, err := svc.Create(reporter.ID, &dto.CreateReportRequest{
		ContentType: "group", ContentID: "x", Reason: "spam",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	report, err := svc.Create(reporter.ID, &dto.CreateReportRequest{
		ContentType: "review", ContentID: uuid.NewString(), Reason: "spam",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", report.Status)

	pending, total, err := svc.List("pending", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)

	err = svc.Action(report.ID, &dto.ActionReportRequest{Status: "bogus"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))

	require.NoError(t, svc.Action(report.ID, &dto.ActionReportRequest{
		Status: "dismissed", AdminNote: "not spam",
	}))

	err = svc.Action(uuid.New(), &dto.ActionReportRequest{Status: "dismissed"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	dismissed, _, err := svc.List("dismissed", 10, 0)
	require.NoError(t, err)
	require.Len(t, dismissed, 1)
	assert.Equal(t, "not spam", dismissed[0].AdminNote)
}
