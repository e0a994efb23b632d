package worker

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"jansetu/service"
)

func TestStopWaitsForInitialSweep(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// slow the first sweep down so an immediate Stop must wait for it
	mock.ExpectQuery(`SELECT complaint_id FROM complaints`).
		WithArgs("submitted", "viewed", "in_progress", sqlmock.AnyArg()).
		WillDelayFor(50 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"complaint_id"}))

	w := NewEscalationWorker(service.NewEscalationService(db), "@hourly")
	require.NoError(t, w.Start())
	w.Stop()

	require.NoError(t, mock.ExpectationsWereMet())
}
