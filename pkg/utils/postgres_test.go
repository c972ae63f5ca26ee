package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Pings(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	require.NoError(t, HealthCheck(context.Background(), db, time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_ReportsPingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = HealthCheck(context.Background(), db, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping failed")
}
