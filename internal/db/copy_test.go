package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	assert.Equal(t, pgx.Identifier{"nuts", "regions"}, Table("nuts.regions"))
	assert.Equal(t, pgx.Identifier{"regions"}, Table("regions"))
	assert.Equal(t, `"nuts"."regions"`, Table("nuts.regions").Sanitize())
}

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "nuts.regions", []string{"nuts_id", "geom"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"nuts", "regions"}, []string{"nuts_id", "levl_code"}).WillReturnResult(3)

	rows := [][]any{{"DE50", 2}, {"ITI1", 2}, {"BE10", 2}}
	n, err := CopyFrom(context.Background(), mock, "nuts.regions", []string{"nuts_id", "levl_code"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"regions"}, []string{"nuts_id"}).WillReturnError(fmt.Errorf("permission denied"))

	_, err = CopyFrom(context.Background(), mock, "regions", []string{"nuts_id"}, [][]any{{"DE50"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO regions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_NoURL(t *testing.T) {
	_, err := Connect(context.Background(), "", 0)
	assert.Error(t, err)
}
