package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/effective-security/functic/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func Test_MongoStore(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mongoContainer.Terminate(ctx))
	})

	conn, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	database := fmt.Sprintf("test-%d", time.Now().Unix())
	st, err := store.Open(ctx, conn, database, "functions")
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, "mongodb", st.Kind())
	testStore(t, st)
}
