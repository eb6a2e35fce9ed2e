package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(&models.DeliveryRule{}))
	return conn
}

func TestRepositoryActiveRules(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	older := validRow()
	older.ID = uuid.Nil
	older.FlatFee = dec("900")
	require.NoError(t, repo.Save(ctx, &older))
	require.NotEqual(t, uuid.Nil, older.ID)

	newer := validRow()
	newer.ID = uuid.Nil
	require.NoError(t, repo.Save(ctx, &newer))
	require.NoError(t, db.Model(&models.DeliveryRule{}).
		Where("id = ?", older.ID).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	inactive := validRow()
	inactive.ID = uuid.Nil
	inactive.SupplierID = supplierB
	inactive.IsActive = false
	require.NoError(t, repo.Save(ctx, &inactive))

	rows, err := repo.ActiveRules(ctx, []uuid.UUID{supplierA, supplierB, supplierC})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, newer.ID, rows[supplierA].ID)

	rule, err := ParseRule(rows[supplierA])
	require.NoError(t, err)
	assert.True(t, rule.FlatFee.Equal(dec("1500")))
	assert.True(t, rule.FuelSurchargePct.Equal(dec("0.1")))
	assert.Len(t, rule.Tiers, 2)

	empty, err := repo.ActiveRules(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
