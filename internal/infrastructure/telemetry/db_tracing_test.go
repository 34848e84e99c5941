package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := openTestDB(t)
	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.Nil(t, db.Callback().Query().Get("royale_timing:after_query"))
}

func TestDBTracingPlugin_MarksSlowQueries(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)
	db := openTestDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThresh = time.Nanosecond
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.Register(db))
	assert.NotNil(t, db.Callback().Query().Get("royale_timing:after_query"))

	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")
	tx := db.WithContext(ctx)
	tx.Statement.Context = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))
	tx.Statement.Table = "products"
	tx.Statement.RowsAffected = 2
	plugin.afterQuery(tx)
	span.End()

	var parent []attribute.KeyValue
	for _, s := range recorder.Ended() {
		if s.Name() == "parent" {
			parent = s.Attributes()
		}
	}
	assert.Contains(t, parent, attribute.Bool("db.slow_query", true))
	assert.Contains(t, parent, attribute.String("db.sql.table", "products"))
	assert.Contains(t, parent, attribute.Int64("db.rows_affected", 2))
}

func TestDBTracingPlugin_ProducesSpans(t *testing.T) {
	_, recorder := setupTracerWithRecorder(t)
	db := openTestDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	var n int
	require.NoError(t, db.WithContext(context.Background()).Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
	assert.NotEmpty(t, recorder.Ended())
}
