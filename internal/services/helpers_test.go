package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/models"
	"github.com/diewo77/bill-ease/internal/storage"
	"github.com/diewo77/bill-ease/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, d.AutoMigrate(models.All()...))
	sqlDB, err := d.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return d
}

func newUser(t *testing.T, d *gorm.DB, email string) auth.Session {
	t.Helper()
	u := models.User{Email: email, Password: "x"}
	require.NoError(t, d.Create(&u).Error)
	return auth.Session{UserID: u.ID}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	db        *gorm.DB
	blob      *storage.Local
	inventory *InventoryService
	settings  *SettingsService
	invoices  *InvoiceService
	dashboard *DashboardService
}

func newFixture(t *testing.T, log *zap.Logger) *fixture {
	t.Helper()
	if log == nil {
		log = zap.NewNop()
	}
	d := newTestDB(t)
	blob := storage.NewLocal(t.TempDir(), log)
	inv := NewInventoryService(d, log)
	set := NewSettingsService(d, blob, log)
	opts := pdf.DefaultOptions()
	opts.Compress = false
	invs := NewInvoiceService(d, inv, set, pdf.NewRenderer(log, opts), log)

	clock := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	invs.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return &fixture{
		db:        d,
		blob:      blob,
		inventory: inv,
		settings:  set,
		invoices:  invs,
		dashboard: NewDashboardService(d, inv, invs),
	}
}
