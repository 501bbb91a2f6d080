package repository_test

import (
	"context"
	"testing"

	infraRepo "shopapi/internal/infra/repository"
	repo "shopapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	return gdb, mock
}

// 追加は単一のINSERT ... ON CONFLICT ... DO UPDATEで行われる
// （SELECTしてからUPDATEする2段階にしない）。
func TestCartGormAddItem_SingleUpsertStatement(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	mock.ExpectQuery(`INSERT INTO "cart_items" .* ON CONFLICT \("cart_id","product_id"\) DO UPDATE SET .*excluded\.quantity.* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err := r.AddItem(context.Background(), 5, 9, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGormAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	gdb, _ := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	assert.Error(t, r.AddItem(context.Background(), 5, 9, 0))
	assert.Error(t, r.AddItem(context.Background(), 5, 9, -1))
}

func TestCartGormSetQuantity_NoRowIsNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	mock.ExpectExec(`UPDATE "cart_items" SET .* WHERE cart_id = \$\d+ AND product_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.SetQuantity(context.Background(), 5, 9, 3)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGormSetQuantity_Updates(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	mock.ExpectExec(`UPDATE "cart_items" SET .* WHERE cart_id = \$\d+ AND product_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.SetQuantity(context.Background(), 5, 9, 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 無い明細の削除はエラーにしない
func TestCartGormRemoveItem_AbsentIsNoop(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$\d+ AND product_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.RemoveItem(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGormClear_DeletesAllLines(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := r.Clear(context.Background(), 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// DO NOTHINGで既存行に当たった場合は取り直して既存カートを返す
func TestCartGormGetOrCreate_ConvergesOnExistingCart(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	mock.ExpectQuery(`INSERT INTO "carts" .* ON CONFLICT \("user_id"\) DO NOTHING RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(3, 42))

	cart, err := r.GetOrCreateByUserID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cart.ID)
	assert.Equal(t, int64(42), cart.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartGormFindByUserID_NotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	r := infraRepo.NewCartGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}))

	_, err := r.FindByUserID(context.Background(), 42)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
