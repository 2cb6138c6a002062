package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// SQLExecutor: общий интерфейс *sql.DB и *sql.Tx, чтобы методы репозиториев
// могли работать как внутри транзакции, так и вне её.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Transactor выполняет fn в одной транзакции. Ошибка fn откатывает
// транзакцию, nil её фиксирует.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type sqlTransactor struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTransactor(db *sql.DB, logger *slog.Logger) Transactor {
	return &sqlTransactor{db: db, logger: logger}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			t.logger.Debug("rolling back transaction", slog.Any("error", txErr))
			if rbErr := tx.Rollback(); rbErr != nil {
				t.logger.Error("rollback failed", slog.Any("error", rbErr), slog.Any("original_error", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// nullableID хранит 0 как NULL (ещё не известная пара в плей-офф).
func nullableID(id int) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

func idFromNull(v sql.NullInt64) int {
	if !v.Valid {
		return 0
	}
	return int(v.Int64)
}
