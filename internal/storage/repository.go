package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"estoque/internal/core"
	"estoque/internal/log"
)

const (
	receiptColumns = `id, pedido, cod_sap, item, qtde, valor_unit, valor_total, fornecedor,
		nota_fiscal, statis, miro, data_lanc, created_at, updated_at`

	withdrawalColumns = `id, data, mes, dia_da_semana, status_da_retirada, empresa, local,
		solicitante, entregue_por, retirado_por, fazenda, modulo, regional, created_at, updated_at`

	itemColumns = `id, data, mes, dia_da_semana, status_da_retirada, empresa, cod_sap, item,
		quantidade, unidade_medida, valor_unitario, valor_total, local, solicitante, entregue_por,
		retirado_por, fazenda, modulo, regional, created_at, updated_at`

	insertReceipt = `INSERT INTO recebimento (pedido, cod_sap, item, qtde, valor_unit, valor_total,
		fornecedor, nota_fiscal, statis, miro, data_lanc, created_at, updated_at)
		VALUES (:pedido, :cod_sap, :item, :qtde, :valor_unit, :valor_total, :fornecedor,
		:nota_fiscal, :statis, :miro, :data_lanc, :created_at, :updated_at) RETURNING id`

	updateReceipt = `UPDATE recebimento SET pedido = :pedido, cod_sap = :cod_sap, item = :item,
		qtde = :qtde, valor_unit = :valor_unit, valor_total = :valor_total, fornecedor = :fornecedor,
		nota_fiscal = :nota_fiscal, statis = :statis, miro = :miro, data_lanc = :data_lanc,
		updated_at = :updated_at WHERE id = :id`

	insertWithdrawal = `INSERT INTO retiradas (data, mes, dia_da_semana, status_da_retirada, empresa,
		local, solicitante, entregue_por, retirado_por, fazenda, modulo, regional, created_at, updated_at)
		VALUES (:data, :mes, :dia_da_semana, :status_da_retirada, :empresa, :local, :solicitante,
		:entregue_por, :retirado_por, :fazenda, :modulo, :regional, :created_at, :updated_at) RETURNING id`

	updateWithdrawal = `UPDATE retiradas SET data = :data, mes = :mes, dia_da_semana = :dia_da_semana,
		status_da_retirada = :status_da_retirada, empresa = :empresa, local = :local,
		solicitante = :solicitante, entregue_por = :entregue_por, retirado_por = :retirado_por,
		fazenda = :fazenda, modulo = :modulo, regional = :regional, updated_at = :updated_at
		WHERE id = :id`

	insertItem = `INSERT INTO retirada_itens (data, mes, dia_da_semana, status_da_retirada, empresa,
		cod_sap, item, quantidade, unidade_medida, valor_unitario, valor_total, local, solicitante,
		entregue_por, retirado_por, fazenda, modulo, regional, created_at, updated_at)
		VALUES (:data, :mes, :dia_da_semana, :status_da_retirada, :empresa, :cod_sap, :item,
		:quantidade, :unidade_medida, :valor_unitario, :valor_total, :local, :solicitante,
		:entregue_por, :retirado_por, :fazenda, :modulo, :regional, :created_at, :updated_at) RETURNING id`

	updateItem = `UPDATE retirada_itens SET data = :data, mes = :mes, dia_da_semana = :dia_da_semana,
		status_da_retirada = :status_da_retirada, empresa = :empresa, cod_sap = :cod_sap, item = :item,
		quantidade = :quantidade, unidade_medida = :unidade_medida, valor_unitario = :valor_unitario,
		valor_total = :valor_total, local = :local, solicitante = :solicitante,
		entregue_por = :entregue_por, retirado_por = :retirado_por, fazenda = :fazenda,
		modulo = :modulo, regional = :regional, updated_at = :updated_at WHERE id = :id`
)

// Repository persists records through sqlx on sqlite or postgres.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ core.Store = (*Repository)(nil)

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// DB exposes the underlying handle for health checks.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) stamp() core.Timestamp {
	return core.Timestamp{Time: r.now().UTC().Truncate(time.Microsecond)}
}

func (r *Repository) list(ctx context.Context, dest any, columns, table string) error {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id DESC", columns, table)
	if err := r.db.SelectContext(ctx, dest, query); err != nil {
		return fmt.Errorf("list %s: %w", table, err)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, dest any, columns, table string, id int64) error {
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", columns, table))
	if err := r.db.GetContext(ctx, dest, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		return fmt.Errorf("get %s %d: %w", table, id, err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, query string, arg any, table string) (int64, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	defer rows.Close()

	var id int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("insert %s: %w", table, err)
		}
		return 0, fmt.Errorf("insert %s: no id returned", table)
	}
	if err := rows.Scan(&id); err != nil {
		return 0, fmt.Errorf("scan %s id: %w", table, err)
	}
	return id, nil
}

func (r *Repository) update(ctx context.Context, query string, arg any, table string, id int64) error {
	res, err := r.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %d: %w", table, id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, table string, id int64) error {
	query := r.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table))
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", table, id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	slog.DebugContext(ctx, "Record deleted",
		log.FieldComponent, log.ComponentStorage, log.FieldTable, table, log.FieldRecordID, id)
	return nil
}

func (r *Repository) ListReceipts(ctx context.Context) ([]core.Receipt, error) {
	out := []core.Receipt{}
	if err := r.list(ctx, &out, receiptColumns, core.TableReceipts); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) GetReceipt(ctx context.Context, id int64) (core.Receipt, error) {
	var rec core.Receipt
	err := r.get(ctx, &rec, receiptColumns, core.TableReceipts, id)
	return rec, err
}

func (r *Repository) CreateReceipt(ctx context.Context, rec core.Receipt) (core.Receipt, error) {
	rec.CreatedAt = r.stamp()
	rec.UpdatedAt = rec.CreatedAt
	id, err := r.insert(ctx, insertReceipt, rec, core.TableReceipts)
	if err != nil {
		return core.Receipt{}, err
	}
	rec.ID = id
	return rec, nil
}

func (r *Repository) UpdateReceipt(ctx context.Context, rec core.Receipt) (core.Receipt, error) {
	rec.UpdatedAt = r.stamp()
	if err := r.update(ctx, updateReceipt, rec, core.TableReceipts, rec.ID); err != nil {
		return core.Receipt{}, err
	}
	return r.GetReceipt(ctx, rec.ID)
}

func (r *Repository) DeleteReceipt(ctx context.Context, id int64) error {
	return r.delete(ctx, core.TableReceipts, id)
}

func (r *Repository) ListWithdrawals(ctx context.Context) ([]core.Withdrawal, error) {
	out := []core.Withdrawal{}
	if err := r.list(ctx, &out, withdrawalColumns, core.TableWithdrawals); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) GetWithdrawal(ctx context.Context, id int64) (core.Withdrawal, error) {
	var w core.Withdrawal
	err := r.get(ctx, &w, withdrawalColumns, core.TableWithdrawals, id)
	return w, err
}

func (r *Repository) CreateWithdrawal(ctx context.Context, w core.Withdrawal) (core.Withdrawal, error) {
	w.CreatedAt = r.stamp()
	w.UpdatedAt = w.CreatedAt
	id, err := r.insert(ctx, insertWithdrawal, w, core.TableWithdrawals)
	if err != nil {
		return core.Withdrawal{}, err
	}
	w.ID = id
	return w, nil
}

func (r *Repository) UpdateWithdrawal(ctx context.Context, w core.Withdrawal) (core.Withdrawal, error) {
	w.UpdatedAt = r.stamp()
	if err := r.update(ctx, updateWithdrawal, w, core.TableWithdrawals, w.ID); err != nil {
		return core.Withdrawal{}, err
	}
	return r.GetWithdrawal(ctx, w.ID)
}

func (r *Repository) DeleteWithdrawal(ctx context.Context, id int64) error {
	return r.delete(ctx, core.TableWithdrawals, id)
}

func (r *Repository) ListWithdrawalItems(ctx context.Context) ([]core.WithdrawalItem, error) {
	out := []core.WithdrawalItem{}
	if err := r.list(ctx, &out, itemColumns, core.TableWithdrawalItems); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) GetWithdrawalItem(ctx context.Context, id int64) (core.WithdrawalItem, error) {
	var it core.WithdrawalItem
	err := r.get(ctx, &it, itemColumns, core.TableWithdrawalItems, id)
	return it, err
}

func (r *Repository) CreateWithdrawalItem(ctx context.Context, it core.WithdrawalItem) (core.WithdrawalItem, error) {
	it.CreatedAt = r.stamp()
	it.UpdatedAt = it.CreatedAt
	id, err := r.insert(ctx, insertItem, it, core.TableWithdrawalItems)
	if err != nil {
		return core.WithdrawalItem{}, err
	}
	it.ID = id
	return it, nil
}

func (r *Repository) UpdateWithdrawalItem(ctx context.Context, it core.WithdrawalItem) (core.WithdrawalItem, error) {
	it.UpdatedAt = r.stamp()
	if err := r.update(ctx, updateItem, it, core.TableWithdrawalItems, it.ID); err != nil {
		return core.WithdrawalItem{}, err
	}
	return r.GetWithdrawalItem(ctx, it.ID)
}

func (r *Repository) DeleteWithdrawalItem(ctx context.Context, id int64) error {
	return r.delete(ctx, core.TableWithdrawalItems, id)
}
