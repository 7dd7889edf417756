package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalogs/user"
	"backoffice/internal/infrastructure/storage/postgres"
)

const userTable = "cat_users"

// balanceColumns whitelists the balance column per currency; the column name
// is interpolated into SQL, so it must never come from input.
var balanceColumns = map[entity.Currency]string{
	entity.CurrencyRUB: "balance_rub",
	entity.CurrencyUSD: "balance_usd",
	entity.CurrencyEUR: "balance_eur",
	entity.CurrencyTRY: "balance_try",
}

var (
	_ user.Repository   = (*UserRepo)(nil)
	_ user.BalanceStore = (*UserRepo)(nil)
)

// UserRepo persists users in cat_users.
type UserRepo struct {
	*BaseCatalogRepo[*user.User]
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			userTable,
			"user",
			postgres.ExtractDBColumns[user.User](),
			[]string{"balance_rub", "balance_usd", "balance_eur", "balance_try"},
			func() *user.User { return &user.User{} },
		),
	}
}

// AddBalance implements user.BalanceStore with a single atomic increment.
func (r *UserRepo) AddBalance(ctx context.Context, userID id.ID, currency entity.Currency, delta int64) (int64, error) {
	sql, args, err := r.addBalanceQuery(userID, currency, delta)
	if err != nil {
		return 0, err
	}

	var after int64
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewNotFound("user", userID.String())
	}
	if err != nil {
		return 0, postgres.MapConstraintError(fmt.Errorf("add user balance: %w", err), "user")
	}
	return after, nil
}

func (r *UserRepo) addBalanceQuery(userID id.ID, currency entity.Currency, delta int64) (string, []any, error) {
	col, ok := balanceColumns[currency]
	if !ok {
		return "", nil, apperror.NewValidation("unsupported currency").WithDetail("currency", string(currency))
	}
	sql, args, err := r.Builder().
		Update(userTable).
		Set(col, squirrel.Expr(col+" + ?", delta)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		Suffix("RETURNING " + col).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build balance update: %w", err)
	}
	return sql, args, nil
}
