package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
	"github.com/PabloPavan/pharmaerp_api/internal/paging"
	"github.com/jackc/pgx/v5"
)

// Where collects ANDed predicates written with "?" placeholders. They are
// renumbered to $n when the query is built.
type Where struct {
	clauses []string
	args    []any
}

func (w *Where) Add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// EqualFold adds a case-insensitive equality match on column. The value is
// compared literally; LIKE wildcards in it have no meaning.
func (w *Where) EqualFold(column, value string) {
	w.Add("lower("+column+") = lower(?)", value)
}

// Search adds a case-insensitive substring match over any of columns.
func (w *Where) Search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, c+" ILIKE ?")
		args = append(args, pattern)
	}
	w.Add("("+strings.Join(parts, " OR ")+")", args...)
}

func (w Where) render() (string, []any) {
	if len(w.clauses) == 0 {
		return "TRUE", nil
	}
	joined := strings.Join(w.clauses, " AND ")

	var sb strings.Builder
	pos := 1
	for _, r := range joined {
		if r == '?' {
			sb.WriteString("$" + strconv.Itoa(pos))
			pos++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String(), append([]any(nil), w.args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// PageSpec describes how one entity is listed.
type PageSpec[T any] struct {
	From              string
	Columns           string
	SearchColumns     []string
	SortColumns       map[string]string
	DefaultSort       string
	DefaultDescending bool
	// KeyColumn must be unique; it breaks ties so the order is total.
	KeyColumn string
	Scan      func(row pgx.Row) (T, error)
}

type PageQuery struct {
	CountSQL string
	ListSQL  string
	Args     []any
	Limit    int
	Offset   int
}

func (q PageQuery) ListArgs() []any {
	args := make([]any, 0, len(q.Args)+2)
	args = append(args, q.Args...)
	return append(args, q.Limit, q.Offset)
}

// BuildPageQuery renders the count and page statements for f. Search is
// applied over spec.SearchColumns on top of w.
func BuildPageQuery[T any](spec PageSpec[T], w Where, f paging.Filter) (PageQuery, error) {
	f = f.Normalized()

	sortKey := f.SortBy
	desc := f.SortDescending
	if sortKey == "" {
		sortKey = spec.DefaultSort
		if !f.DirectionSet && !f.SortDescending {
			desc = spec.DefaultDescending
		}
	}
	sortCol, ok := lookupSort(spec.SortColumns, sortKey)
	if !ok {
		return PageQuery{}, apperrors.New(apperrors.KindInvalidInput, "invalid sortBy: "+f.SortBy)
	}

	w = Where{
		clauses: append([]string(nil), w.clauses...),
		args:    append([]any(nil), w.args...),
	}
	w.Search(f.Search, spec.SearchColumns...)
	pred, args := w.render()

	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	order := sortCol + " " + dir
	if spec.KeyColumn != "" && spec.KeyColumn != sortCol {
		order += ", " + spec.KeyColumn + " " + dir
	}

	n := len(args)
	return PageQuery{
		CountSQL: fmt.Sprintf("SELECT count(*) FROM %s WHERE %s", spec.From, pred),
		ListSQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
			spec.Columns, spec.From, pred, order, n+1, n+2),
		Args:   args,
		Limit:  f.PageSize,
		Offset: f.Offset(),
	}, nil
}

func lookupSort(cols map[string]string, key string) (string, bool) {
	if col, ok := cols[key]; ok {
		return col, true
	}
	for k, col := range cols {
		if strings.EqualFold(k, key) {
			return col, true
		}
	}
	return "", false
}

// Page counts the rows matching w and f and fetches the requested page from
// the same snapshot. A page past the end yields no items and the real total.
func Page[T any](ctx context.Context, base *Base, spec PageSpec[T], w Where, f paging.Filter) (paging.Result[T], error) {
	f = f.Normalized()
	pq, err := BuildPageQuery(spec, w, f)
	if err != nil {
		return paging.Result[T]{}, err
	}

	var (
		total int64
		items []T
	)
	err = base.ReadTx(ctx, func(ctx context.Context, q Queryer) error {
		if err := q.QueryRow(ctx, pq.CountSQL, pq.Args...).Scan(&total); err != nil {
			return err
		}
		start, end := f.Window(total)
		if start == end {
			return nil
		}

		rows, err := q.Query(ctx, pq.ListSQL, pq.ListArgs()...)
		if err != nil {
			return err
		}
		defer rows.Close()

		items = make([]T, 0, end-start)
		for rows.Next() {
			item, err := spec.Scan(rows)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return paging.Result[T]{}, err
	}

	return paging.NewResult(items, total, f), nil
}
