package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/docstore"
	"github.com/syssam/docstore/dialect"
	"github.com/syssam/docstore/postgres"
)

type widget struct {
	Id       string
	Value    string
	NumValue int
}

func newStore(t *testing.T, opts ...postgres.Option) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.OpenDB(db, opts...), mock
}

func TestEnsureTable(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS widgets (data JSONB NOT NULL)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE UNIQUE INDEX IF NOT EXISTS idx_widgets_key ON widgets ((data ->> 'Id'))")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_widgets_document ON widgets USING GIN (data jsonb_path_ops)")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, s.EnsureTable(ctx, "widgets"))
	require.NoError(t, s.EnsureKey(ctx, "widgets"))
	require.NoError(t, s.EnsureDocumentIndex(ctx, "widgets", postgres.IndexOptimized))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO widgets VALUES ($1)")).
		WithArgs(`{"Id":"one","Value":"FIRST!","NumValue":0}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Insert(context.Background(), "widgets", widget{Id: "one", Value: "FIRST!"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDuplicate(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO widgets VALUES ($1)")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := s.Insert(context.Background(), "widgets", widget{Id: "one"})
	require.Error(t, err)
	assert.True(t, postgres.IsUniqueViolation(err))
}

func TestInsertUnserializable(t *testing.T) {
	s, _ := newStore(t)
	err := s.Insert(context.Background(), "widgets", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	var se *docstore.SerializeError
	assert.ErrorAs(t, err, &se)
}

func TestSave(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO widgets VALUES ($1) ON CONFLICT ((data ->> 'Id')) DO UPDATE SET data = EXCLUDED.data")).
		WithArgs(`{"Id":"one","Value":"updated","NumValue":0}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Save(context.Background(), "widgets", widget{Id: "one", Value: "updated"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByID(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE widgets SET data = $1 WHERE data ->> 'Id' = $2")).
		WithArgs(`{"Id":"one","Value":"new","NumValue":5}`, "one").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateByID(context.Background(), "widgets", "one",
		widget{Id: "one", Value: "new", NumValue: 5})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchByID(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE widgets SET data = data || $1 WHERE data ->> 'Id' = $2")).
		WithArgs(`{"Value":"patched"}`, "one").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.PatchByID(context.Background(), "widgets", "one", map[string]string{"Value": "patched"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchByContains(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE widgets SET data = data || $1 WHERE data @> $2")).
		WithArgs(`{"NumValue":77}`, `{"Value":"purple"}`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.PatchByContains(context.Background(), "widgets",
		map[string]string{"Value": "purple"}, map[string]int{"NumValue": 77})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchByFieldInvalid(t *testing.T) {
	s, _ := newStore(t)
	err := s.PatchByField(context.Background(), "widgets",
		docstore.Field{Name: "Value", Op: docstore.OpGT}, map[string]int{"NumValue": 1})
	require.Error(t, err)
	assert.True(t, docstore.IsInvalidField(err))
}

func TestRemoveFieldsByID(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE widgets SET data = data - $1::text[] WHERE data ->> 'Id' = $2")).
		WithArgs(pq.Array([]string{"Value", "NumValue"}), "one").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.RemoveFieldsByID(context.Background(), "widgets", "one", "Value", "NumValue")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByJSONPath(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM widgets WHERE data @? $1::jsonpath")).
		WithArgs("$.NumValue ? (@ > 10)").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.DeleteByJSONPath(context.Background(), "widgets", "$.NumValue ? (@ > 10)")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByField(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM widgets WHERE data ->> 'Value' = $1")).
		WithArgs("purple").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := s.CountByField(context.Background(), "widgets",
		docstore.EQ("Value", docstore.String("purple")))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByFieldNumericBindsText(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM widgets WHERE data ->> 'NumValue' > $1")).
		WithArgs("10").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := s.CountByField(context.Background(), "widgets",
		docstore.GT("NumValue", docstore.Int(10)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByID(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM widgets WHERE data ->> 'Id' = $1)")).
		WithArgs("14").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.ExistsByID(context.Background(), "widgets", 14)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByContains(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM widgets WHERE data @> $1)")).
		WithArgs(`{"Value":"purple"}`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := s.ExistsByContains(context.Background(), "widgets", map[string]string{"Value": "purple"})
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, mock := newStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM widgets WHERE data ->> 'Id' = $1")).
			WithArgs("one").
			WillReturnRows(sqlmock.NewRows([]string{"data"}).
				AddRow([]byte(`{"Id":"one","Value":"FIRST!","NumValue":0}`)))

		doc, ok, err := postgres.FindByID[widget](context.Background(), s, "widgets", "one")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, widget{Id: "one", Value: "FIRST!"}, doc)
	})
	t.Run("absent", func(t *testing.T) {
		s, mock := newStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM widgets WHERE data ->> 'Id' = $1")).
			WithArgs("none").
			WillReturnRows(sqlmock.NewRows([]string{"data"}))

		_, ok, err := postgres.FindByID[widget](context.Background(), s, "widgets", "none")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFindByContains(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM widgets WHERE data @> $1")).
		WithArgs(`{"Value":"purple"}`).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"Id":"four","Value":"purple","NumValue":17}`)).
			AddRow([]byte(`{"Id":"five","Value":"purple","NumValue":18}`)))

	docs, err := postgres.FindByContains[widget](context.Background(), s, "widgets",
		map[string]string{"Value": "purple"})
	require.NoError(t, err)
	assert.Equal(t, []widget{
		{Id: "four", Value: "purple", NumValue: 17},
		{Id: "five", Value: "purple", NumValue: 18},
	}, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFirstByJSONPath(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM widgets WHERE data @? $1::jsonpath LIMIT 1")).
		WithArgs("$.NumValue ? (@ > 10)").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"Id":"four","Value":"purple","NumValue":17}`)))

	doc, ok, err := postgres.FirstByJSONPath[widget](context.Background(), s, "widgets", "$.NumValue ? (@ > 10)")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "four", doc.Id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomIDField(t *testing.T) {
	s, mock := newStore(t, postgres.WithIDField("_id"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM widgets WHERE data ->> '_id' = $1")).
		WithArgs("one").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeleteByID(context.Background(), "widgets", "one"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := postgres.OpenDB(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO widgets VALUES ($1)")).
		WithArgs(`{"Id":"one","Value":"","NumValue":0}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO widgets VALUES ($1)")).
		WithArgs(`{"Id":"two","Value":"","NumValue":0}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	drv, ok := s.Querier().(dialect.Driver)
	require.True(t, ok)
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)

	ts := s.WithTx(tx)
	require.NoError(t, ts.Insert(ctx, "widgets", widget{Id: "one"}))
	require.NoError(t, ts.Insert(ctx, "widgets", widget{Id: "two"}))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExec(t *testing.T) {
	s, mock := newStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE widgets SET data = data || $1 WHERE data ->> 'NumValue' > $2")).
		WithArgs(`{"Flag":true}`, "10").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := s.Exec(context.Background(),
		"UPDATE widgets SET data = data || @data WHERE data ->> 'NumValue' > @num",
		docstore.P(docstore.ParamData, `{"Flag":true}`),
		docstore.P("@num", "10"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
