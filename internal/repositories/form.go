package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/models"
	"github.com/myrjola/formtree/internal/snapshot"
	"github.com/myrjola/formtree/internal/sqlite"
)

var ErrStaleWrite = errors.NewSentinel("stale form write")

// FormRepository stores the single form slot of the remote store together with the sequence number of the
// write that produced it.
type FormRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewFormRepository(db *sqlite.Database, logger *slog.Logger) *FormRepository {
	return &FormRepository{
		db:     db,
		logger: logger.With("source", "FormRepository"),
	}
}

type formRow struct {
	Sequence int64  `db:"sequence"`
	Tree     string `db:"tree"`
}

// Get returns the stored tree and its sequence number. A never written slot returns an empty tree and
// sequence 0.
func (r *FormRepository) Get(ctx context.Context) (models.Tree, int64, error) {
	var row formRow
	err := r.db.ReadOnly.GetContext(ctx, &row, `SELECT sequence, tree FROM form_snapshots WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tree{}, 0, nil
	}
	if err != nil {
		return nil, 0, errors.Wrap(err, "read form snapshot")
	}
	tree, err := snapshot.Decode([]byte(row.Tree))
	if err != nil {
		return nil, 0, errors.Wrap(err, "decode stored form", slog.Int64("sequence", row.Sequence))
	}
	return tree, row.Sequence, nil
}

// Save replaces the stored tree and assigns it the next sequence number, which is returned.
func (r *FormRepository) Save(ctx context.Context, tree models.Tree) (int64, error) {
	data, err := snapshot.Encode(tree)
	if err != nil {
		return 0, err
	}
	stmt := `INSERT INTO form_snapshots (id, sequence, tree) VALUES (1, 1, ?)
ON CONFLICT (id) DO UPDATE SET sequence = form_snapshots.sequence + 1,
                               tree     = excluded.tree,
                               updated  = STRFTIME('%Y-%m-%dT%H:%M:%fZ')
RETURNING sequence`
	var sequence int64
	if err = r.db.ReadWrite.GetContext(ctx, &sequence, stmt, string(data)); err != nil {
		return 0, errors.Wrap(err, "write form snapshot")
	}
	return sequence, nil
}

// SaveSequenced replaces the stored tree unless a write with a higher sequence number has already been
// accepted, in which case ErrStaleWrite is returned. Equal sequence numbers are accepted so that a repeated
// write succeeds.
func (r *FormRepository) SaveSequenced(ctx context.Context, sequence int64, tree models.Tree) error {
	data, err := snapshot.Encode(tree)
	if err != nil {
		return err
	}
	stmt := `INSERT INTO form_snapshots (id, sequence, tree) VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET sequence = excluded.sequence,
                               tree     = excluded.tree,
                               updated  = STRFTIME('%Y-%m-%dT%H:%M:%fZ')
WHERE excluded.sequence >= form_snapshots.sequence`
	result, err := r.db.ReadWrite.ExecContext(ctx, stmt, sequence, string(data))
	if err != nil {
		return errors.Wrap(err, "write form snapshot", slog.Int64("sequence", sequence))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrStaleWrite, "save form", slog.Int64("sequence", sequence))
	}
	return nil
}
