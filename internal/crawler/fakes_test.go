package crawler

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/metrics"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/model"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/nlp"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/youtube"
)

func TestMain(m *testing.M) {
	metrics.Init(nil)
	os.Exit(m.Run())
}

// fakeSource implements Source via optional function fields; unset listing
// fields return empty results.
type fakeSource struct {
	detail      func(videoKey string) (*youtube.VideoDetail, error)
	commentPage func(videoKey, pageToken string) (*youtube.CommentPage, error)
	recent      func(channelID string) ([]string, error)
	popular     func(categoryID string) ([]string, error)

	detailCalls      int
	commentPageCalls int
}

func (f *fakeSource) VideoDetail(_ context.Context, videoKey string) (*youtube.VideoDetail, error) {
	f.detailCalls++
	if f.detail == nil {
		return nil, youtube.ErrVideoNotFound
	}
	return f.detail(videoKey)
}

func (f *fakeSource) CommentPage(_ context.Context, videoKey, pageToken string) (*youtube.CommentPage, error) {
	f.commentPageCalls++
	if f.commentPage == nil {
		return &youtube.CommentPage{}, nil
	}
	return f.commentPage(videoKey, pageToken)
}

func (f *fakeSource) RecentVideoKeys(_ context.Context, channelID string, _ int64) ([]string, error) {
	if f.recent == nil {
		return nil, nil
	}
	return f.recent(channelID)
}

func (f *fakeSource) PopularVideoKeys(_ context.Context, categoryID, _ string, _ int64) ([]string, error) {
	if f.popular == nil {
		return nil, nil
	}
	return f.popular(categoryID)
}

// fakeStore records every write in order and can inject failures per step.
type fakeStore struct {
	calls     []string
	channels  []model.Channel
	videos    []model.Video
	stats     []model.VideoStats
	comments  [][]model.Comment
	favorites []string

	videoID int64

	channelErr   error
	videoErr     error
	lookupErr    error
	statsErr     error
	commentsErr  error
	favoritesErr error
}

func (s *fakeStore) UpsertChannel(_ context.Context, ch model.Channel) error {
	s.calls = append(s.calls, "channel")
	s.channels = append(s.channels, ch)
	return s.channelErr
}

func (s *fakeStore) UpsertVideo(_ context.Context, v model.Video) error {
	s.calls = append(s.calls, "video")
	s.videos = append(s.videos, v)
	return s.videoErr
}

func (s *fakeStore) VideoIDByKey(_ context.Context, _ string) (int64, error) {
	s.calls = append(s.calls, "lookup")
	if s.lookupErr != nil {
		return 0, s.lookupErr
	}
	return s.videoID, nil
}

func (s *fakeStore) InsertStats(_ context.Context, st model.VideoStats) error {
	s.calls = append(s.calls, "stats")
	s.stats = append(s.stats, st)
	return s.statsErr
}

func (s *fakeStore) UpsertComments(_ context.Context, comments []model.Comment) error {
	s.calls = append(s.calls, "comments")
	s.comments = append(s.comments, comments)
	return s.commentsErr
}

func (s *fakeStore) FavoriteChannelIDs(_ context.Context) ([]string, error) {
	return s.favorites, s.favoritesErr
}

// fakePredictor records classifier inputs and returns a fixed prediction.
type fakePredictor struct {
	inputs []string
	pred   nlp.Prediction
}

func (p *fakePredictor) Predict(_ context.Context, text string) nlp.Prediction {
	p.inputs = append(p.inputs, text)
	return p.pred
}

// fakeTx implements pgx.Tx for driver tests; only transaction control is
// meaningful, the query surface is unused because the driver's store seam is
// overridden in tests.
type fakeTx struct {
	committed  bool
	rolledBack bool
	children   []*fakeTx
}

func (t *fakeTx) Begin(_ context.Context) (pgx.Tx, error) {
	child := &fakeTx{}
	t.children = append(t.children, child)
	return child, nil
}

func (t *fakeTx) Commit(_ context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(_ context.Context) error { t.rolledBack = true; return nil }

func (t *fakeTx) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                             { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row        { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }

// fakeDB hands out fakeTx instances in order.
type fakeDB struct {
	txs      []*fakeTx
	beginErr error
}

func (d *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (d *fakeDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return nil, nil }
func (d *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row        { return nil }
func (d *fakeDB) SendBatch(_ context.Context, _ *pgx.Batch) pgx.BatchResults    { return nil }
