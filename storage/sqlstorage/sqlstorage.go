package sqlstorage

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dreamerjackson/ghcrawler/spider"
	"github.com/dreamerjackson/ghcrawler/sqldb"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var columns = []sqldb.Field{
	{Title: "url", Type: "VARCHAR(512)"},
	{Title: "owner", Type: "VARCHAR(255)"},
	{Title: "language_stats", Type: "TEXT"},
	{Title: "run_id", Type: "VARCHAR(32)"},
	{Title: "time", Type: "VARCHAR(64)"},
}

// SQLStorage writes targets to one table in batches.
type SQLStorage struct {
	mu         sync.Mutex
	dataDocker []*spider.Target // 分批输出结果缓存
	db         sqldb.DBer
	created    bool
	now        func() time.Time
	options
}

var _ spider.DataRepository = (*SQLStorage)(nil)

func New(opts ...Option) (*SQLStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	db, err := sqldb.New(
		sqldb.WithConnURL(options.sqlURL),
		sqldb.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}

	return newStorage(db, options), nil
}

func newStorage(db sqldb.DBer, options options) *SQLStorage {
	return &SQLStorage{db: db, now: time.Now, options: options}
}

func (s *SQLStorage) Save(targets ...*spider.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.createTable(); err != nil {
		return err
	}

	for _, t := range targets {
		if len(s.dataDocker) >= s.BatchCount {
			if err := s.flush(); err != nil {
				s.logger.Error("insert data failed", zap.Error(err))
				return err
			}
		}

		s.dataDocker = append(s.dataDocker, t)
	}

	return nil
}

// Flush writes the buffered targets.
func (s *SQLStorage) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flush()
}

// Close writes what is still buffered and closes the connection pool.
func (s *SQLStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return multierr.Append(s.flush(), s.db.Close())
}

func (s *SQLStorage) createTable() error {
	if s.created {
		return nil
	}

	err := s.db.CreateTable(sqldb.TableData{
		TableName:   s.table,
		ColumnNames: columns,
		AutoKey:     true,
	})
	if err != nil {
		s.logger.Error("create table failed", zap.String("table", s.table), zap.Error(err))
		return err
	}

	s.created = true

	return nil
}

func (s *SQLStorage) flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}

	defer func() {
		s.dataDocker = nil
	}()

	ts := s.now().UTC().Format(time.RFC3339)
	args := make([]interface{}, 0, len(s.dataDocker)*len(columns))

	for _, t := range s.dataDocker {
		owner, stats := "", "{}"
		if t.Extra != nil {
			owner = t.Extra.OwnerName()
			if len(t.Extra.LanguageStats) > 0 {
				j, err := json.Marshal(t.Extra.LanguageStats)
				if err == nil {
					stats = string(j)
				}
			}
		}

		args = append(args, t.URL, owner, stats, s.runID, ts)
	}

	s.logger.Debug("flush targets", zap.Int("count", len(s.dataDocker)))

	return s.db.Insert(sqldb.TableData{
		TableName:   s.table,
		ColumnNames: columns,
		Args:        args,
		DataCount:   len(s.dataDocker),
	})
}
