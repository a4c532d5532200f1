package sqlstorage

import (
	"go.uber.org/zap"
)

const DefaultTable = "github_repos"

type options struct {
	logger     *zap.Logger
	sqlURL     string
	table      string
	runID      string
	BatchCount int // 批量数
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	table:      DefaultTable,
	BatchCount: 100,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithSQLURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

func WithTable(table string) Option {
	return func(opts *options) {
		if table != "" {
			opts.table = table
		}
	}
}

// WithRunID tags every stored row with the crawl run.
func WithRunID(id string) Option {
	return func(opts *options) {
		opts.runID = id
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		if batchCount > 0 {
			opts.BatchCount = batchCount
		}
	}
}
