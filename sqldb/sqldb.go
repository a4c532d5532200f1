package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var (
	ErrEmptyColumn = errors.New("column can not be empty")
	ErrTableName   = errors.New("invalid table name")
	ErrArgCount    = errors.New("args do not match columns")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
	Close() error
}

type Sqldb struct {
	options
	db *sql.DB
}

type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field       // 标题字段
	Args        []interface{} // 数据
	DataCount   int           // 插入数据的数量
	AutoKey     bool
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	d := &Sqldb{}
	d.options = options

	if err := d.OpenDB(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Sqldb) OpenDB() error {
	db, err := sql.Open("mysql", d.sqlURL)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(d.maxConns)
	db.SetMaxIdleConns(d.maxConns)

	if err = db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping mysql: %w", err)
	}

	d.db = db

	return nil
}

func (d *Sqldb) Close() error {
	return d.db.Close()
}

func (d *Sqldb) CreateTable(t TableData) error {
	stmt, err := CreateTableSQL(t)
	if err != nil {
		return err
	}

	d.logger.Debug("create table", zap.String("sql", stmt))

	_, err = d.db.Exec(stmt)

	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	if !identifier.MatchString(t.TableName) {
		return fmt.Errorf("%w: %q", ErrTableName, t.TableName)
	}

	stmt := `DROP TABLE ` + t.TableName

	d.logger.Debug("drop table", zap.String("sql", stmt))

	_, err := d.db.Exec(stmt)

	return err
}

func (d *Sqldb) Insert(t TableData) error {
	stmt, err := InsertSQL(t)
	if err != nil {
		return err
	}

	d.logger.Debug("insert table", zap.String("sql", stmt), zap.Int("rows", t.DataCount))

	_, err = d.db.Exec(stmt, t.Args...)

	return err
}

func CreateTableSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumn
	}

	if !identifier.MatchString(t.TableName) {
		return "", fmt.Errorf("%w: %q", ErrTableName, t.TableName)
	}

	cols := make([]string, 0, len(t.ColumnNames)+1)
	if t.AutoKey {
		cols = append(cols, "id BIGINT NOT NULL PRIMARY KEY AUTO_INCREMENT")
	}

	for _, f := range t.ColumnNames {
		cols = append(cols, f.Title+" "+f.Type)
	}

	return "CREATE TABLE IF NOT EXISTS " + t.TableName + " (" +
		strings.Join(cols, ",") +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;", nil
}

// InsertSQL builds a multi-row insert with DataCount placeholder groups.
func InsertSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumn
	}

	if !identifier.MatchString(t.TableName) {
		return "", fmt.Errorf("%w: %q", ErrTableName, t.TableName)
	}

	if t.DataCount <= 0 || len(t.Args) != t.DataCount*len(t.ColumnNames) {
		return "", fmt.Errorf("%w: %d args for %d rows of %d columns",
			ErrArgCount, len(t.Args), t.DataCount, len(t.ColumnNames))
	}

	titles := make([]string, 0, len(t.ColumnNames))
	for _, f := range t.ColumnNames {
		titles = append(titles, f.Title)
	}

	row := "(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"
	rows := strings.Repeat(","+row, t.DataCount)[1:]

	return "INSERT INTO " + t.TableName + "(" + strings.Join(titles, ",") + ") VALUES " + rows + ";", nil
}
