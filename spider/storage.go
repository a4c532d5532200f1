package spider

// DataRepository persists crawl results.
type DataRepository interface {
	Save(targets ...*Target) error
}

type EmptyDataRepository struct{}

func (EmptyDataRepository) Save(targets ...*Target) error {
	return nil
}
