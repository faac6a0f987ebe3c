package index

// CardIndex defines the interface for card indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type CardIndex interface {
	ReplaceAll(rows []CardRow, storeChecksum string) error
	UpsertCard(row CardRow) error
	DeleteCard(id string) error
	GetCard(id string) (*CardRow, error)
	ListCards(f Filter, limit, offset int) ([]CardRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Chapters() ([]ChapterInfo, error)
	StoreChecksum() (string, error)
	GetProgress(cardID string) (*ProgressRow, error)
	PutProgress(p ProgressRow) error
	DeleteProgress(cardID string) error
	DueCards(now int64, limit int) ([]ProgressRow, error)
	Close() error
}

// Verify *DB satisfies CardIndex at compile time.
var _ CardIndex = (*DB)(nil)
