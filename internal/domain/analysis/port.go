package analysis

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	SaveAnalysis(ctx context.Context, text string, r *Result) error
	RecentAnalyses(ctx context.Context, limit int) ([]*Record, error)
	GetAnalysis(ctx context.Context, id RecordID) (*Record, error)
}

// DocumentArchive keeps a copy of analysed text outside the database
type DocumentArchive interface {
	Put(ctx context.Context, textHash, content string) (string, error)
}
