package knowledge

// Document is one uploaded guideline document. It is never mutated by the pipeline.
type Document struct {
	Content    string `json:"content"`
	DocumentID string `json:"documentId"`
	Source     string `json:"source"`
	Title      string `json:"title,omitempty"`
	PageNumber *int   `json:"pageNumber,omitempty"`
}

// ChunkMetadata travels with every chunk into the vector payload and back out on search.
type ChunkMetadata struct {
	Source      string `json:"source"`
	DocumentID  string `json:"documentId"`
	Title       string `json:"title,omitempty"`
	PageNumber  *int   `json:"pageNumber,omitempty"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
}

type Chunk struct {
	ID       string        `json:"id"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

type SearchResult struct {
	ID       string        `json:"id"`
	Score    float64       `json:"score"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

type IndexStats struct {
	PointsCount         int64 `json:"pointsCount"`
	IndexedVectorsCount int64 `json:"indexedVectorsCount"`
	SegmentsCount       int64 `json:"segmentsCount"`
}
