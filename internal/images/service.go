package images

// Service bundles ingest and delete behind one API surface.
type Service struct {
	*Ingestor
	*Deleter
}

func NewService(strg BlobStorage, transcode TranscodeFunc, resolver KeyResolver) *Service {
	return &Service{
		Ingestor: NewIngestor(strg, transcode),
		Deleter:  NewDeleter(strg, resolver),
	}
}
