package storage

import (
	"os"

	json "github.com/goccy/go-json"

	"giftd/internal/models"
	"giftd/internal/providers"
	"giftd/internal/storage/interfaces"
	"giftd/internal/structures"
)

// Store persists the whole ledger document to a single compressed file.
// Save follows the write-temp, fsync, rename-over protocol so a crash never
// leaves a partially written document behind.
type Store struct {
	path       string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewStore(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *Store {
	return &Store{
		path:       conf.Persistence.FilePath,
		compressor: compressor,
		logger:     logger,
	}
}

// Load reads the persisted document. A missing, unreadable or corrupt file
// yields a fresh empty document; the condition is logged, never raised.
func (s *Store) Load() *models.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Errorf(providers.TypeStore, "cannot read %s, starting empty: %s", s.path, err)
		}
		return models.NewDocument()
	}

	decompressed, err := s.compressor.Decompress(data)
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "cannot decompress %s, starting empty: %s", s.path, err)
		return models.NewDocument()
	}

	var doc models.Document
	if err := json.Unmarshal(decompressed, &doc); err != nil {
		s.logger.Errorf(providers.TypeStore, "cannot parse %s, starting empty: %s", s.path, err)
		return models.NewDocument()
	}
	doc.Normalize()
	return &doc
}

func (s *Store) Save(doc *models.Document) error {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	data, err := s.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := s.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, s.path)
}

func (s *Store) Close() {
	s.compressor.Close()
}
