// Package filestore はデータロガーの送信先をJSONファイルに保存する。
//
// registration は registrations.json、それ以外は user-activities.json に追記する。
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	registrationsFile = "registrations.json"
	activitiesFile    = "user-activities.json"
)

type userDataFileRepository struct {
	dir string
	mu  sync.Mutex
}

// DI
func NewUserDataFileRepository(dir string) (repo.UserDataRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &userDataFileRepository{dir: dir}, nil
}

func fileFor(recordType string) string {
	if recordType == model.UserDataTypeRegistration {
		return registrationsFile
	}
	return activitiesFile
}

func (r *userDataFileRepository) Append(ctx context.Context, rec model.UserDataRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.dir, fileFor(rec.Type))
	records, err := readRecords(path)
	if err != nil {
		return err
	}
	records = append(records, rec)
	return writeRecords(path, records)
}

func (r *userDataFileRepository) List(ctx context.Context, recordType string) ([]model.UserDataRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if recordType != "" {
		records, err := readRecords(filepath.Join(r.dir, fileFor(recordType)))
		if err != nil {
			return nil, err
		}
		out := records[:0]
		for _, rec := range records {
			if rec.Type == recordType {
				out = append(out, rec)
			}
		}
		return out, nil
	}

	regs, err := readRecords(filepath.Join(r.dir, registrationsFile))
	if err != nil {
		return nil, err
	}
	acts, err := readRecords(filepath.Join(r.dir, activitiesFile))
	if err != nil {
		return nil, err
	}
	return append(regs, acts...), nil
}

// 無いファイルは空扱い
func readRecords(path string) ([]model.UserDataRecord, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.UserDataRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return []model.UserDataRecord{}, nil
	}

	var records []model.UserDataRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// 一時ファイルに書いてから置き換える
func writeRecords(path string, records []model.UserDataRecord) error {
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
