package modules

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/chort/cuckoo/internal/report"
)

const sniffBytes = 512

// Dropped inventories the files the sample wrote during execution: name,
// size, SHA-256, and a content-type sniff for each artifact in files/.
type Dropped struct {
	report.BaseModule
}

// NewDropped builds a fresh instance.
func NewDropped() report.ProcessingModule {
	return &Dropped{}
}

// Key implements report.ProcessingModule.
func (m *Dropped) Key() string {
	return "dropped"
}

// Run implements report.ProcessingModule.
func (m *Dropped) Run() (interface{}, error) {
	dir := filepath.Join(m.Path, "files")

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		// No dropped files is a perfectly normal analysis outcome.
		return []interface{}{}, nil
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	maxFiles := m.Cfg.Int("maxfiles", 0)

	dropped := []interface{}{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if maxFiles > 0 && len(dropped) >= maxFiles {
			break
		}

		record, err := describeFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		dropped = append(dropped, record)
	}

	return dropped, nil
}

func describeFile(path string) (map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	head = head[:n]

	hash := sha256.New()
	hash.Write(head)
	if _, err := io.Copy(hash, file); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"name":   filepath.Base(path),
		"size":   info.Size(),
		"sha256": hex.EncodeToString(hash.Sum(nil)),
		"type":   http.DetectContentType(head),
	}, nil
}
