package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	kberr "github.com/girijashankarj/garry-rag-repo-harness/internal/errors"
)

// Write persists the artifact under dir as two equivalent encodings:
// index.json (human-readable) and index.json.zst (compact). The size
// ceiling applies to the readable encoding; exceeding it fails the
// build before anything touches disk. Both files land via temp-file
// rename so a crashed build never leaves a partial artifact.
func Write(art *Artifact, dir string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = MaxArtifactBytes
	}

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return kberr.Wrap(kberr.ErrCodeArtifactWrite, err)
	}

	if int64(len(data)) > maxBytes {
		return kberr.Structural(kberr.ErrCodeArtifactTooLarge,
			fmt.Sprintf("artifact is %d bytes, ceiling is %d", len(data), maxBytes))
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return kberr.Wrap(kberr.ErrCodeArtifactWrite, err)
	}
	compact := enc.EncodeAll(data, nil)
	_ = enc.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return kberr.Wrap(kberr.ErrCodeArtifactWrite, err)
	}

	if err := atomicWrite(filepath.Join(dir, "index.json"), data); err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "index.json.zst"), compact)
}

// atomicWrite writes data to path via a temp file and rename.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return kberr.Wrap(kberr.ErrCodeArtifactWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return kberr.Wrap(kberr.ErrCodeArtifactWrite, err)
	}
	return nil
}

// Load reads the artifact from dir, preferring the compact encoding and
// falling back to the readable one when the compact copy is missing or
// unreadable. A missing artifact returns ERR_202; a present but
// unparseable or structurally inconsistent one returns a fatal
// structural error, never a silently patched view.
func Load(dir string) (*Artifact, error) {
	compact := filepath.Join(dir, "index.json.zst")
	readable := filepath.Join(dir, "index.json")

	if art, err := loadCompact(compact); err == nil {
		if err := Validate(art); err != nil {
			return nil, err
		}
		return art, nil
	}

	data, err := os.ReadFile(readable)
	if os.IsNotExist(err) {
		return nil, kberr.New(kberr.ErrCodeArtifactNotFound,
			fmt.Sprintf("no artifact under %s (run build first)", dir), err)
	}
	if err != nil {
		return nil, kberr.Wrap(kberr.ErrCodeArtifactNotFound, err)
	}

	art, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(art); err != nil {
		return nil, err
	}
	return art, nil
}

func loadCompact(path string) (*Artifact, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	data, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func decode(data []byte) (*Artifact, error) {
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, kberr.Structural(kberr.ErrCodeArtifactCorrupt,
			fmt.Sprintf("cannot parse artifact: %v", err))
	}
	if art.Meta.Version != Version {
		return nil, kberr.Structural(kberr.ErrCodeArtifactCorrupt,
			fmt.Sprintf("artifact version %d, expected %d", art.Meta.Version, Version))
	}
	return &art, nil
}
