package adapters

import (
	"archive/tar"
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/gzip"

	"rosmsg-packages/internal/ports"
)

const (
	hashChunkSize      = 512 * 1024
	defaultDigestCache = 256
)

var gzipMagic = []byte{0x1f, 0x8b}

// TarContentHasher digests the regular-file content of a tar archive in
// member order. Member names, modes, owners and timestamps are ignored,
// so two builds of the same sources hash equal.
type TarContentHasher struct {
	cache *lru.Cache[string, string]
}

func NewTarContentHasher() (*TarContentHasher, error) {
	cache, err := lru.New[string, string](defaultDigestCache)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create digest cache").
			WithCause(err)
	}
	return &TarContentHasher{cache: cache}, nil
}

func (h *TarContentHasher) Digest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("archive not found").
			WithCause(err)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if h.cache != nil {
		if digest, ok := h.cache.Get(key); ok {
			return digest, nil
		}
	}
	digest, err := digestArchive(path)
	if err != nil {
		return "", err
	}
	if h.cache != nil {
		h.cache.Add(key, digest)
	}
	return digest, nil
}

func digestArchive(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open archive").
			WithCause(err)
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	var reader io.Reader = buffered
	magic, err := buffered.Peek(len(gzipMagic))
	if err == nil && bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return "", invalidArchive(err)
		}
		defer gz.Close()
		reader = gz
	}

	hash := sha256.New()
	chunk := make([]byte, hashChunkSize)
	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", invalidArchive(err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if _, err := io.CopyBuffer(hash, tr, chunk); err != nil {
			return "", invalidArchive(err)
		}
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func invalidArchive(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("failed to read archive").
		WithCause(err)
}

var _ ports.ContentHasherPort = (*TarContentHasher)(nil)
