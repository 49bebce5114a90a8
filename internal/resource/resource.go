// Package resource provides read-only access to tokenizer resource files.
package resource

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// File is an opened resource. Data stays valid until Close.
type File struct {
	Path    string
	Data    []byte
	mmapped bool
}

// Open maps path read-only where mmap is available and falls back to
// reading the whole file otherwise.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%s: file too large", path)
	}
	size := int(size64)
	if size == 0 {
		return &File{Path: path}, nil
	}

	if data, err := mmap(f, size); err == nil {
		return &File{Path: path, Data: data, mmapped: true}, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Data: data}, nil
}

// Reader returns a fresh reader over the file contents.
func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.Data)
}

func (f *File) Size() int { return len(f.Data) }

// Close releases the mapping. It is safe to call more than once.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}
