//go:build !unix

package resource

import (
	"errors"
	"os"
)

var errNoMmap = errors.New("mmap not supported")

func mmap(*os.File, int) ([]byte, error) { return nil, errNoMmap }

func munmap([]byte) error { return nil }
