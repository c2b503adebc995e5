//go:build !darwin && !linux

package storage

import "errors"

func filesystemType(string) (string, error) {
	return "", errors.New("filesystem type lookup unsupported on this platform")
}
