package app

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// readDotEnv parses the .env file at path. A missing file is not an error.
func readDotEnv(fs vfs.FileSystem, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed opening file: %w", err)
	}
	defer f.Close()

	env, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed parsing file: %w", err)
	}

	return env, nil
}
